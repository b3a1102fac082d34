// CLI entry point for ChemReconcile.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/turtacn/ChemReconcile/internal/infrastructure/pubchem"
	"github.com/turtacn/ChemReconcile/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
	pubchem.Version = version
}

func main() {
	// Local .env overrides are optional; ignore a missing file.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
