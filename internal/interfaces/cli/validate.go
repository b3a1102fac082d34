package cli

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemReconcile/internal/application/reconcile"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/cache"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/pubchem"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/tabular"
	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// validateOptions holds the validate subcommand's flags.
type validateOptions struct {
	outputFolder string
	outputFormat string
}

// NewValidateCmd creates the validate subcommand: read one input table,
// reconcile every record, and write the result report.
func NewValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <input-file>",
		Short: "Validate a CSV or Excel file of chemical records",
		Long: "Reads an input table with Name / CAS / SMILES columns, cross-validates\n" +
			"every record against PubChem, marks duplicates, and writes a timestamped\n" +
			"result report.  Exits non-zero when any record was rejected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputFolder, "output-folder", "",
		`report folder: "" for the working directory, "auto" for output/<name>/, or a path`)
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "report format (xlsx, csv)")

	return cmd
}

func runValidate(cmd *cobra.Command, inputPath string, opts *validateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, logger := cliCtx.Config, cliCtx.Logger

	httpClient, err := pubchem.NewHTTPClient(cfg.PubChem.TLSMode, cfg.PubChem.CABundle, cfg.PubChem.Timeout)
	if err != nil {
		return err
	}
	searchClient := pubchem.NewClient(
		pubchem.WithBaseURL(cfg.PubChem.BaseURL),
		pubchem.WithHTTPClient(httpClient),
		pubchem.WithLogger(logger),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		go serveMetrics(cfg.Metrics.Listen, reg, logger)
	}

	resolverOpts := []pubchem.ResolverOption{
		pubchem.WithRetryPolicy(cfg.PubChem.MaxRetries, cfg.PubChem.RetryBaseDelay),
		pubchem.WithResolverLogger(logger),
		pubchem.WithResolverMetrics(m),
	}
	if cfg.Cache.Enabled {
		// Best effort: a dead cache backend slows the run down, it does not
		// fail it.
		c, err := cache.NewRedis(cfg.Cache, logger)
		if err != nil {
			logger.Warn("lookup cache unavailable, continuing without it", logging.Err(err))
		} else {
			defer c.Close()
			resolverOpts = append(resolverOpts, pubchem.WithCache(c, cfg.Cache.TTL))
		}
	}
	resolver := pubchem.NewResolver(searchClient, resolverOpts...)

	logger.Info("reading input file", logging.String("path", inputPath))
	tbl, err := tabular.ReadFile(inputPath)
	if err != nil {
		return err
	}

	runner := reconcile.NewRunner(resolver,
		reconcile.WithRunnerLogger(logger),
		reconcile.WithRunnerMetrics(m),
		reconcile.WithProgress(reconcile.ProgressFunc(func(msg string) {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		})),
	)

	// An interrupted run still carries the verdicts produced so far; write
	// whatever report came back before surfacing the error.
	report, runErr := runner.Run(cmd.Context(), tbl)
	if report == nil {
		return runErr
	}

	format := opts.outputFormat
	if format == "" {
		format = cfg.Output.Format
	}
	folder := opts.outputFolder
	if folder == "" {
		folder = cfg.Output.Folder
	}
	writer := tabular.NewWriter(folder, format)
	outPath, err := writer.Write(report, inputPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", outPath)

	if runErr != nil {
		return runErr
	}
	if !report.OK {
		return errors.Newf(errors.ErrCodeRecordsRejected, "%d records were rejected", report.Rejected)
	}
	return nil
}

func serveMetrics(listen string, reg *prometheus.Registry, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("metrics endpoint listening", logging.String("addr", listen))
	if err := http.ListenAndServe(listen, mux); err != nil {
		logger.Warn("metrics endpoint stopped", logging.Err(err))
	}
}
