package record

import (
	"strings"

	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// Mode is the operating mode selected by schema detection.
type Mode string

const (
	// ModeRetrieval: no SMILES column; structures are fetched from PubChem
	// once Name and CAS agree.
	ModeRetrieval Mode = "retrieval"

	// ModeFullValidation: Name, CAS, and SMILES are all supplied and
	// cross-checked.
	ModeFullValidation Mode = "full_validation"
)

// Schema maps the input table's columns onto identifier roles.
type Schema struct {
	NameCol   int
	CASCol    int
	SMILESCol int // -1 in retrieval mode
	Mode      Mode
}

// HasSMILES reports whether the table carries a SMILES column.
func (s Schema) HasSMILES() bool { return s.SMILESCol >= 0 }

// IdentifyColumns decides which columns hold Name, CAS, and optionally
// SMILES, by case-insensitive substring match in the table's native column
// order; first match wins.  The CAS match excludes "cassia" to avoid the
// botanical false positive.  A table without both a Name and a CAS column is
// a fatal schema error: no records can be meaningfully produced from it.
func IdentifyColumns(columns []string) (Schema, error) {
	s := Schema{NameCol: -1, CASCol: -1, SMILESCol: -1}

	for i, col := range columns {
		lower := strings.ToLower(col)
		if s.NameCol < 0 && strings.Contains(lower, "name") {
			s.NameCol = i
		}
		if s.CASCol < 0 && strings.Contains(lower, "cas") && !strings.Contains(lower, "cassia") {
			s.CASCol = i
		}
		if s.SMILESCol < 0 && (strings.Contains(lower, "smiles") || lower == "smile") {
			s.SMILESCol = i
		}
	}

	if s.NameCol < 0 || s.CASCol < 0 {
		return Schema{}, errors.New(errors.ErrCodeSchemaDetection, "Could not find Name or CAS columns")
	}

	if s.SMILESCol < 0 {
		s.Mode = ModeRetrieval
	} else {
		s.Mode = ModeFullValidation
	}
	return s, nil
}
