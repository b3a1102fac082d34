// Package record defines the core data model of the reconciliation engine:
// input records, per-record verdicts, and the pure identifier-normalization
// and schema-detection functions that operate on them.
package record

// Status is the terminal classification of a verdict.
type Status string

const (
	// StatusUnknown is the zero state before evaluation completes.
	StatusUnknown Status = "unknown"

	// StatusValidated means all independently-resolved identities agreed.
	StatusValidated Status = "validated"

	// StatusRejected means the record failed a gate or the consensus check,
	// or was demoted by the exact-duplicate pass.
	StatusRejected Status = "rejected"

	// StatusStereoDuplicate marks a survivor of the exact pass that shares a
	// 14-character canonical key with an earlier verdict.  Not an error.
	StatusStereoDuplicate Status = "stereo_duplicate"
)

// RejectionReason is the machine-readable cause of a rejection.  The code set
// is stable; downstream report consumers match on the literal strings.
type RejectionReason string

const (
	ReasonNone RejectionReason = ""

	ReasonInsufficientIdentifiers RejectionReason = "insufficient_identifiers"
	ReasonComplexChemicalNoSMILES RejectionReason = "complex_chemical_no_smiles"
	ReasonPubChemDiscordance      RejectionReason = "pubchem_discordance"
	ReasonIdentifierNotFound      RejectionReason = "identifier_not_found"

	// ReasonNotFoundAndDiscordance covers the two-found-and-disagree branch.
	// The historical code name is kept verbatim for report compatibility even
	// though both identifiers did resolve (differently).
	ReasonNotFoundAndDiscordance RejectionReason = "identifier_not_found_and_pubchem_discordance"

	ReasonInvalidCAS         RejectionReason = "invalid_cas"
	ReasonInvalidSMILES      RejectionReason = "invalid_smiles"
	ReasonPubChemQueryFailed RejectionReason = "pubchem_query_failed"
	ReasonExactDuplicate     RejectionReason = "exact_duplicate"
)

// SMILESSource records where a verdict's structure string came from.
type SMILESSource string

const (
	SMILESSourceNone    SMILESSource = ""
	SMILESSourceInput   SMILESSource = "input"
	SMILESSourcePubChem SMILESSource = "pubchem"
)

// Record is one input row.  Fields hold the raw textual cell values; any of
// them may be missing (see IsMissing).  Immutable after reading aside from
// whitespace trimming performed by the engine.
type Record struct {
	RowNumber int
	Name      string
	CAS       string
	SMILES    string
}

// Verdict is the output unit, one per input Record.  Created by the
// reconciliation engine, updated only by the duplicate passes, and emitted in
// input order as the program's result.
type Verdict struct {
	RowNumber int

	// Identifier values after normalization / retrieval back-fill.
	Name         string
	CAS          string
	SMILES       string
	SMILESSource SMILESSource

	// Per-identifier resolution results.  Empty string means not resolved.
	CIDByName        string
	CIDByCAS         string
	CIDBySMILES      string
	InChIKeyByName   string
	InChIKeyByCAS    string
	InChIKeyBySMILES string

	// Consensus outputs, set only when Status is validated.
	ValidatedCID      string
	ValidatedInChIKey string

	// CanonicalKey14 is the stereochemistry-agnostic 14-character prefix of
	// the validated InChIKey, used for stereoisomer grouping.
	CanonicalKey14 string

	Status Status

	// RejectionReason is non-empty iff rejection is the verdict's terminal
	// cause.  Stereo duplicates carry no reason.
	RejectionReason RejectionReason

	// PubChemError concatenates every namespace-tagged diagnostic captured
	// during resolution, kept for audit regardless of final status.
	PubChemError string

	// Duplicate group numbers, 1-based, assigned independently per pass.
	// Nil when the verdict belongs to no group.
	ExactDuplicateGroup  *int
	StereoDuplicateGroup *int
}

// Table is an ordered, raw-text view of an input spreadsheet or CSV: a header
// row plus data rows, with no numeric or date coercion applied.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the raw value of column idx in row, or "" when the row is
// shorter than the header.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
