// Package reconcile implements the per-record cross-validation engine, the
// duplicate-marking passes, and the run orchestrator that ties them to the
// input table and the external lookup.
package reconcile

import (
	"context"
	"strings"

	"github.com/turtacn/ChemReconcile/internal/domain/lookup"
	"github.com/turtacn/ChemReconcile/internal/domain/record"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
)

// Engine evaluates one record at a time: trims identifiers, gates on
// sufficiency and CAS validity, resolves each identifier independently, and
// renders a consensus verdict.
type Engine struct {
	resolver lookup.Resolver
	mode     record.Mode
	logger   logging.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger attaches a structured logger.
func WithEngineLogger(l logging.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine constructs an Engine for the given operating mode.
func NewEngine(resolver lookup.Resolver, mode record.Mode, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		mode:     mode,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate cross-validates a single record and returns its verdict.
//
// The record passes through gates in a fixed order: identifier sufficiency,
// structure back-fill (retrieval mode only), CAS well-formedness, then the
// three independent lookups and the consensus decision.  The first failing
// gate rejects the record; later stages never run.
func (e *Engine) Evaluate(ctx context.Context, rec record.Record) record.Verdict {
	name := strings.TrimSpace(rec.Name)
	cas := rec.CAS
	smiles := strings.TrimSpace(rec.SMILES)

	v := record.Verdict{
		RowNumber: rec.RowNumber,
		Name:      name,
		CAS:       cas,
		SMILES:    smiles,
		Status:    record.StatusUnknown,
	}
	if !record.IsMissing(smiles) {
		v.SMILESSource = record.SMILESSourceInput
	}

	e.logger.Info("evaluating record",
		logging.Int("row", rec.RowNumber),
		logging.String("name", name))

	nameOK := !record.IsMissing(name)
	casOK := !record.IsMissing(cas)
	smilesOK := !record.IsMissing(smiles)

	if e.mode == record.ModeRetrieval {
		// Retrieval mode needs both textual identifiers to agree before a
		// structure can be trusted.
		if !(nameOK && casOK) {
			v.Status = record.StatusRejected
			v.RejectionReason = record.ReasonInsufficientIdentifiers
			return v
		}
	} else {
		// Full validation needs a structure plus at least one of name / CAS.
		if !(smilesOK && (nameOK || casOK)) {
			v.Status = record.StatusRejected
			v.RejectionReason = record.ReasonInsufficientIdentifiers
			return v
		}
	}

	if e.mode == record.ModeRetrieval && !smilesOK {
		retrieved, cidName, cidCAS, reason := e.retrieveSMILES(ctx, name, cas)
		if retrieved == "" {
			v.Status = record.StatusRejected
			v.RejectionReason = reason
			v.CIDByName = cidName
			v.CIDByCAS = cidCAS
			return v
		}
		v.SMILES = retrieved
		v.SMILESSource = record.SMILESSourcePubChem
		smiles = retrieved
	}

	casNormalized := record.NormalizeCAS(cas)
	v.CAS = casNormalized

	if !record.IsMissing(cas) && casNormalized != "" && !record.IsValidCAS(casNormalized) {
		v.Status = record.StatusRejected
		v.RejectionReason = record.ReasonInvalidCAS
		return v
	}

	var diags []string

	nameRes := e.resolver.Resolve(ctx, name, lookup.NamespaceName)
	if nameRes.Diag != nil {
		diags = append(diags, "name="+nameRes.Diag.Err)
	}
	v.CIDByName = nameRes.CID
	v.InChIKeyByName = nameRes.InChIKey

	casRes := e.resolver.Resolve(ctx, casNormalized, lookup.NamespaceName)
	if casRes.Diag != nil {
		diags = append(diags, "cas="+casRes.Diag.Err)
	}
	if !casRes.Found() && casNormalized != "" {
		// Second chance: some registry numbers only resolve without hyphens.
		casRes = e.resolver.Resolve(ctx, strings.ReplaceAll(casNormalized, "-", ""), lookup.NamespaceName)
		if casRes.Diag != nil {
			diags = append(diags, "cas_no_dash="+casRes.Diag.Err)
		}
	}
	v.CIDByCAS = casRes.CID
	v.InChIKeyByCAS = casRes.InChIKey

	smilesRes := e.resolver.Resolve(ctx, smiles, lookup.NamespaceSMILES)
	if !smilesRes.Found() && smilesRes.Diag.BadInput() {
		// The database could not even parse the structure string.
		v.Status = record.StatusRejected
		v.RejectionReason = record.ReasonInvalidSMILES
		diags = append(diags, "smiles="+smilesRes.Diag.Err)
		v.PubChemError = strings.Join(diags, "; ")
		return v
	}
	if smilesRes.Diag != nil {
		diags = append(diags, "smiles="+smilesRes.Diag.Err)
	}
	v.CIDBySMILES = smilesRes.CID
	v.InChIKeyBySMILES = smilesRes.InChIKey

	if len(diags) > 0 {
		v.PubChemError = strings.Join(diags, "; ")
	}

	found := 0
	for _, cid := range []string{v.CIDByName, v.CIDByCAS, v.CIDBySMILES} {
		if cid != "" {
			found++
		}
	}

	switch {
	case found == 3:
		if v.CIDByName == v.CIDByCAS && v.CIDByCAS == v.CIDBySMILES {
			v.Status = record.StatusValidated
			v.ValidatedCID = v.CIDByName
			v.ValidatedInChIKey = firstNonEmpty(v.InChIKeyByName, v.InChIKeyByCAS, v.InChIKeyBySMILES)
			v.CanonicalKey14 = canonicalKey14(v.ValidatedInChIKey)
			return v
		}
		v.Status = record.StatusRejected
		v.RejectionReason = record.ReasonPubChemDiscordance
		return v

	case found == 2:
		v.Status = record.StatusRejected
		if twoAgree(v.CIDByName, v.CIDByCAS, v.CIDBySMILES) {
			v.RejectionReason = record.ReasonIdentifierNotFound
		} else {
			v.RejectionReason = record.ReasonNotFoundAndDiscordance
		}
		return v

	default:
		v.Status = record.StatusRejected
		if len(diags) > 0 {
			v.RejectionReason = record.ReasonPubChemQueryFailed
		} else {
			v.RejectionReason = record.ReasonIdentifierNotFound
		}
		return v
	}
}

// retrieveSMILES back-fills the structure string in retrieval mode.  The name
// and CAS lookups must both resolve and agree on a single identity before the
// structure is fetched; anything else is a rejection whose reason the caller
// records.
func (e *Engine) retrieveSMILES(ctx context.Context, name, cas string) (smiles, cidName, cidCAS string, reason record.RejectionReason) {
	nameRes := e.resolver.Resolve(ctx, name, lookup.NamespaceName)

	casNormalized := record.NormalizeCAS(cas)
	casRes := e.resolver.Resolve(ctx, casNormalized, lookup.NamespaceName)
	if !casRes.Found() && casNormalized != "" {
		casRes = e.resolver.Resolve(ctx, strings.ReplaceAll(casNormalized, "-", ""), lookup.NamespaceName)
	}

	cidName = nameRes.CID
	cidCAS = casRes.CID

	if cidName == "" || cidCAS == "" {
		return "", cidName, cidCAS, record.ReasonIdentifierNotFound
	}
	if cidName != cidCAS {
		return "", cidName, cidCAS, record.ReasonPubChemDiscordance
	}

	structure, _ := e.resolver.FetchSMILES(ctx, cidName)
	if structure == "" {
		return "", cidName, cidCAS, record.ReasonComplexChemicalNoSMILES
	}
	return structure, cidName, cidCAS, ""
}

// canonicalKey14 extracts the stereochemistry-agnostic connectivity block of
// an InChIKey.  Keys shorter than 14 characters are kept whole: the upstream
// value is not guaranteed well-formed and must never abort a record.
func canonicalKey14(inchikey string) string {
	if len(inchikey) > 14 {
		return inchikey[:14]
	}
	return inchikey
}

// twoAgree reports whether the two non-empty CIDs among the three are equal.
func twoAgree(cids ...string) bool {
	present := make([]string, 0, len(cids))
	for _, cid := range cids {
		if cid != "" {
			present = append(present, cid)
		}
	}
	for _, cid := range present[1:] {
		if cid != present[0] {
			return false
		}
	}
	return true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
