// Package lookup defines the port to the external chemical database.  The
// reconciliation engine depends only on this contract; the PubChem-backed
// implementation lives under internal/infrastructure/pubchem and is prepared
// (transport, TLS trust, caching) by the host before the core is invoked.
package lookup

import "context"

// Namespaces accepted by Resolve.  CAS numbers are resolved through the
// name-like namespace; only structure strings use NamespaceSMILES.
const (
	NamespaceName   = "name"
	NamespaceSMILES = "smiles"
)

// DiagKind classifies a lookup failure for the caller.
type DiagKind string

const (
	// KindBadInput marks a malformed-identifier response from the database
	// (bad request, standardization failure).  Never retried; callers reject
	// with a specific reason instead of "not found".
	KindBadInput DiagKind = "bad_input"

	// KindTransient marks service-busy / timeout / TLS-layer failures that
	// were retried before giving up.
	KindTransient DiagKind = "transient"

	// KindOther marks any other failure; not retried.
	KindOther DiagKind = "other"
)

// Diag carries the last error text and classification recorded during a
// single lookup call.  A non-nil Diag may accompany a successful Result when
// an earlier attempt failed before a retry succeeded.
type Diag struct {
	Err  string
	Kind DiagKind
}

// BadInput reports whether d marks a malformed-identifier failure.
func (d *Diag) BadInput() bool {
	return d != nil && d.Kind == KindBadInput
}

// Result is the outcome of resolving one identifier: the database's stable
// identity id (CID) and structural key (InChIKey), both empty on not-found,
// plus the per-call diagnostics.
type Result struct {
	CID      string
	InChIKey string
	Diag     *Diag
}

// Found reports whether the identifier resolved to an identity.
func (r Result) Found() bool { return r.CID != "" }

// Resolver is the single logical lookup capability of the external database.
type Resolver interface {
	// Resolve looks identifier up in the given namespace.  A missing
	// identifier returns an empty Result without any network attempt.
	Resolve(ctx context.Context, identifier, namespace string) Result

	// FetchSMILES retrieves the structure string for a previously-resolved
	// identity id.  Returns "" with a diagnostic on unrecoverable failure.
	FetchSMILES(ctx context.Context, cid string) (string, *Diag)
}
