package pubchem

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/ChemReconcile/internal/domain/lookup"
	"github.com/turtacn/ChemReconcile/internal/domain/record"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/cache"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/metrics"
)

// badInputMarkers identify a malformed-identifier response.  Matched against
// the lowercased error text; never retried.
var badInputMarkers = []string{
	"pugrest.badrequest",
	"badrequest",
	"status: 400",
	"http error 400",
	"unable to standardize",
}

// transientMarkers identify failures worth retrying: service busy, timeout,
// or a TLS-layer hiccup.
var transientMarkers = []string{"503", "busy", "timeout", "tls", "ssl"}

// Resolver implements lookup.Resolver on top of a SearchClient, adding the
// rate-limit backoff, bounded retry, failure classification, and an optional
// result cache.
type Resolver struct {
	client     SearchClient
	cache      cache.Cache
	logger     logging.Logger
	metrics    *metrics.Metrics
	maxRetries int
	baseDelay  time.Duration
	cacheTTL   time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRetryPolicy sets the attempt count and the linear backoff base delay.
// The wait before attempt n (1-based) is n × baseDelay, which keeps the
// implicit lookup queue at roughly one request at a time.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) ResolverOption {
	return func(r *Resolver) {
		if maxRetries > 0 {
			r.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			r.baseDelay = baseDelay
		}
	}
}

// WithCache attaches a lookup cache.  Only confident outcomes (matches and
// empty results) are cached; failures always go back to the network.
func WithCache(c cache.Cache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.cache = c
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithResolverLogger attaches a structured logger.
func WithResolverLogger(l logging.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// WithResolverMetrics attaches lookup counters.
func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver constructs a Resolver with the default 3-attempt, 0.4s-base
// retry policy.
func NewResolver(client SearchClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:     client,
		logger:     logging.NewNopLogger(),
		maxRetries: 3,
		baseDelay:  400 * time.Millisecond,
		cacheTTL:   24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ lookup.Resolver = (*Resolver)(nil)

// cachedResult is the serialized form of a confident lookup outcome.
type cachedResult struct {
	CID      string `json:"cid"`
	InChIKey string `json:"inchikey"`
	Found    bool   `json:"found"`
}

// Resolve looks identifier up in the given namespace with bounded retry.
//
// A missing identifier short-circuits without any network attempt.  Zero
// matches is a confident not-found and is never retried.  Failures are
// classified by their error text: bad-input responses stop immediately and
// are surfaced as such, transient failures are retried with linear backoff,
// anything else stops.  The last failure, if any, is reported in the result's
// Diag even when a later attempt succeeded.
func (r *Resolver) Resolve(ctx context.Context, identifier, namespace string) lookup.Result {
	if record.IsMissing(identifier) {
		return lookup.Result{}
	}

	key := cacheKey(identifier, namespace)
	if r.cache != nil {
		var hit cachedResult
		if err := r.cache.Get(ctx, key, &hit); err == nil {
			r.metrics.LookupObserved(namespace, "cache_hit")
			if !hit.Found {
				return lookup.Result{}
			}
			return lookup.Result{CID: hit.CID, InChIKey: hit.InChIKey}
		}
	}

	var lastDiag *lookup.Diag
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		// Linear backoff before every attempt, the first included, to
		// respect the remote rate limit.
		if err := sleepCtx(ctx, time.Duration(attempt+1)*r.baseDelay); err != nil {
			lastDiag = &lookup.Diag{Err: err.Error(), Kind: lookup.KindOther}
			break
		}

		compounds, err := r.client.Search(ctx, identifier, namespace)
		if err == nil {
			if len(compounds) == 0 {
				r.metrics.LookupObserved(namespace, "not_found")
				r.cachePut(ctx, key, cachedResult{})
				return lookup.Result{Diag: lastDiag}
			}
			first := compounds[0]
			r.logger.Debug("pubchem query resolved",
				logging.String("namespace", namespace),
				logging.String("identifier", identifier),
				logging.String("cid", first.CID))
			r.metrics.LookupObserved(namespace, "resolved")
			r.cachePut(ctx, key, cachedResult{CID: first.CID, InChIKey: first.InChIKey, Found: true})
			return lookup.Result{CID: first.CID, InChIKey: first.InChIKey, Diag: lastDiag}
		}

		kind := classify(err)
		lastDiag = &lookup.Diag{Err: err.Error(), Kind: kind}

		if kind == lookup.KindTransient && attempt < r.maxRetries-1 {
			r.metrics.RetryObserved()
			r.logger.Debug("pubchem transient error, retrying",
				logging.String("namespace", namespace),
				logging.String("identifier", identifier),
				logging.Int("attempt", attempt+1),
				logging.Err(err))
			continue
		}

		r.logger.Warn("pubchem query failed",
			logging.String("namespace", namespace),
			logging.String("identifier", identifier),
			logging.String("kind", string(kind)),
			logging.Err(err))
		break
	}

	r.metrics.LookupObserved(namespace, "error")
	return lookup.Result{Diag: lastDiag}
}

// FetchSMILES retrieves the canonical structure string for a CID under the
// same retry and backoff policy as Resolve.
func (r *Resolver) FetchSMILES(ctx context.Context, cid string) (string, *lookup.Diag) {
	if record.IsMissing(cid) {
		return "", nil
	}

	var lastDiag *lookup.Diag
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := sleepCtx(ctx, time.Duration(attempt+1)*r.baseDelay); err != nil {
			lastDiag = &lookup.Diag{Err: err.Error(), Kind: lookup.KindOther}
			break
		}

		smiles, err := r.client.FetchStructure(ctx, cid)
		if err == nil {
			r.logger.Debug("pubchem structure fetch resolved",
				logging.String("cid", cid),
				logging.String("smiles", smiles))
			return smiles, lastDiag
		}

		kind := classify(err)
		lastDiag = &lookup.Diag{Err: err.Error(), Kind: kind}

		if kind == lookup.KindTransient && attempt < r.maxRetries-1 {
			r.metrics.RetryObserved()
			continue
		}

		r.logger.Warn("pubchem structure fetch failed",
			logging.String("cid", cid),
			logging.Err(err))
		break
	}

	return "", lastDiag
}

// classify tags an error by scanning its lowercased text for the known
// bad-input and transient markers.  Bad input wins: a 400 must never be
// retried even when the message also mentions a transient-looking word.
func classify(err error) lookup.DiagKind {
	text := strings.ToLower(err.Error())
	for _, marker := range badInputMarkers {
		if strings.Contains(text, marker) {
			return lookup.KindBadInput
		}
	}
	for _, marker := range transientMarkers {
		if strings.Contains(text, marker) {
			return lookup.KindTransient
		}
	}
	return lookup.KindOther
}

func cacheKey(identifier, namespace string) string {
	return "lookup:" + namespace + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

func (r *Resolver) cachePut(ctx context.Context, key string, v cachedResult) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, v, r.cacheTTL); err != nil {
		r.logger.Debug("lookup cache set failed", logging.Err(err))
	}
}

// sleepCtx sleeps for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
