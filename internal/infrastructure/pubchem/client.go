// Package pubchem implements the external-lookup capability against the
// PubChem PUG REST API: a thin HTTP client plus the retrying Resolver that
// satisfies the domain lookup contract.
package pubchem

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemReconcile/pkg/errors"
)

// DefaultBaseURL is the public PUG REST endpoint.
const DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// defaultTimeout bounds a single HTTP round trip; retry policy lives in the
// Resolver, not here.
const defaultTimeout = 30 * time.Second

// Compound holds the fields the reconciliation engine needs from a PubChem
// match: the stable identity id and the structural key.
type Compound struct {
	CID      string
	InChIKey string
}

// SearchClient abstracts the PUG REST operations used by the Resolver.
type SearchClient interface {
	// Search returns the compounds matching identifier in the given
	// namespace ("name" or "smiles").  A nil slice with nil error is a
	// confident no-match.
	Search(ctx context.Context, identifier, namespace string) ([]Compound, error)

	// FetchStructure returns the canonical SMILES for a CID.
	FetchStructure(ctx context.Context, cid string) (string, error)
}

// Client is the PUG REST implementation of SearchClient.
type Client struct {
	baseURL   string
	hc        *http.Client
	userAgent string
	logger    logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the PUG REST endpoint (used by tests and mirrors).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient injects a pre-configured *http.Client.  The host uses this
// to hand the core a transport with TLS trust already set up.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient constructs a PUG REST client with sane defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		hc:        &http.Client{Timeout: defaultTimeout},
		userAgent: "ChemReconcile/" + Version,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version is injected at build time alongside the CLI version.
var Version = "dev"

// TLS trust modes.  "public" from the original tooling collapses into
// "system" here: Go's crypto/x509 verifier always starts from the OS trust
// store, so only a custom PEM bundle needs special handling.
const (
	TLSModeSystem = "system"
	TLSModeCustom = "custom"
)

// NewHTTPClient builds an *http.Client for the given trust mode.  In custom
// mode the PEM bundle at caBundle replaces the system roots, which is how
// deployments behind TLS-inspecting proxies trust their own CA.  The returned
// client is handed to NewClient via WithHTTPClient; the core never touches
// trust configuration after construction.
func NewHTTPClient(tlsMode, caBundle string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if tlsMode != TLSModeCustom {
		return &http.Client{Timeout: timeout}, nil
	}

	if caBundle == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "tls_mode=custom requires ca_bundle")
	}
	pem, err := os.ReadFile(caBundle)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read CA bundle")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "no certificates found in CA bundle %s", caBundle)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// propertyTable mirrors the PUG REST property response envelope.
type propertyTable struct {
	PropertyTable struct {
		Properties []struct {
			CID             json.Number `json:"CID"`
			InChIKey        string      `json:"InChIKey"`
			CanonicalSMILES string      `json:"CanonicalSMILES"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// Search implements SearchClient.Search via
// GET /compound/{namespace}/{identifier}/property/InChIKey/JSON.
// A 404 is PubChem's confident "no such compound" and maps to an empty
// result, not an error.
func (c *Client) Search(ctx context.Context, identifier, namespace string) ([]Compound, error) {
	endpoint := fmt.Sprintf("%s/compound/%s/%s/property/InChIKey/JSON",
		c.baseURL, url.PathEscape(namespace), url.PathEscape(identifier))

	c.logger.Debug("pubchem query start",
		logging.String("namespace", namespace),
		logging.String("identifier", identifier))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.logger.Debug("pubchem query no results",
			logging.String("namespace", namespace),
			logging.String("identifier", identifier))
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodePubChemUnavailable,
			"pubchem: search by %s failed: status: %d: %s", namespace, status, compactBody(body))
	}

	var table propertyTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePubChemParse, "pubchem: malformed search response")
	}

	compounds := make([]Compound, 0, len(table.PropertyTable.Properties))
	for _, p := range table.PropertyTable.Properties {
		compounds = append(compounds, Compound{CID: p.CID.String(), InChIKey: p.InChIKey})
	}
	return compounds, nil
}

// FetchStructure implements SearchClient.FetchStructure via
// GET /compound/cid/{cid}/property/CanonicalSMILES/JSON.
func (c *Client) FetchStructure(ctx context.Context, cid string) (string, error) {
	endpoint := fmt.Sprintf("%s/compound/cid/%s/property/CanonicalSMILES/JSON",
		c.baseURL, url.PathEscape(cid))

	c.logger.Debug("pubchem structure fetch start", logging.String("cid", cid))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Newf(errors.ErrCodePubChemUnavailable,
			"pubchem: structure fetch for cid %s failed: status: %d: %s", cid, status, compactBody(body))
	}

	var table propertyTable
	if err := json.Unmarshal(body, &table); err != nil {
		return "", errors.Wrap(err, errors.ErrCodePubChemParse, "pubchem: malformed structure response")
	}
	if len(table.PropertyTable.Properties) == 0 {
		return "", nil
	}
	return table.PropertyTable.Properties[0].CanonicalSMILES, nil
}

// get performs a single GET and returns the body and status code.  Transport
// failures (DNS, TLS, timeout) surface as errors with their original text so
// the Resolver's classifier can see markers like "timeout" or "tls".
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "pubchem: failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("pubchem: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("pubchem: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// compactBody flattens a PUG fault body to a single log-friendly line.
func compactBody(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
