package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemReconcile/internal/domain/lookup"
	"github.com/turtacn/ChemReconcile/internal/domain/record"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/metrics"
)

// ProgressSink receives human-readable progress lines during a run.
type ProgressSink interface {
	Progress(msg string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(msg string)

func (f ProgressFunc) Progress(msg string) { f(msg) }

// Report is the outcome of one reconciliation run.
type Report struct {
	RunID    string
	Mode     record.Mode
	Verdicts []record.Verdict

	Validated        int
	StereoDuplicates int
	Rejected         int

	// OK is true when no record was rejected.
	OK bool
}

// Runner drives a full run: schema detection, connectivity preflight,
// per-record evaluation, and the two duplicate passes.
type Runner struct {
	resolver lookup.Resolver
	logger   logging.Logger
	metrics  *metrics.Metrics
	progress ProgressSink
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger attaches a structured logger.
func WithRunnerLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRunnerMetrics attaches run and verdict counters.
func WithRunnerMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithProgress attaches a sink for live progress lines.
func WithProgress(p ProgressSink) RunnerOption {
	return func(r *Runner) { r.progress = p }
}

// NewRunner constructs a Runner over the given resolver.
func NewRunner(resolver lookup.Resolver, opts ...RunnerOption) *Runner {
	r := &Runner{
		resolver: resolver,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles every record in tbl and returns the full report.
//
// Rows whose identifier cells are all missing are skipped before evaluation;
// the surviving rows keep their original 1-based row numbers.  Cancellation
// between records stops evaluation early: the partial verdict set still goes
// through both duplicate passes and is returned alongside the context error.
func (r *Runner) Run(ctx context.Context, tbl *record.Table) (*Report, error) {
	start := time.Now()

	schema, err := record.IdentifyColumns(tbl.Columns)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID: uuid.NewString(),
		Mode:  schema.Mode,
	}

	r.logger.Info("run started",
		logging.String("run_id", report.RunID),
		logging.String("mode", string(schema.Mode)),
		logging.Int("rows", len(tbl.Rows)))

	r.preflight(ctx)

	records := collectRecords(tbl, schema)
	r.say(fmt.Sprintf("Processing %d chemicals...", len(records)))
	r.logger.Info("processing records", logging.Int("count", len(records)))

	engine := NewEngine(r.resolver, schema.Mode, WithEngineLogger(r.logger))

	var runErr error
	verdicts := make([]record.Verdict, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		r.say(fmt.Sprintf("Row %d: %s", rec.RowNumber, rec.Name))
		verdicts = append(verdicts, engine.Evaluate(ctx, rec))
	}

	// Order matters: the exact pass demotes records the stereo pass must not
	// regroup.
	verdicts = MarkExactDuplicates(verdicts)
	verdicts = MarkStereoDuplicates(verdicts)

	for _, v := range verdicts {
		r.metrics.VerdictObserved(string(v.Status))
		switch v.Status {
		case record.StatusValidated:
			report.Validated++
		case record.StatusStereoDuplicate:
			report.StereoDuplicates++
		case record.StatusRejected:
			report.Rejected++
		}
	}

	report.Verdicts = verdicts
	report.OK = report.Rejected == 0

	summary := fmt.Sprintf("\nValidation Complete:\n  Validated: %d\n  Stereo Duplicates: %d\n  Rejected: %d",
		report.Validated, report.StereoDuplicates, report.Rejected)
	r.say(summary)

	r.metrics.RunObserved(time.Since(start).Seconds())
	r.logger.Info("run finished",
		logging.String("run_id", report.RunID),
		logging.Int("validated", report.Validated),
		logging.Int("stereo_duplicates", report.StereoDuplicates),
		logging.Int("rejected", report.Rejected),
		logging.Duration("elapsed", time.Since(start)))

	return report, runErr
}

// preflight resolves a universally-known compound so a dead network shows up
// in the logs as a connectivity problem rather than a wall of not-found
// rejections.  Warn-only: the run proceeds regardless.
func (r *Runner) preflight(ctx context.Context) {
	res := r.resolver.Resolve(ctx, "water", lookup.NamespaceName)
	if !res.Found() && res.Diag != nil {
		msg := fmt.Sprintf("PubChem connectivity check failed. "+
			"Results may be rejected due to network/SSL issues. Error: %s", res.Diag.Err)
		r.logger.Warn(msg)
		r.say(msg)
	}
}

// collectRecords extracts the identifier cells row by row, dropping rows with
// every identifier missing.  Row numbers are 1-based positions in the
// original table, so skipped rows leave gaps.
func collectRecords(tbl *record.Table, schema record.Schema) []record.Record {
	records := make([]record.Record, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		rec := record.Record{
			RowNumber: i + 1,
			Name:      tbl.Cell(row, schema.NameCol),
			CAS:       tbl.Cell(row, schema.CASCol),
		}
		if schema.HasSMILES() {
			rec.SMILES = tbl.Cell(row, schema.SMILESCol)
		}
		if record.IsMissing(rec.Name) && record.IsMissing(rec.CAS) && record.IsMissing(rec.SMILES) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (r *Runner) say(msg string) {
	if r.progress != nil {
		r.progress.Progress(msg)
	}
}
