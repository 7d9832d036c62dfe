// Package batch drives reconciliation across a queried asset population
// using a fixed-size worker pool. Each worker owns one asset end-to-end, so
// writes are naturally serialized per asset while different assets proceed
// concurrently.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/northfleet/assetsync/pkg/assets"
	"github.com/northfleet/assetsync/pkg/reconcile"
)

// DefaultWorkers is the default worker pool width.
const DefaultWorkers = 5

// Status classifies the outcome of one asset's reconciliation attempt.
type Status string

// Per-asset outcomes.
const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the result of processing a single asset.
type Outcome struct {
	ObjectID string
	Status   Status
	Reason   string
}

// AssetError records why one asset failed.
type AssetError struct {
	ObjectID string `json:"object_id"`
	Reason   string `json:"reason"`
}

// Summary aggregates a batch run. A run over an empty population yields the
// zero Summary, not an error.
type Summary struct {
	Total   int          `json:"total"`
	Updated int          `json:"updated"`
	Failed  int          `json:"failed"`
	Skipped int          `json:"skipped"`
	Errors  []AssetError `json:"errors,omitempty"`
}

// RegistryClient is the slice of the registry client the orchestrator needs.
type RegistryClient interface {
	SearchObjects(ctx context.Context, aql string) ([]assets.Object, error)
	GetObjectFresh(ctx context.Context, id string) (*assets.Object, error)
	UpdateObject(ctx context.Context, id, objectTypeID string, attrs []assets.ObjectAttribute) error
	VerifyUpdate(ctx context.Context, id string, want []assets.ObjectAttribute)
}

// Orchestrator runs reconciliation over a population of assets.
type Orchestrator struct {
	client  RegistryClient
	schema  *assets.Schema
	planner *reconcile.Planner
	workers int
	logger  *zerolog.Logger
	now     func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the worker pool width.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for age calculations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator.
func New(client RegistryClient, schema *assets.Schema, opts ...Option) *Orchestrator {
	nop := zerolog.Nop()
	o := &Orchestrator{
		client:  client,
		schema:  schema,
		workers: DefaultWorkers,
		logger:  &nop,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.planner = reconcile.NewPlanner(o.logger)
	return o
}

// Run queries the population matching aql and reconciles every asset through
// the worker pool. Results are aggregated as they complete; no cross-asset
// ordering is guaranteed. Cancelling ctx stops dispatching new assets and
// lets in-flight workers drain.
func (o *Orchestrator) Run(ctx context.Context, aql string) (*Summary, error) {
	population, err := o.client.SearchObjects(ctx, aql)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(population)}
	if len(population) == 0 {
		o.logger.Info().Str("aql", aql).Msg("No assets matched query")
		return summary, nil
	}

	progress := newProgressBroker(o.logger)
	go progress.run()

	jobs := make(chan assets.Object)
	outcomes := make(chan Outcome)

	var workers sync.WaitGroup
	width := o.workers
	if width > len(population) {
		width = len(population)
	}
	for i := 0; i < width; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for obj := range jobs {
				out := o.process(ctx, obj)
				progress.publish(progressMsg{objectID: out.ObjectID, status: out.Status, reason: out.Reason})
				outcomes <- out
			}
		}()
	}

	go func() {
	dispatch:
		for _, obj := range population {
			select {
			case jobs <- obj:
			case <-ctx.Done():
				break dispatch
			}
		}
		close(jobs)
		workers.Wait()
		close(outcomes)
	}()

	dispatched := 0
	for out := range outcomes {
		dispatched++
		switch out.Status {
		case StatusUpdated:
			summary.Updated++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
			summary.Errors = append(summary.Errors, AssetError{ObjectID: out.ObjectID, Reason: out.Reason})
		}
	}
	progress.stop()

	// Assets never dispatched because of cancellation count as skipped so
	// the summary still covers the whole population.
	if undispatched := summary.Total - dispatched; undispatched > 0 {
		summary.Skipped += undispatched
	}

	o.logger.Info().
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Batch reconciliation finished")

	return summary, nil
}

// process reconciles a single asset end-to-end and classifies the outcome.
func (o *Orchestrator) process(ctx context.Context, obj assets.Object) Outcome {
	if obj.ID == "" {
		return Outcome{Status: StatusSkipped, Reason: "missing object id"}
	}

	// Always decide from a fresh read; search results and cache entries may
	// be stale.
	fresh, err := o.client.GetObjectFresh(ctx, obj.ID)
	if err != nil {
		return Outcome{ObjectID: obj.ID, Status: StatusFailed, Reason: err.Error()}
	}
	if fresh == nil {
		return Outcome{ObjectID: obj.ID, Status: StatusSkipped, Reason: "object no longer exists"}
	}

	rec := assets.RecordFromObject(fresh, o.schema)
	plan := o.planner.Build(rec, o.now())
	if plan.Empty() {
		return Outcome{ObjectID: obj.ID, Status: StatusSkipped, Reason: "already reconciled"}
	}

	attrs := plan.Attributes(o.schema.ForClass(rec.Class).Attributes)
	if err := o.client.UpdateObject(ctx, rec.ObjectID, rec.ObjectTypeID, attrs); err != nil {
		return Outcome{ObjectID: obj.ID, Status: StatusFailed, Reason: err.Error()}
	}

	o.client.VerifyUpdate(ctx, rec.ObjectID, attrs)
	return Outcome{ObjectID: obj.ID, Status: StatusUpdated}
}
