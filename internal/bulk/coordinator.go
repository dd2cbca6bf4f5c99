// Package bulk applies one operation to many items with bounded concurrency
// and reports each item's outcome independently.
package bulk

import (
	"context"
	"fmt"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/logging"
	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Outcome is the per-item result of a bulk operation.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomePermissionDenied Outcome = "permission_denied"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeStoreError       Outcome = "store_error"
)

// DefaultConcurrency bounds in-flight item operations when no limit is set.
const DefaultConcurrency = 4

// Operation is applied to one item.
type Operation func(ctx context.Context, id uuid.UUID) error

// Classifier maps an item error onto an Outcome. It is never called with a
// nil error.
type Classifier func(err error) Outcome

// Result is the outcome for one requested id. Results keep request order.
type Result struct {
	ID      uuid.UUID `json:"id"`
	Outcome Outcome   `json:"outcome"`
	Error   string    `json:"error,omitempty"`
	Err     error     `json:"-"`
}

// Summary counts results per outcome.
type Summary struct {
	Total            int `json:"total"`
	Succeeded        int `json:"succeeded"`
	PermissionDenied int `json:"permission_denied"`
	NotFound         int `json:"not_found"`
	StoreError       int `json:"store_error"`
}

// Report is returned by Run.
type Report struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// Failed reports whether any item did not succeed.
func (r Report) Failed() bool {
	return r.Summary.Succeeded != r.Summary.Total
}

// Coordinator runs operations across ids.
type Coordinator struct {
	concurrency int
	classify    Classifier
	logger      interfaces.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency bounds the number of items processed at once. Values below
// one fall back to DefaultConcurrency.
func WithConcurrency(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.concurrency = limit
		}
	}
}

// WithLogger sets the logger used for per-item failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator builds a coordinator. A nil classifier reports every error
// as a store error.
func NewCoordinator(classify Classifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		concurrency: DefaultConcurrency,
		classify:    classify,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.classify == nil {
		c.classify = func(error) Outcome { return OutcomeStoreError }
	}
	return c
}

// Run applies op to every id. Items never share a transaction and one
// failure never stops the others. Once ctx is done, items that have not
// started are reported as store errors carrying the context error.
func (c *Coordinator) Run(ctx context.Context, ids []uuid.UUID, op Operation) Report {
	results := make([]Result, len(ids))

	var group errgroup.Group
	group.SetLimit(c.concurrency)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			results[i] = c.result(id, err)
			continue
		}
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = c.result(id, err)
				return nil
			}
			results[i] = c.result(id, c.apply(ctx, id, op))
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Results: results, Summary: summarize(results)}
	c.logger.Info("bulk.run.completed",
		"total", report.Summary.Total,
		"succeeded", report.Summary.Succeeded,
		"permission_denied", report.Summary.PermissionDenied,
		"not_found", report.Summary.NotFound,
		"store_error", report.Summary.StoreError,
	)
	return report
}

func (c *Coordinator) apply(ctx context.Context, id uuid.UUID, op Operation) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("bulk: operation panicked: %v", recovered)
		}
	}()
	return op(ctx, id)
}

func (c *Coordinator) result(id uuid.UUID, err error) Result {
	if err == nil {
		return Result{ID: id, Outcome: OutcomeSuccess}
	}
	outcome := c.classify(err)
	switch outcome {
	case OutcomePermissionDenied, OutcomeNotFound, OutcomeStoreError:
	default:
		outcome = OutcomeStoreError
	}
	c.logger.Warn("bulk.item.failed", "id", id.String(), "outcome", string(outcome), "error", err)
	return Result{ID: id, Outcome: outcome, Error: err.Error(), Err: err}
}

func summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		switch result.Outcome {
		case OutcomeSuccess:
			summary.Succeeded++
		case OutcomePermissionDenied:
			summary.PermissionDenied++
		case OutcomeNotFound:
			summary.NotFound++
		default:
			summary.StoreError++
		}
	}
	return summary
}
