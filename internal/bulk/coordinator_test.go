package bulk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errMissing = errors.New("missing")
	errDenied  = errors.New("denied")
)

func classify(err error) Outcome {
	switch {
	case errors.Is(err, errMissing):
		return OutcomeNotFound
	case errors.Is(err, errDenied):
		return OutcomePermissionDenied
	default:
		return OutcomeStoreError
	}
}

func TestRunReportsEachItemIndependently(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	failures := map[uuid.UUID]error{
		ids[1]: errDenied,
		ids[2]: errMissing,
		ids[3]: errors.New("disk full"),
	}

	report := NewCoordinator(classify).Run(context.Background(), ids, func(_ context.Context, id uuid.UUID) error {
		return failures[id]
	})

	require.Len(t, report.Results, 4)
	for i, id := range ids {
		assert.Equal(t, id, report.Results[i].ID, "results keep request order")
	}
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)
	assert.Equal(t, OutcomePermissionDenied, report.Results[1].Outcome)
	assert.Equal(t, OutcomeNotFound, report.Results[2].Outcome)
	assert.Equal(t, OutcomeStoreError, report.Results[3].Outcome)
	assert.Equal(t, "disk full", report.Results[3].Error)
	assert.Equal(t, Summary{Total: 4, Succeeded: 1, PermissionDenied: 1, NotFound: 1, StoreError: 1}, report.Summary)
	assert.True(t, report.Failed())
}

func TestRunBoundsConcurrency(t *testing.T) {
	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var inFlight, peak int32
	report := NewCoordinator(classify, WithConcurrency(3)).Run(context.Background(), ids, func(context.Context, uuid.UUID) error {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			observed := atomic.LoadInt32(&peak)
			if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	assert.False(t, report.Failed())
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRunCancelledContextSkipsUnstartedItems(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var ran []uuid.UUID
	report := NewCoordinator(classify, WithConcurrency(1)).Run(ctx, ids, func(_ context.Context, id uuid.UUID) error {
		mu.Lock()
		ran = append(ran, id)
		mu.Unlock()
		cancel()
		return nil
	})

	require.Len(t, ran, 1)
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)
	for _, result := range report.Results[1:] {
		assert.Equal(t, OutcomeStoreError, result.Outcome)
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestRunRecoversPanickingOperation(t *testing.T) {
	id := uuid.New()
	report := NewCoordinator(nil).Run(context.Background(), []uuid.UUID{id}, func(context.Context, uuid.UUID) error {
		panic("boom")
	})
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeStoreError, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Error, "boom")
}

func TestRunEmptyInput(t *testing.T) {
	report := NewCoordinator(classify).Run(context.Background(), nil, func(context.Context, uuid.UUID) error {
		t.Fatalf("operation must not run")
		return nil
	})
	assert.Empty(t, report.Results)
	assert.False(t, report.Failed())
}
