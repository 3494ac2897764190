package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/logging"
	"github.com/example/makeup-recommender/internal/retry"
)

type transientTestError struct{}

func (transientTestError) Error() string   { return "transient" }
func (transientTestError) Timeout() bool   { return true }
func (transientTestError) Temporary() bool { return true }

func testRepo(attempts int) *GormRepository {
	return &GormRepository{
		logger: zap.NewNop(),
		policy: retry.Policy{Attempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
	}
}

func TestExecuteWithRetryRetriesTransientErrors(t *testing.T) {
	repo := testRepo(3)

	attempts := 0
	err := repo.executeWithRetry(context.Background(), "test.operation", "req-1", func() error {
		attempts++
		if attempts < 2 {
			return transientTestError{}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestExecuteWithRetryReturnsOperationError(t *testing.T) {
	repo := testRepo(2)

	attempts := 0
	err := repo.executeWithRetry(context.Background(), "test.operation", "req-2", func() error {
		attempts++
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}

	var opErr *logging.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "test.operation" {
		t.Fatalf("unexpected operation: %s", opErr.Operation)
	}
	if opErr.RequestID != "req-2" {
		t.Fatalf("unexpected request id: %s", opErr.RequestID)
	}
}

func TestMemoryRepositorySaveAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	log := &AnalysisLog{RequestID: "req-1", Category: catalog.CategoryDark, Signal: 0.2}
	if err := repo.SaveLog(ctx, log); err != nil {
		t.Fatalf("save: %v", err)
	}
	if log.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	found, err := repo.FindByRequestID(ctx, "req-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Category != catalog.CategoryDark || found.Signal != 0.2 {
		t.Fatalf("unexpected log: %+v", found)
	}

	found.Category = catalog.CategoryFair
	again, _ := repo.FindByRequestID(ctx, "req-1")
	if again.Category != catalog.CategoryDark {
		t.Fatal("stored log must not be mutated through a returned copy")
	}

	if _, err := repo.FindByRequestID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryAggregateMetrics(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	empty, err := repo.AggregateMetrics(ctx)
	if err != nil || empty.TotalCount != 0 || empty.AverageSignal != 0 {
		t.Fatalf("unexpected empty aggregation: %+v, %v", empty, err)
	}

	_ = repo.SaveLog(ctx, &AnalysisLog{RequestID: "a", Category: catalog.CategoryFair, Signal: 0.8, ProcessingTimeMs: 100})
	_ = repo.SaveLog(ctx, &AnalysisLog{RequestID: "b", Category: catalog.CategoryFair, Signal: 0.7, ProcessingTimeMs: 300})
	_ = repo.SaveLog(ctx, &AnalysisLog{RequestID: "c", Category: catalog.CategoryDark, Signal: 0.3, ProcessingTimeMs: 200})

	agg, err := repo.AggregateMetrics(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalCount != 3 {
		t.Fatalf("expected 3 logs, got %d", agg.TotalCount)
	}
	if agg.CategoryCounts[catalog.CategoryFair] != 2 || agg.CategoryCounts[catalog.CategoryDark] != 1 {
		t.Fatalf("unexpected category counts: %v", agg.CategoryCounts)
	}
	if agg.AverageProcessingLatencyMs != 200 {
		t.Fatalf("unexpected latency: %v", agg.AverageProcessingLatencyMs)
	}
	if diff := agg.AverageSignal - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unexpected average signal: %v", agg.AverageSignal)
	}
}
