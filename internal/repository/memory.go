package repository

import (
	"context"
	"sync"

	"github.com/example/makeup-recommender/internal/catalog"
)

// MemoryRepository keeps analysis logs in process memory. It backs the
// service when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	logs   []*AnalysisLog
	byID   map[string]*AnalysisLog
	nextID uint
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*AnalysisLog)}
}

// SaveLog stores a copy of log.
func (r *MemoryRepository) SaveLog(_ context.Context, log *AnalysisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	log.ID = r.nextID
	stored := *log
	r.logs = append(r.logs, &stored)
	r.byID[stored.RequestID] = &stored
	return nil
}

// FindByRequestID returns a copy of the stored log.
func (r *MemoryRepository) FindByRequestID(_ context.Context, requestID string) (*AnalysisLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log, ok := r.byID[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	found := *log
	return &found, nil
}

// AggregateMetrics computes totals and averages over stored logs.
func (r *MemoryRepository) AggregateMetrics(_ context.Context) (*MetricsAggregation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agg := &MetricsAggregation{CategoryCounts: make(map[catalog.Category]int64)}
	var signalSum float64
	var latencySum int64
	for _, log := range r.logs {
		agg.TotalCount++
		agg.CategoryCounts[log.Category]++
		signalSum += log.Signal
		latencySum += log.ProcessingTimeMs
	}
	if agg.TotalCount > 0 {
		agg.AverageSignal = signalSum / float64(agg.TotalCount)
		agg.AverageProcessingLatencyMs = float64(latencySum) / float64(agg.TotalCount)
	}
	return agg, nil
}
