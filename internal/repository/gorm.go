package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/retry"
)

// GormRepository stores analysis logs in PostgreSQL through gorm.
type GormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	policy retry.Policy
}

// NewGormRepository creates a new repository instance.
func NewGormRepository(db *gorm.DB, logger *zap.Logger) *GormRepository {
	return &GormRepository{
		db:     db,
		logger: logger.Named("analysis_repository"),
		policy: retry.DefaultPolicy(),
	}
}

// AutoMigrate ensures the schema is available.
func (r *GormRepository) AutoMigrate(ctx context.Context) error {
	return r.executeWithRetry(ctx, "repository.auto_migrate", "", func() error {
		return r.db.WithContext(ctx).AutoMigrate(&AnalysisLog{})
	})
}

// SaveLog persists an analysis log entry.
func (r *GormRepository) SaveLog(ctx context.Context, log *AnalysisLog) error {
	return r.executeWithRetry(ctx, "repository.save_log", log.RequestID, func() error {
		return r.db.WithContext(ctx).Create(log).Error
	})
}

// FindByRequestID retrieves the analysis log recorded for a request.
func (r *GormRepository) FindByRequestID(ctx context.Context, requestID string) (*AnalysisLog, error) {
	var log AnalysisLog
	err := r.executeWithRetry(ctx, "repository.find_by_request_id", requestID, func() error {
		return r.db.WithContext(ctx).First(&log, "request_id = ?", requestID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

type categoryCount struct {
	Category catalog.Category
	Count    int64
}

type averages struct {
	Total        int64
	AvgSignal    float64
	AvgLatencyMs float64
}

// AggregateMetrics computes totals and averages over all analyses.
func (r *GormRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var avg averages
	var counts []categoryCount
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		db := r.db.WithContext(ctx).Model(&AnalysisLog{})
		if err := db.Select("COUNT(*) AS total, COALESCE(AVG(signal), 0) AS avg_signal, COALESCE(AVG(processing_time_ms), 0) AS avg_latency_ms").
			Scan(&avg).Error; err != nil {
			return err
		}
		return r.db.WithContext(ctx).Model(&AnalysisLog{}).
			Select("category, COUNT(*) AS count").
			Group("category").
			Scan(&counts).Error
	})
	if err != nil {
		return nil, err
	}

	agg := &MetricsAggregation{
		TotalCount:                 avg.Total,
		CategoryCounts:             make(map[catalog.Category]int64, len(counts)),
		AverageSignal:              avg.AvgSignal,
		AverageProcessingLatencyMs: avg.AvgLatencyMs,
	}
	for _, c := range counts {
		agg.CategoryCounts[c.Category] = c.Count
	}
	return agg, nil
}

func (r *GormRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	return retry.Do(ctx, r.policy, r.logger, operation, requestID, fn)
}
