package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/makeup-recommender/internal/catalog"
)

// ErrNotFound is returned when no analysis matches the lookup.
var ErrNotFound = errors.New("analysis not found")

// AnalysisLog represents one persisted skin tone analysis.
type AnalysisLog struct {
	ID               uint             `gorm:"primaryKey" json:"-"`
	RequestID        string           `gorm:"column:request_id;uniqueIndex;size:64" json:"request_id"`
	Category         catalog.Category `gorm:"column:category;size:16;index" json:"category"`
	Signal           float64          `gorm:"column:signal" json:"signal"`
	Confidence       float64          `gorm:"column:confidence" json:"confidence"`
	SHA1Hash         string           `gorm:"column:sha1_hash;size:40;index" json:"sha1_hash"`
	ProcessingTimeMs int64            `gorm:"column:processing_time_ms" json:"processing_time_ms"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the default table name.
func (AnalysisLog) TableName() string {
	return "analysis_logs"
}

// MetricsAggregation holds raw counts computed over all analyses.
type MetricsAggregation struct {
	TotalCount                 int64
	CategoryCounts             map[catalog.Category]int64
	AverageSignal              float64
	AverageProcessingLatencyMs float64
}

// Repository is the persistence contract for analysis history.
type Repository interface {
	SaveLog(ctx context.Context, log *AnalysisLog) error
	FindByRequestID(ctx context.Context, requestID string) (*AnalysisLog, error)
	AggregateMetrics(ctx context.Context) (*MetricsAggregation, error)
}
