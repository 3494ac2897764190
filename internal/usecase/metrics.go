package usecase

import (
	"context"

	"github.com/example/makeup-recommender/internal/catalog"
)

// MetricsSummary represents aggregated analysis insights.
type MetricsSummary struct {
	TotalAnalyses              int64                        `json:"total_analyses"`
	CategoryCounts             map[catalog.Category]int64   `json:"category_counts"`
	CategoryShare              map[catalog.Category]float64 `json:"category_share"`
	AverageSignal              float64                      `json:"average_signal"`
	AverageProcessingLatencyMs float64                      `json:"average_processing_latency_ms"`
}

// GetMetricsSummary aggregates analysis metrics from persisted logs.
func (uc *RecommendationUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MetricsSummary{
		TotalAnalyses:              aggregation.TotalCount,
		CategoryCounts:             make(map[catalog.Category]int64, len(catalog.Categories)),
		CategoryShare:              make(map[catalog.Category]float64, len(catalog.Categories)),
		AverageSignal:              aggregation.AverageSignal,
		AverageProcessingLatencyMs: aggregation.AverageProcessingLatencyMs,
	}

	for _, c := range catalog.Categories {
		count := aggregation.CategoryCounts[c]
		summary.CategoryCounts[c] = count
		if aggregation.TotalCount > 0 {
			summary.CategoryShare[c] = float64(count) / float64(aggregation.TotalCount)
		}
	}

	return summary, nil
}
