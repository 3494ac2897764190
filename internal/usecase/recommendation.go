package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/makeup-recommender/internal/cache"
	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/ingest"
	"github.com/example/makeup-recommender/internal/logging"
	"github.com/example/makeup-recommender/internal/recommend"
	"github.com/example/makeup-recommender/internal/repository"
	"github.com/example/makeup-recommender/internal/retry"
	"github.com/example/makeup-recommender/internal/tone"
)

// ErrResultNotFound is returned when a request ID is unknown or expired.
var ErrResultNotFound = errors.New("result not found")

const resultTTL = 30 * time.Minute

// ToneClassifier is the classification step used by the flow.
type ToneClassifier interface {
	Classify(ctx context.Context, image []byte) (*tone.Classification, error)
}

// RecommendationUseCase runs ingest, classification and filtering for one upload.
type RecommendationUseCase struct {
	catalog    *catalog.Catalog
	classifier ToneClassifier
	repo       repository.Repository
	cache      cache.Cache
	logger     *zap.Logger
	policy     retry.Policy
	now        func() time.Time
}

// Outcome is what the presentation layer renders for one request.
type Outcome struct {
	RequestID      string                `json:"request_id"`
	Category       catalog.Category      `json:"category"`
	Signal         float64               `json:"signal"`
	Confidence     float64               `json:"confidence"`
	Criteria       recommend.Criteria    `json:"filters"`
	Products       []catalog.Product     `json:"-"`
	Groups         []recommend.TypeGroup `json:"groups"`
	ProcessingTime time.Duration         `json:"-"`
}

// Count is the number of recommended products.
func (o *Outcome) Count() int {
	return len(o.Products)
}

type cachedAnalysis struct {
	RequestID  string           `json:"request_id"`
	Category   catalog.Category `json:"category"`
	Signal     float64          `json:"signal"`
	Confidence float64          `json:"confidence"`
}

// NewRecommendationUseCase constructs a new use case instance.
func NewRecommendationUseCase(cat *catalog.Catalog, classifier ToneClassifier, repo repository.Repository, c cache.Cache, logger *zap.Logger) *RecommendationUseCase {
	return &RecommendationUseCase{
		catalog:    cat,
		classifier: classifier,
		repo:       repo,
		cache:      c,
		logger:     logger.Named("recommendation_usecase"),
		policy:     retry.DefaultPolicy(),
		now:        time.Now,
	}
}

// Catalog returns the product table recommendations are drawn from.
func (uc *RecommendationUseCase) Catalog() *catalog.Catalog {
	return uc.catalog
}

// Recommend analyses an uploaded photo and returns filtered products for
// the detected category. Ingest and classifier errors are returned
// wrapped in a *logging.OperationError; history and cache failures are
// logged only.
func (uc *RecommendationUseCase) Recommend(ctx context.Context, imageBytes []byte, criteria recommend.Criteria) (*Outcome, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.recommend", requestID)
	start := uc.now()

	img, err := ingest.Decode(imageBytes)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.ingest_image", requestID, err)
		opLogger.Warn("rejected upload", zap.Error(wrapped))
		return nil, wrapped
	}
	if img.Resized {
		opLogger.Debug("resized upload", zap.Int("width", img.Width), zap.Int("height", img.Height))
	}

	classification, err := uc.classifier.Classify(ctx, img.Data)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.classify_tone", requestID, err)
		if errors.Is(err, tone.ErrNoFaceDetected) {
			opLogger.Info("no face detected")
		} else {
			opLogger.Error("tone classification failed", zap.Error(wrapped))
		}
		return nil, wrapped
	}

	outcome := uc.buildOutcome(requestID, classification.Category, classification.Signal, classification.Confidence, criteria)
	outcome.ProcessingTime = uc.now().Sub(start)
	opLogger.Info("recommendation ready",
		zap.String("category", outcome.Category.String()),
		zap.Int("products", outcome.Count()),
		zap.Duration("processing_time", outcome.ProcessingTime),
	)

	uc.record(ctx, opLogger, imageBytes, outcome)
	return outcome, nil
}

// Refilter applies new criteria to a previous analysis without running the
// classifier again.
func (uc *RecommendationUseCase) Refilter(ctx context.Context, requestID string, criteria recommend.Criteria) (*Outcome, error) {
	analysis, err := uc.lookup(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return uc.buildOutcome(requestID, analysis.Category, analysis.Signal, analysis.Confidence, criteria), nil
}

// GetResult retrieves the persisted record of a previous analysis.
func (uc *RecommendationUseCase) GetResult(ctx context.Context, requestID string) (*repository.AnalysisLog, error) {
	log, err := uc.repo.FindByRequestID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	return log, err
}

func (uc *RecommendationUseCase) buildOutcome(requestID string, category catalog.Category, signal, confidence float64, criteria recommend.Criteria) *Outcome {
	products := recommend.Recommend(uc.catalog, category, criteria)
	return &Outcome{
		RequestID:  requestID,
		Category:   category,
		Signal:     signal,
		Confidence: confidence,
		Criteria:   criteria,
		Products:   products,
		Groups:     recommend.Group(products),
	}
}

func (uc *RecommendationUseCase) record(ctx context.Context, opLogger *zap.Logger, imageBytes []byte, outcome *Outcome) {
	hash := sha1.Sum(imageBytes)
	log := &repository.AnalysisLog{
		RequestID:        outcome.RequestID,
		Category:         outcome.Category,
		Signal:           outcome.Signal,
		Confidence:       outcome.Confidence,
		SHA1Hash:         hex.EncodeToString(hash[:]),
		ProcessingTimeMs: outcome.ProcessingTime.Milliseconds(),
		CreatedAt:        uc.now().UTC(),
	}
	if err := uc.repo.SaveLog(ctx, log); err != nil {
		opLogger.Error("failed to persist analysis log", logging.Fields(err)...)
	}

	serialized, err := json.Marshal(cachedAnalysis{
		RequestID:  outcome.RequestID,
		Category:   outcome.Category,
		Signal:     outcome.Signal,
		Confidence: outcome.Confidence,
	})
	if err != nil {
		opLogger.Error("failed to serialize analysis", zap.Error(err))
		return
	}
	if err := retry.Do(ctx, uc.policy, uc.logger, "cache.set.result", outcome.RequestID, func() error {
		return uc.cache.Set(ctx, cacheKey(outcome.RequestID), string(serialized), resultTTL)
	}); err != nil {
		opLogger.Error("failed to cache analysis", logging.Fields(err)...)
	}
}

func (uc *RecommendationUseCase) lookup(ctx context.Context, requestID string) (*cachedAnalysis, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.lookup", requestID)

	var cached string
	err := retry.Do(ctx, uc.policy, uc.logger, "cache.get.result", requestID, func() error {
		value, err := uc.cache.Get(ctx, cacheKey(requestID))
		if err != nil {
			return err
		}
		cached = value
		return nil
	})
	if err == nil {
		var payload cachedAnalysis
		if err := json.Unmarshal([]byte(cached), &payload); err == nil && payload.Category.Valid() {
			return &payload, nil
		}
		opLogger.Warn("failed to decode cached analysis")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		opLogger.Warn("failed to read cache", logging.Fields(err)...)
	}

	log, err := uc.GetResult(ctx, requestID)
	if err != nil {
		if !errors.Is(err, ErrResultNotFound) {
			opLogger.Error("failed to load analysis log", logging.Fields(err)...)
		}
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, requestID)
	}
	return &cachedAnalysis{RequestID: log.RequestID, Category: log.Category, Signal: log.Signal, Confidence: log.Confidence}, nil
}

func cacheKey(requestID string) string {
	return "analysis:" + requestID
}
