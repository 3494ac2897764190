// Package tone turns the facial-analysis skin signal into a catalog category.
package tone

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/faceanalysis"
)

var (
	ErrNoFaceDetected      = errors.New("no face detected in image")
	ErrAnalysisUnavailable = errors.New("skin tone analysis unavailable")
	ErrInvalidThresholds   = errors.New("invalid tone thresholds")
)

// Default cutoffs on the [0,1] skin luminance scale.
const (
	DefaultFairThreshold   = 0.62
	DefaultMediumThreshold = 0.38
)

// Thresholds split the luminance scale into three buckets. A signal equal
// to a cutoff falls into the lighter bucket.
type Thresholds struct {
	Fair   float64
	Medium float64
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Fair: DefaultFairThreshold, Medium: DefaultMediumThreshold}
}

// Validate requires 0 < Medium < Fair <= 1.
func (t Thresholds) Validate() error {
	if !(t.Medium > 0 && t.Medium < t.Fair && t.Fair <= 1) {
		return fmt.Errorf("%w: need 0 < medium (%v) < fair (%v) <= 1", ErrInvalidThresholds, t.Medium, t.Fair)
	}
	return nil
}

// Bucket maps a luminance signal to a category.
func (t Thresholds) Bucket(signal float64) catalog.Category {
	switch {
	case signal >= t.Fair:
		return catalog.CategoryFair
	case signal >= t.Medium:
		return catalog.CategoryMedium
	default:
		return catalog.CategoryDark
	}
}

// Classification is the outcome of one classifier call.
type Classification struct {
	Category   catalog.Category `json:"category"`
	Signal     float64          `json:"signal"`
	Confidence float64          `json:"confidence"`
}

// Classifier buckets the analyzer's signal into a skin tone category.
type Classifier struct {
	analyzer   faceanalysis.Analyzer
	thresholds Thresholds
	logger     *zap.Logger
}

// NewClassifier validates the thresholds and returns a classifier.
func NewClassifier(analyzer faceanalysis.Analyzer, thresholds Thresholds, logger *zap.Logger) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{analyzer: analyzer, thresholds: thresholds, logger: logger.Named("tone_classifier")}, nil
}

// Thresholds returns the cutoffs in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify calls the analyzer once. It fails with ErrNoFaceDetected when
// the analyzer finds no face and ErrAnalysisUnavailable for any other
// analyzer failure, including an out of range signal.
func (c *Classifier) Classify(ctx context.Context, image []byte) (*Classification, error) {
	res, err := c.analyzer.AnalyzeFace(ctx, image)
	if err != nil {
		if errors.Is(err, faceanalysis.ErrNoFaceDetected) {
			return nil, ErrNoFaceDetected
		}
		c.logger.Warn("face analysis failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	if res == nil || res.FaceCount == 0 {
		return nil, ErrNoFaceDetected
	}
	if math.IsNaN(res.SkinLuminance) || res.SkinLuminance < 0 || res.SkinLuminance > 1 {
		return nil, fmt.Errorf("%w: signal %v out of range", ErrAnalysisUnavailable, res.SkinLuminance)
	}

	category := c.thresholds.Bucket(res.SkinLuminance)
	c.logger.Debug("classified skin tone",
		zap.String("category", category.String()),
		zap.Float64("signal", res.SkinLuminance),
		zap.Int("faces", res.FaceCount),
	)
	return &Classification{Category: category, Signal: res.SkinLuminance, Confidence: res.Confidence}, nil
}
