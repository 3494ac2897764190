// Package faceanalysis describes the external facial-analysis capability
// used to read a skin tone signal from a photo.
package faceanalysis

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoFaceDetected is wrapped by analyzers when the image holds no face.
// Any other analyzer error means the capability itself failed.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrMalformedResponse is returned when a backend answers without a usable
// tone signal.
var ErrMalformedResponse = errors.New("malformed analysis response")

// Result contains the attributes reported for the dominant face.
type Result struct {
	FaceCount int
	// SkinLuminance is the tone signal in [0,1], 1 being the lightest skin.
	SkinLuminance float64
	Confidence    float64
}

// Analyzer inspects an image and reports facial attributes.
type Analyzer interface {
	AnalyzeFace(ctx context.Context, image []byte) (*Result, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, image []byte) (*Result, error)

// AnalyzeFace calls f.
func (f AnalyzerFunc) AnalyzeFace(ctx context.Context, image []byte) (*Result, error) {
	return f(ctx, image)
}

// Payload is the wire shape shared by the remote backends. A nil
// SkinLuminance means the backend left the signal out.
type Payload struct {
	FaceDetected  bool     `json:"face_detected"`
	FaceCount     int      `json:"face_count"`
	SkinLuminance *float64 `json:"skin_luminance"`
	Confidence    float64  `json:"confidence"`
}

// Result converts the payload. face_detected alone decides whether a face
// was found: false maps to ErrNoFaceDetected, and a detected face with a
// zero or missing face_count counts as one face. A detected face without a
// signal is ErrMalformedResponse.
func (p Payload) Result() (*Result, error) {
	if !p.FaceDetected {
		return nil, ErrNoFaceDetected
	}
	if p.SkinLuminance == nil {
		return nil, fmt.Errorf("%w: skin_luminance missing", ErrMalformedResponse)
	}
	count := p.FaceCount
	if count == 0 {
		count = 1
	}
	return &Result{FaceCount: count, SkinLuminance: *p.SkinLuminance, Confidence: p.Confidence}, nil
}
