package faceanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "data:image/jpeg;base64,") {
			t.Errorf("request did not carry the image: %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4.1-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newTestAnalyzer(url string) *OpenAIAnalyzer {
	return NewOpenAIAnalyzer("test-key", "", zap.NewNop(),
		option.WithBaseURL(url),
		option.WithMaxRetries(0),
	)
}

func TestOpenAIAnalyzerParsesSignal(t *testing.T) {
	srv := chatServer(t, `{"face_detected":true,"face_count":1,"skin_luminance":0.71,"confidence":0.9}`, http.StatusOK)
	defer srv.Close()

	res, err := newTestAnalyzer(srv.URL).AnalyzeFace(context.Background(), []byte("jpeg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SkinLuminance != 0.71 || res.FaceCount != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestOpenAIAnalyzerReportsNoFace(t *testing.T) {
	srv := chatServer(t, `{"face_detected":false,"face_count":0,"skin_luminance":0,"confidence":0}`, http.StatusOK)
	defer srv.Close()

	_, err := newTestAnalyzer(srv.URL).AnalyzeFace(context.Background(), []byte("jpeg"))
	if !errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestOpenAIAnalyzerSurfacesAPIErrors(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	defer srv.Close()

	_, err := newTestAnalyzer(srv.URL).AnalyzeFace(context.Background(), []byte("jpeg"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoFaceDetected) {
		t.Fatal("API failure must not look like a missing face")
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	if _, err := parsePayload([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPayloadDefaultsFaceCount(t *testing.T) {
	signal := 0.4
	res, err := Payload{FaceDetected: true, FaceCount: 0, SkinLuminance: &signal}.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FaceCount != 1 {
		t.Fatalf("expected face count 1, got %d", res.FaceCount)
	}
}

func TestParsePayloadRequiresSignal(t *testing.T) {
	_, err := parsePayload([]byte(`{"face_detected": true, "face_count": 1}`))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}

	res, err := parsePayload([]byte(`{"face_detected": true, "skin_luminance": 0}`))
	if err != nil {
		t.Fatalf("an explicit zero signal is valid: %v", err)
	}
	if res.SkinLuminance != 0 {
		t.Fatalf("expected signal 0, got %v", res.SkinLuminance)
	}
}
