package grpcclient

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/makeup-recommender/internal/faceanalysis"
)

type fakeAnalyzer struct {
	response map[string]any
	err      error
	images   []string
}

func (f *fakeAnalyzer) handle(req *structpb.Struct) (*structpb.Struct, error) {
	f.images = append(f.images, req.GetFields()["image"].GetStringValue())
	if f.err != nil {
		return nil, f.err
	}
	return structpb.NewStruct(f.response)
}

var fakeServiceDesc = grpc.ServiceDesc{
	ServiceName: "faceanalysis.v1.FaceAnalyzer",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "AnalyzeFace",
		Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
			req := &structpb.Struct{}
			if err := dec(req); err != nil {
				return nil, err
			}
			return srv.(*fakeAnalyzer).handle(req)
		},
	}},
}

func startFake(t *testing.T, fake *fakeAnalyzer) faceanalysis.Analyzer {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	server.RegisterService(&fakeServiceDesc, fake)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	analyzer, conn, err := DialFaceAnalyzer(context.Background(), "bufnet", time.Second, zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return analyzer
}

func TestAnalyzeFaceReturnsSignal(t *testing.T) {
	fake := &fakeAnalyzer{response: map[string]any{
		"face_detected":  true,
		"face_count":     2,
		"skin_luminance": 0.55,
		"confidence":     0.8,
	}}
	analyzer := startFake(t, fake)

	res, err := analyzer.AnalyzeFace(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SkinLuminance != 0.55 || res.FaceCount != 2 || res.Confidence != 0.8 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(fake.images) != 1 || fake.images[0] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("server did not receive the encoded image: %v", fake.images)
	}
}

func TestAnalyzeFaceMapsMissingFace(t *testing.T) {
	analyzer := startFake(t, &fakeAnalyzer{response: map[string]any{"face_detected": false}})

	if _, err := analyzer.AnalyzeFace(context.Background(), []byte("x")); !errors.Is(err, faceanalysis.ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestAnalyzeFaceMapsNotFoundStatus(t *testing.T) {
	analyzer := startFake(t, &fakeAnalyzer{err: status.Error(codes.NotFound, "no face in frame")})

	if _, err := analyzer.AnalyzeFace(context.Background(), []byte("x")); !errors.Is(err, faceanalysis.ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestAnalyzeFaceSurfacesOtherErrors(t *testing.T) {
	analyzer := startFake(t, &fakeAnalyzer{err: status.Error(codes.Unavailable, "model loading")})

	_, err := analyzer.AnalyzeFace(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, faceanalysis.ErrNoFaceDetected) {
		t.Fatal("unavailable must not be reported as a missing face")
	}
	if status.Code(errors.Unwrap(err)) != codes.Unavailable {
		t.Fatalf("expected unavailable status, got %v", err)
	}
}

func TestAnalyzeFaceRejectsMissingSignal(t *testing.T) {
	cases := map[string]map[string]any{
		"absent":       {"face_detected": true, "face_count": 1},
		"not a number": {"face_detected": true, "skin_luminance": "bright"},
	}
	for name, response := range cases {
		t.Run(name, func(t *testing.T) {
			analyzer := startFake(t, &fakeAnalyzer{response: response})

			_, err := analyzer.AnalyzeFace(context.Background(), []byte("x"))
			if !errors.Is(err, faceanalysis.ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
