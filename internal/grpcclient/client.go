package grpcclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/makeup-recommender/internal/faceanalysis"
	"github.com/example/makeup-recommender/internal/logging"
)

// AnalyzeFaceMethod is the full gRPC method name served by the analyzer.
// Requests and responses are google.protobuf.Struct values so no service
// specific stubs are needed on either side.
const AnalyzeFaceMethod = "/faceanalysis.v1.FaceAnalyzer/AnalyzeFace"

// DialFaceAnalyzer returns a ready-to-use gRPC client for the analysis service.
func DialFaceAnalyzer(ctx context.Context, addr string, callTimeout time.Duration, logger *zap.Logger, opts ...grpc.DialOption) (faceanalysis.Analyzer, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, opts...)

	conn, err := grpc.DialContext(dialCtx, addr, dialOpts...)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_face_analyzer", "", err)
		logger.Error("failed to dial face analyzer", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return NewFaceAnalyzer(conn, callTimeout, logger), conn, nil
}

// NewFaceAnalyzer wraps an existing connection.
func NewFaceAnalyzer(conn grpc.ClientConnInterface, callTimeout time.Duration, logger *zap.Logger) faceanalysis.Analyzer {
	return &grpcFaceAnalyzer{conn: conn, callTimeout: callTimeout, logger: logger.Named("grpc_face_analyzer")}
}

type grpcFaceAnalyzer struct {
	conn        grpc.ClientConnInterface
	callTimeout time.Duration
	logger      *zap.Logger
}

func (g *grpcFaceAnalyzer) AnalyzeFace(ctx context.Context, image []byte) (*faceanalysis.Result, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]any{
		"image": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, AnalyzeFaceMethod, req, resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", faceanalysis.ErrNoFaceDetected, status.Convert(err).Message())
		}
		wrapped := logging.NewOperationError("grpcclient.analyze_face", "", err)
		g.logger.Error("face analyzer call failed", zap.Error(wrapped))
		return nil, wrapped
	}

	fields := resp.GetFields()
	payload := faceanalysis.Payload{
		FaceDetected: fields["face_detected"].GetBoolValue(),
		FaceCount:    int(fields["face_count"].GetNumberValue()),
		Confidence:   fields["confidence"].GetNumberValue(),
	}
	if v, ok := fields["skin_luminance"].GetKind().(*structpb.Value_NumberValue); ok {
		signal := v.NumberValue
		payload.SkinLuminance = &signal
	}
	return payload.Result()
}
