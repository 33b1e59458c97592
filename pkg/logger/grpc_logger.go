package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor logs every unary call with its status code and duration.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := statusCode(err)
		logger.Check(grpcLevel(code), "gRPC request finished").Write(
			append(methodFields(info.FullMethod),
				zap.String("grpc.code", code.String()),
				zap.Duration("grpc.duration", time.Since(start)),
				zap.Error(err),
			)...,
		)
		return resp, err
	}
}

// NewGrpcStreamServerInterceptor logs every stream with message counts.
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		wrapped := &wrappedServerStream{ServerStream: ss}

		logger.Debug("gRPC stream started", methodFields(info.FullMethod)...)
		err := handler(srv, wrapped)

		code := statusCode(err)
		logger.Check(grpcLevel(code), "gRPC stream finished").Write(
			append(methodFields(info.FullMethod),
				zap.String("grpc.code", code.String()),
				zap.Int("grpc.recv_count", wrapped.recvCount),
				zap.Int("grpc.send_count", wrapped.sendCount),
				zap.Duration("grpc.duration", time.Since(start)),
				zap.Error(err),
			)...,
		)
		return err
	}
}

func methodFields(fullMethod string) []zap.Field {
	return []zap.Field{
		zap.String("grpc.service", path.Dir(fullMethod)[1:]),
		zap.String("grpc.method", path.Base(fullMethod)),
	}
}

func statusCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unknown
}

// grpcLevel logs transient failures at warn and everything else non-OK at error.
func grpcLevel(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK:
		return zapcore.InfoLevel
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

type wrappedServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

func (w *wrappedServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

func (w *wrappedServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}
