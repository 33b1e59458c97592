package errors

import (
	"google.golang.org/grpc/status"
)

// ToGRPCError converts err into a gRPC status error.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	_, grpcCode := GetCodeMapping(CodeOf(err))
	return status.Error(grpcCode, err.Error())
}
