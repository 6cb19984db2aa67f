package firestore

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapStoreErr(t *testing.T) {
	t.Run("transient gRPC failures map to ErrUnavailable", func(t *testing.T) {
		for _, code := range []codes.Code{codes.Unavailable, codes.DeadlineExceeded} {
			err := wrapStoreErr(status.Error(code, "connection reset"), "failed to iterate chunks")
			gt.Bool(t, errors.Is(err, ErrUnavailable)).True()
		}
	})

	t.Run("other failures keep their identity", func(t *testing.T) {
		orig := status.Error(codes.InvalidArgument, "bad query")
		err := wrapStoreErr(orig, "failed to iterate chunks")
		gt.Bool(t, errors.Is(err, ErrUnavailable)).False()
		gt.Bool(t, errors.Is(err, orig)).True()
	})
}
