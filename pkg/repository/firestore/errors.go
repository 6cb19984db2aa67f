package firestore

import (
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound indicates the requested record does not exist
var ErrNotFound = goerr.New("record not found")

// ErrUnavailable indicates a transient store outage. Callers may retry
// the operation later.
var ErrUnavailable = goerr.New("store unavailable")

// wrapStoreErr wraps a Firestore error, converting transient gRPC
// failures into ErrUnavailable so callers can tell a retryable outage
// from a programming error.
func wrapStoreErr(err error, msg string, options ...goerr.Option) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		options = append(options, goerr.V("cause", err.Error()))
		return goerr.Wrap(ErrUnavailable, msg, options...)
	}
	return goerr.Wrap(err, msg, options...)
}
