// Package boundary is the external boundary named in §4.I: it does not run
// a gRPC transport itself (out of scope, §1 Non-goals), but it is the sole
// place an error.Kind (§7) is translated into a google.golang.org/grpc
// status value, and the sole place a wire containerType string is mapped
// onto one of container/backend's concrete backends. A collaborator's
// gRPC server is expected to call StatusFromError when converting a
// Future's terminal error into a wire response.
package boundary

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	idberrors "github.com/facebook/idb-sub000/errors"
)

// StatusFromError maps err's errors.Kind (§7) onto the nearest
// google.golang.org/grpc/codes value. A nil err maps to codes.OK.
func StatusFromError(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	return status.New(codeForKind(idberrors.KindOf(err)), err.Error())
}

func codeForKind(k idberrors.Kind) codes.Code {
	switch k {
	case idberrors.InvalidArgument:
		return codes.InvalidArgument
	case idberrors.NotFound:
		return codes.NotFound
	case idberrors.AlreadyExists:
		return codes.AlreadyExists
	case idberrors.IncompatibleArchitecture:
		return codes.FailedPrecondition
	case idberrors.TargetState:
		return codes.FailedPrecondition
	case idberrors.Timeout:
		return codes.DeadlineExceeded
	case idberrors.Cancelled:
		return codes.Canceled
	case idberrors.IO:
		return codes.Unavailable
	case idberrors.BackendUnsupported:
		return codes.Unimplemented
	case idberrors.Protocol:
		return codes.Internal
	case idberrors.Subprocess:
		return codes.Aborted
	case idberrors.Internal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}
