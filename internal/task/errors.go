package task

import (
	"fmt"
	"strings"

	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	ReasonInvalidStatus    = "INVALID_STATUS"
	ReasonInvalidReference = "INVALID_REFERENCE"
)

// ErrorKind classifies a failure so callers can pick a specific message and
// decide whether a retry makes sense. It is derived from the cerr code and
// reason, so it survives the round trip through the HTTP client.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindInvalidStatus
	KindInvalidReference
	KindNotFound
	KindStoreFailure
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInvalidStatus:
		return "InvalidStatus"
	case KindInvalidReference:
		return "InvalidReference"
	case KindNotFound:
		return "NotFound"
	case KindStoreFailure:
		return "StoreFailure"
	case KindUnauthenticated:
		return "Unauthenticated"
	default:
		return "Unknown"
	}
}

func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	switch cerr.CodeOf(err) {
	case cerr.InvalidArgument, cerr.OutOfRange:
		switch cerr.ReasonOf(err) {
		case ReasonInvalidStatus:
			return KindInvalidStatus
		case ReasonInvalidReference:
			return KindInvalidReference
		default:
			return KindValidation
		}
	case cerr.NotFound:
		return KindNotFound
	case cerr.Internal, cerr.Unavailable, cerr.DataLoss, cerr.DeadlineExceeded:
		return KindStoreFailure
	case cerr.Unauthenticated:
		return KindUnauthenticated
	default:
		if cerr.ReasonOf(err) == cerr.ReasonStoreFailure {
			return KindStoreFailure
		}
		return KindUnknown
	}
}

// IsValidation reports whether err is a caller mistake in the request fields.
// Invalid statuses are validation failures too.
func IsValidation(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindInvalidStatus
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Retryable reports whether repeating the same call may succeed. Only
// failures of the store behind the service qualify.
func Retryable(err error) bool {
	return KindOf(err) == KindStoreFailure
}

func newValidationError(msg string) error {
	return cerr.NewReasonError(cerr.InvalidArgument, cerr.ReasonValidation, msg, nil)
}

func newInvalidStatusError(s string) error {
	names := make([]string, 0, 3)
	for _, st := range Statuses() {
		names = append(names, fmt.Sprintf("%q", st))
	}
	return cerr.NewReasonError(cerr.InvalidArgument, ReasonInvalidStatus,
		fmt.Sprintf("invalid status %q: must be one of %s", s, strings.Join(names, ", ")), nil)
}

func newInvalidReferenceError(userID string) error {
	return cerr.NewReasonError(cerr.InvalidArgument, ReasonInvalidReference,
		fmt.Sprintf("assignedTo %q does not reference an existing user", userID), nil)
}
