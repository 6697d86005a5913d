package cerr

import (
	"errors"
	"fmt"

	"github.com/kazz187/taskboard/pkg/storage"
)

func WrapStorageReadError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewReasonError(NotFound, ReasonNotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewReasonError(Internal, ReasonStoreFailure, "server error", fmt.Errorf("failed to read %s: %w", target, err))
}

func WrapStorageWriteError(target string, err error) error {
	return NewReasonError(Internal, ReasonStoreFailure, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}

func WrapStorageDeleteError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewReasonError(NotFound, ReasonNotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewReasonError(Internal, ReasonStoreFailure, "server error", fmt.Errorf("failed to delete %s: %w", target, err))
}

// NewMarshalError is returned when a record cannot be encoded or decoded.
func NewMarshalError(target string, err error) error {
	return NewReasonError(Internal, ReasonStoreFailure, "server error", fmt.Errorf("failed to marshal %s: %w", target, err))
}
