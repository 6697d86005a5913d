package cerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxRequestBody = 1 << 20

// DecodeJSON reads a single JSON object from the request body into v.
// Unknown fields and trailing data are rejected as InvalidArgument.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewReasonError(InvalidArgument, ReasonValidation, "request body is required", err)
		}
		return NewReasonError(InvalidArgument, ReasonValidation, fmt.Sprintf("invalid request body: %s", err), err)
	}
	if dec.More() {
		return NewReasonError(InvalidArgument, ReasonValidation, "invalid request body: unexpected trailing data", nil)
	}
	return nil
}
