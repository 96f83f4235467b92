package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
)

// APIError is a non-2xx answer of the catalog API.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("catalog API: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("catalog API: %d %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Message is the first message returned by the API, if any.
func (e *APIError) Message() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrInsufficientPermissions:
		return e.StatusCode == http.StatusForbidden
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

const maxErrorBody = 64 << 10

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Message) == 0 {
		return apiErr
	}

	var single string
	if err := json.Unmarshal(body.Message, &single); err == nil {
		if single != "" {
			apiErr.Messages = []string{single}
		}
		return apiErr
	}
	var list []string
	if err := json.Unmarshal(body.Message, &list); err == nil {
		apiErr.Messages = list
	}
	return apiErr
}
