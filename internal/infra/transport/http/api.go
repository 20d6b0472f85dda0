package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/everyio/tasktracker/internal/domain"
	"github.com/everyio/tasktracker/internal/infra/logging"
)

// maxArgsBytes bounds the size of an operation's JSON arguments.
const maxArgsBytes = 1 << 20

const (
	internalErrorCode    = "InternalServerError"
	internalErrorMessage = "Internal server error"
)

// ErrorBody is a single entry of the "errors" list of an API response.
type ErrorBody struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

// Response is the envelope of every API response. Exactly one of Data and
// Errors is set.
type Response struct {
	Data   map[string]any `json:"data,omitempty"`
	Errors []ErrorBody    `json:"errors,omitempty"`
}

// DecodeArgs decodes the JSON arguments of an operation.
// An empty body yields the zero value. A body that is not exactly one JSON
// object matching T yields a *domain.ValidationError and the zero value.
func DecodeArgs[T any](r *http.Request) (T, error) {
	var (
		args T
		zero T
	)

	dec := json.NewDecoder(io.LimitReader(r.Body, maxArgsBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, nil
		}

		return zero, &domain.ValidationError{Reason: fmt.Sprintf("decode arguments: %v", err)}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return zero, &domain.ValidationError{Reason: "decode arguments: unexpected data after arguments"}
	}

	return args, nil
}

// StatusCode maps an API error code to the HTTP status it is served with.
func StatusCode(code string) int {
	switch code {
	case "ValidationError":
		return http.StatusBadRequest
	case "InvalidLoginCredentialsError", "UnauthorizedError":
		return http.StatusUnauthorized
	case "RecordNotFoundError":
		return http.StatusNotFound
	case "UserAlreadyExistsError", "ConcurrentUpdateError":
		return http.StatusConflict
	case "InvalidStatusTransitionError":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorBody builds the public representation of err. Errors that are not
// a domain.APIError are reported as an opaque internal error.
func NewErrorBody(err error) ErrorBody {
	var apiErr domain.APIError
	if !errors.As(err, &apiErr) {
		return ErrorBody{
			Message:    internalErrorMessage,
			Extensions: map[string]any{"code": internalErrorCode},
		}
	}

	extensions := map[string]any{"code": apiErr.Code()}
	for k, v := range apiErr.PublicData() {
		extensions[k] = v
	}

	return ErrorBody{
		Message:    apiErr.Error(),
		Extensions: extensions,
	}
}

// WriteData writes the successful result of operation.
func WriteData(w http.ResponseWriter, operation string, result any) error {
	return writeJSON(w, http.StatusOK, Response{
		Data: map[string]any{operation: result},
	})
}

// WriteError writes err as an API error response.
func WriteError(w http.ResponseWriter, err error) error {
	body := NewErrorBody(err)

	code, _ := body.Extensions["code"].(string)

	return writeJSON(w, StatusCode(code), Response{
		Errors: []ErrorBody{body},
	})
}

func writeJSON(w http.ResponseWriter, status int, resp Response) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// ErrorLevel returns the level a handler logs err at. Errors meant for the
// client are warnings, everything else is an error.
func ErrorLevel(err error) logging.Level {
	var apiErr domain.APIError
	if errors.As(err, &apiErr) {
		return logging.LevelWarn
	}

	return logging.LevelError
}
