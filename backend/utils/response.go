package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"projecthub/backend/logging"
)

// Response is the envelope every endpoint answers with.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data"`
	Errors  []string `json:"errors"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: Failed to encode response: %v", err)
	}
}

func WriteSuccess[T any](w http.ResponseWriter, status int, message string, data T) {
	WriteJSON(w, status, Response[T]{Success: true, Message: message, Data: &data})
}

func WriteError(w http.ResponseWriter, status int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = nil
	}
	WriteJSON(w, status, Response[struct{}]{Success: false, Message: message, Errors: errs})
}

// WriteInternalError logs err and answers 500 without exposing its text.
func WriteInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, "internal error")
}

// WriteFailure answers with a failed envelope that still carries data.
func WriteFailure[T any](w http.ResponseWriter, status int, message string, data T, errs ...string) {
	WriteJSON(w, status, Response[T]{Success: false, Message: message, Data: &data, Errors: errs})
}

// RemoteError is a non-2xx answer from another service.
type RemoteError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote status %d: %s", e.StatusCode, e.Message)
}

var ErrMalformedEnvelope = errors.New("malformed response envelope")

// DecodeResponse reads an envelope from resp. Non-2xx answers become *RemoteError.
func DecodeResponse[T any](resp *http.Response) (*T, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var env Response[T]
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{StatusCode: resp.StatusCode, Message: string(body)}
		if decodeErr == nil {
			remote.Message = env.Message
			remote.Errors = env.Errors
		}
		return nil, remote
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, decodeErr)
	}
	if !env.Success {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return env.Data, nil
}
