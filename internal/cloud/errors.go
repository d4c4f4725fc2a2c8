// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Error variables for common completion failures. Callers only log these;
// every one of them ends in the same fallback reply.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("together API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInsufficientCredits indicates the account cannot pay for the request.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("server error")

	// ErrMalformedResponse indicates a 2xx response without a usable first choice.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrUnexpectedStatus indicates a 1xx or 3xx final response.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("transport failure")
)

// APIError represents a non-2xx response from the completion endpoint.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("together error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("together error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap maps the status to a sentinel so errors.Is works on APIError.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrAuthFailed
	case e.Status == http.StatusPaymentRequired:
		return ErrInsufficientCredits
	case e.Status == http.StatusNotFound:
		return ErrModelNotFound
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServerError
	case e.Status < 200 || (e.Status >= 300 && e.Status < 400):
		return ErrUnexpectedStatus
	default:
		return nil
	}
}

// classifyError converts a go-openai error into this package's taxonomy.
func classifyError(err error) error {
	// Raised by checkStatus and wrapped by http.Client in a *url.Error.
	var statusErr *APIError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Code:    codeString(apiErr.Code),
			Message: apiErr.Message,
			Status:  apiErr.HTTPStatusCode,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &APIError{Message: msg, Status: reqErr.HTTPStatusCode}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.Wrap(ErrTransport, urlErr.Error())
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}

	return errors.Wrap(err, "completion request failed")
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
