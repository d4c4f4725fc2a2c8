// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MaxResponseSize is the maximum allowed response body size. Larger bodies
// are cut off and fail to decode.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

// newHTTPClient returns the pooled client used for completions. No overall
// timeout is set; a request lasts as long as the server takes.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// =============================================================================
// REQUEST/RESPONSE LOGGING (without sensitive data)
// =============================================================================

// loggingTransport logs method, path, status and duration of each request
// and fails responses outside 2xx that go-openai would otherwise accept.
// Headers and bodies are never logged: they carry the key and the conversation.
type loggingTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("api request")

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.Debug().Err(err).Dur("duration", duration).Msg("api request failed")
		return nil, err
	}

	t.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("api response")

	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	resp.Body = &limitedBody{
		Reader: io.LimitReader(resp.Body, MaxResponseSize),
		Closer: resp.Body,
	}
	return resp, nil
}

// checkStatus rejects the responses go-openai would decode as success even
// though they are not 2xx: informational codes and any 3xx the http.Client
// is not about to follow. Statuses of 400 and above are left to go-openai so
// its error body decoding still applies.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300, code >= 400:
		return nil
	case isFollowedRedirect(resp):
		return nil
	}
	return &APIError{Message: http.StatusText(code), Status: code}
}

// isFollowedRedirect mirrors the redirects net/http follows on its own.
func isFollowedRedirect(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header.Get("Location") != ""
	}
	return false
}

// limitedBody caps how much of a response body is read.
type limitedBody struct {
	io.Reader
	io.Closer
}

// wrapTransport installs logging on a copy of hc so the caller's client is
// left untouched.
func wrapTransport(hc *http.Client, logger zerolog.Logger) *http.Client {
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if lt, ok := base.(*loggingTransport); ok {
		base = lt.base
	}
	wrapped := *hc
	wrapped.Transport = &loggingTransport{base: base, logger: logger}
	return &wrapped
}
