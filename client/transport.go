package client

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
)

// Transport is an http.RoundTripper that logs requests and responses at
// debug level and, when Username is set, adds Basic Auth credentials.
type Transport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewTransport creates a Transport over base. If base is nil,
// http.DefaultTransport will be used.
func NewTransport(username, password string, base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transport{
		Username:  username,
		Password:  password,
		Transport: base,
		Logger:    logger,
	}
}

// RoundTrip implements the http.RoundTripper interface
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody := ""
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			reqBody = string(bodyBytes)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
	}

	t.Logger.Debug("outgoing request",
		"method", req.Method,
		"url", req.URL.String(),
		"body", reqBody)

	if t.Username != "" {
		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.Username, t.Password)
	}

	resp, err := t.Transport.RoundTrip(req)
	if err == nil && resp != nil && resp.Body != nil {
		respBody := ""
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr == nil {
			respBody = string(bodyBytes)
		}
		resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		t.Logger.Debug("incoming response",
			"status", resp.Status,
			"body", respBody)
	}

	return resp, err
}
