package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cyp0633/librecur/internal/format"
	"github.com/cyp0633/librecur/internal/xml"
)

// HTTPError is an error with an HTTP status. Message is shown to the client;
// Err is only logged.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrMethodNotAllowed is sent for any method other than OPTIONS, GET and POST
var ErrMethodNotAllowed = &HTTPError{Status: http.StatusMethodNotAllowed, Message: "method not allowed"}

func badRequest(message string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Err: err}
}

// ErrorResponse is the JSON body of an error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = &HTTPError{Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
	}

	level := s.logger.Warn
	if httpErr.Status >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("error response",
		"status", httpErr.Status,
		"message", httpErr.Message,
		"error", httpErr.Err)

	var body bytes.Buffer
	contentType := format.JSON.ContentType()
	if format.FromAccept(r.Header.Get(headerAccept)) == format.XML {
		resp := xml.ErrorResponse{Message: httpErr.Message}
		if _, err := resp.ToXML().WriteTo(&body); err != nil {
			s.logger.Error("failed to marshal error response", "error", err)
			return
		}
		contentType = format.XML.ContentType()
	} else if err := json.NewEncoder(&body).Encode(ErrorResponse{Error: httpErr.Message}); err != nil {
		s.logger.Error("failed to marshal error response", "error", err)
		return
	}

	w.Header().Set(headerContentType, contentType)
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(httpErr.Status)
	_, _ = w.Write(body.Bytes())
}
