package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cyp0633/librecur/internal/format"
	"github.com/cyp0633/librecur/internal/xml"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
)

// handlePost expands a rule sent as JSON or XML:
//
//	{"rule": {"frequency": "daily", ...}, "range_start": "...", "range_end": "..."}
//
// A body that cannot be decoded yields no occurrences unless strict is set.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	result := s.decodeBody(w, r)
	req, err := result.Get()
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest && !isStrict(r) {
			s.logger.Debug("undecodable request, returning no occurrences", "error", err)
			s.writeDates(w, r, []string{})
			return
		}
		s.sendError(w, r, err)
		return
	}

	s.expand(w, r, req.Rule.Rule(), req.Window())
}

// handleGet expands an RFC 5545 rule given in the query string:
//
//	GET /occurrences?dtstart=2025-01-06&rrule=FREQ=WEEKLY;BYDAY=MO&start=2025-01-01&end=2025-01-31
//
// exdate may be repeated or comma-separated.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	text := query.Get("rrule")
	if text == "" {
		s.sendError(w, r, badRequest("missing rrule parameter", nil))
		return
	}

	rule, err := recurrence.ParseRRULE(text, query.Get("dtstart"))
	if err != nil {
		s.sendError(w, r, badRequest(err.Error(), err))
		return
	}
	for _, value := range query["exdate"] {
		for _, date := range strings.Split(value, ",") {
			if date = strings.TrimSpace(date); date != "" {
				rule.ExcludedDates = append(rule.ExcludedDates, date)
			}
		}
	}

	s.expand(w, r, rule, recurrence.NewWindow(query.Get("start"), query.Get("end")))
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) mo.Result[recurrence.ExpandRequest] {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return mo.Err[recurrence.ExpandRequest](&HTTPError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
		}
		return mo.Err[recurrence.ExpandRequest](badRequest("failed to read request body", err))
	}

	bodyFormat := format.JSON
	if ct := r.Header.Get(headerContentType); ct != "" {
		f, ok := format.FromMediaType(ct)
		if !ok || (f != format.JSON && f != format.XML) {
			return mo.Err[recurrence.ExpandRequest](&HTTPError{
				Status:  http.StatusUnsupportedMediaType,
				Message: fmt.Sprintf("unsupported content type %q", ct),
			})
		}
		bodyFormat = f
	}

	if bodyFormat == format.XML {
		return decodeXML(body)
	}
	return decodeJSON(body)
}

func decodeJSON(body []byte) mo.Result[recurrence.ExpandRequest] {
	var req recurrence.ExpandRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		return mo.Err[recurrence.ExpandRequest](badRequest("invalid JSON body", err))
	}
	return mo.Ok(req)
}

func decodeXML(body []byte) mo.Result[recurrence.ExpandRequest] {
	doc, err := xml.ReadDocument(body)
	if err != nil {
		return mo.Err[recurrence.ExpandRequest](badRequest("invalid XML body", err))
	}
	var req xml.ExpandRequest
	if err := req.Parse(doc); err != nil {
		return mo.Err[recurrence.ExpandRequest](badRequest(err.Error(), err))
	}
	return mo.Ok(req.Request)
}

func isStrict(r *http.Request) bool {
	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	return strict
}

// expand runs the expander and writes the dates in the format the client
// accepts. Malformed dates yield an empty list unless the strict query
// parameter is set, in which case they are a 400. Strict mode also rejects
// dates that do not exist, such as 2025-02-30, which otherwise roll over.
func (s *Server) expand(w http.ResponseWriter, r *http.Request, rule recurrence.Rule, window recurrence.Window) {
	strict := isStrict(r)
	if strict {
		if err := recurrence.Validate(rule, window); err != nil {
			s.sendError(w, r, badRequest(err.Error(), err))
			return
		}
	}

	dates, err := s.expander.Occurrences(rule, window)
	switch {
	case errors.Is(err, recurrence.ErrIterationLimit):
		s.sendError(w, r, &HTTPError{
			Status:  http.StatusUnprocessableEntity,
			Message: "rule requires too many iterations for this window",
			Err:     err,
		})
		return
	case errors.Is(err, recurrence.ErrInvalidDateFormat):
		if strict {
			s.sendError(w, r, badRequest(err.Error(), err))
			return
		}
		s.logger.Debug("invalid date, returning no occurrences", "error", err)
		dates = []string{}
	case err != nil:
		s.sendError(w, r, err)
		return
	}

	s.logger.Debug("expanded rule",
		"frequency", rule.Frequency,
		"start_date", rule.StartDate,
		"count", len(dates))
	s.writeDates(w, r, dates)
}

// writeDates renders dates in the format named by the format query parameter
// or, failing that, the Accept header
func (s *Server) writeDates(w http.ResponseWriter, r *http.Request, dates []string) {
	query := r.URL.Query()
	f := format.FromAccept(r.Header.Get(headerAccept))
	if name := query.Get("format"); name != "" {
		var err error
		if f, err = format.Parse(name); err != nil {
			s.sendError(w, r, badRequest(err.Error(), err))
			return
		}
	}

	var body bytes.Buffer
	if err := format.Write(&body, f, dates, format.Options{Summary: query.Get("summary")}); err != nil {
		s.sendError(w, r, fmt.Errorf("failed to render occurrences: %w", err))
		return
	}

	w.Header().Set(headerContentType, f.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}
