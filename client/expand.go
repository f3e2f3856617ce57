package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/emersion/go-ical"
)

const maxErrorBody = 4096

// StatusError is returned when the service answers with a non-200 status
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned status %d: %s", e.StatusCode, e.Message)
}

func (c *client) Expand(ctx context.Context, req recurrence.ExpandRequest, opts Options) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint(opts, nil), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return c.decodeDates(resp.Body)
}

func (c *client) ExpandRRULE(ctx context.Context, q RRULEQuery) ([]string, error) {
	values := url.Values{}
	values.Set("rrule", q.RRULE)
	values.Set("dtstart", q.DTStart)
	values.Set("start", q.RangeStart)
	values.Set("end", q.RangeEnd)
	if len(q.ExcludedDates) > 0 {
		values.Set("exdate", strings.Join(q.ExcludedDates, ","))
	}

	resp, err := c.do(ctx, http.MethodGet, c.endpoint(q.Options, values), nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return c.decodeDates(resp.Body)
}

func (c *client) Calendar(ctx context.Context, req recurrence.ExpandRequest, opts Options) (*ical.Calendar, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint(opts, nil), bytes.NewReader(body), "text/calendar")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	cal, err := ical.NewDecoder(resp.Body).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	c.logger.Debug("decoded calendar", "events", len(cal.Events()))
	return cal, nil
}

// do sends the request and returns the response if its status is 200.
// Any other status is turned into a *StatusError.
func (c *client) do(ctx context.Context, method, rawURL string, body io.Reader, accept string) (*http.Response, error) {
	c.logger.Debug("starting request", "method", method, "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("failed to send %s request: %w", method, err)
	}

	c.logger.Debug("received response", "status", resp.Status)

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &errResp) == nil {
			statusErr.Message = errResp.Error
		}
		c.logger.Debug("unexpected status code",
			"status_code", resp.StatusCode,
			"message", statusErr.Message)
		return nil, statusErr
	}

	return resp, nil
}

func (c *client) decodeDates(r io.Reader) ([]string, error) {
	var result recurrence.Result
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Dates == nil {
		result.Dates = []string{}
	}
	c.logger.Debug("decoded occurrences", "count", len(result.Dates))
	return result.Dates, nil
}
