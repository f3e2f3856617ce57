// Package client talks to the occurrence service in package server.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/emersion/go-ical"
)

// Client expands recurrence rules on a remote occurrence service
type Client interface {
	// Expand posts a rule and window as JSON and returns the dates
	Expand(ctx context.Context, req recurrence.ExpandRequest, opts Options) ([]string, error)
	// ExpandRRULE sends an RFC 5545 rule in the query string
	ExpandRRULE(ctx context.Context, q RRULEQuery) ([]string, error)
	// Calendar asks for the occurrences as all-day VEVENTs
	Calendar(ctx context.Context, req recurrence.ExpandRequest, opts Options) (*ical.Calendar, error)
}

// Options are sent with every kind of request
type Options struct {
	// Strict turns malformed dates into a *StatusError instead of an empty list
	Strict bool
	// Summary names the VEVENTs returned by Calendar
	Summary string
}

// RRULEQuery is the input of ExpandRRULE. Dates are YYYY-MM-DD.
type RRULEQuery struct {
	DTStart       string
	RRULE         string
	ExcludedDates []string
	RangeStart    string
	RangeEnd      string
	Options
}

type client struct {
	httpClient  *http.Client
	endpointURL url.URL
	logger      *slog.Logger
}

// New creates a client for the service at endpointURL, the full URL of the
// occurrences resource
func New(httpClient *http.Client, endpointURL url.URL, logger *slog.Logger) (Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpointURL.Scheme == "" || endpointURL.Host == "" {
		return nil, fmt.Errorf("endpoint URL %q is not absolute", endpointURL.String())
	}
	return &client{httpClient: httpClient, endpointURL: endpointURL, logger: logger}, nil
}

// ParseEndpoint parses a service URL, adding the default path when rawURL has none
func ParseEndpoint(rawURL, defaultPath string) (url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return url.URL{}, fmt.Errorf("failed to parse URL %q: %w", rawURL, err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultPath
	}
	return *u, nil
}

func (c *client) endpoint(opts Options, extra url.Values) string {
	u := c.endpointURL
	query := u.Query()
	for key, values := range extra {
		query[key] = values
	}
	if opts.Strict {
		query.Set("strict", "true")
	}
	if opts.Summary != "" {
		query.Set("summary", opts.Summary)
	}
	u.RawQuery = query.Encode()
	return u.String()
}
