package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cyp0633/librecur/client"
	"github.com/cyp0633/librecur/internal/format"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/server"
	"github.com/emersion/go-ical"
	"github.com/spf13/cobra"
)

type expandOptions struct {
	rule      ruleFlags
	from      string
	to        string
	format    string
	summary   string
	strict    bool
	series    bool
	serverURL string
}

func expandCmd(a *app) *cobra.Command {
	var opts expandOptions

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the dates a rule falls on within a window",
		Example: `  recur expand --freq weekly --start 2025-01-06 --days mon,wed --from 2025-01-01 --to 2025-01-31
  recur expand --rrule "FREQ=MONTHLY;BYMONTHDAY=31" --start 2025-01-31 --from 2025-01-01 --to 2025-06-30 --format ics
  recur expand --rule-file standup.jsonc --series`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExpand(cmd, &opts)
		},
	}

	opts.rule.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&opts.from, "from", "", "First date of the window (YYYY-MM-DD)")
	flags.StringVar(&opts.to, "to", "", "Last date of the window (YYYY-MM-DD)")
	flags.StringVarP(&opts.format, "format", "f", string(format.Text), "Output format: text, json, xml or ics")
	flags.StringVar(&opts.summary, "summary", "", "Event summary for ics output")
	flags.BoolVar(&opts.strict, "strict", false, "Fail on malformed or nonexistent dates instead of printing nothing")
	flags.BoolVar(&opts.series, "series", false, "Print the rule as one recurring VEVENT instead of its dates")
	flags.StringVar(&opts.serverURL, "server", "", "Expand on this occurrence service (default client.url from config)")

	return cmd
}

func (a *app) runExpand(cmd *cobra.Command, opts *expandOptions) error {
	out := cmd.OutOrStdout()

	rule, window, err := opts.rule.build(cmd)
	if err != nil {
		return err
	}
	if opts.series {
		return format.WriteSeries(out, rule, opts.summary)
	}

	if opts.from != "" {
		window.Start = opts.from
	}
	if opts.to != "" {
		window.End = opts.to
	}
	if window.Start == "" || window.End == "" {
		return fmt.Errorf("a window is required: set --from and --to")
	}

	f, err := format.Parse(opts.format)
	if err != nil {
		return err
	}

	serverURL := opts.serverURL
	if serverURL == "" {
		serverURL = a.cfg.Client.URL
	}
	if serverURL != "" {
		return a.expandRemote(cmd, serverURL, rule, window, f, opts)
	}

	if opts.strict {
		if err := recurrence.Validate(rule, window); err != nil {
			return err
		}
	}

	engine := recurrence.NewEngineWithConfig(a.cfg.RecurrenceConfig(a.logger))
	dates, err := engine.Occurrences(rule, window)
	switch {
	case errors.Is(err, recurrence.ErrIterationLimit):
		return err
	case err != nil && opts.strict:
		return err
	case err != nil:
		a.logger.Warn("no occurrences", "error", err)
		dates = []string{}
	}

	return format.Write(out, f, dates, format.Options{Summary: opts.summary})
}

// expandRemote asks the occurrence service at serverURL. A plain --rrule goes
// out as a GET query; everything else is posted as a structured rule.
func (a *app) expandRemote(cmd *cobra.Command, serverURL string, rule recurrence.Rule,
	window recurrence.Window, f format.Format, opts *expandOptions) error {
	ctx, out := cmd.Context(), cmd.OutOrStdout()
	endpoint, err := client.ParseEndpoint(serverURL, server.DefaultPath)
	if err != nil {
		return err
	}

	httpClient := &http.Client{
		Timeout:   a.cfg.Client.Timeout,
		Transport: client.NewTransport(a.cfg.Client.Username, a.cfg.Client.Password, nil, a.logger),
	}
	c, err := client.New(httpClient, endpoint, a.logger)
	if err != nil {
		return err
	}

	clientOpts := client.Options{Strict: opts.strict, Summary: opts.summary}
	a.logger.Debug("expanding remotely", "url", endpoint.String())

	if opts.rule.rrule != "" && !opts.rule.overridden(cmd) {
		dates, err := c.ExpandRRULE(ctx, client.RRULEQuery{
			DTStart:       opts.rule.start,
			RRULE:         opts.rule.rrule,
			ExcludedDates: opts.rule.exclude,
			RangeStart:    window.Start,
			RangeEnd:      window.End,
			Options:       clientOpts,
		})
		if err != nil {
			return err
		}
		return format.Write(out, f, dates, format.Options{Summary: opts.summary})
	}

	req := recurrence.ExpandRequest{
		Rule:       recurrence.InputFromRule(rule),
		RangeStart: window.Start,
		RangeEnd:   window.End,
	}
	if f == format.ICS {
		cal, err := c.Calendar(ctx, req, clientOpts)
		if err != nil {
			return err
		}
		return ical.NewEncoder(out).Encode(cal)
	}

	dates, err := c.Expand(ctx, req, clientOpts)
	if err != nil {
		return err
	}
	return format.Write(out, f, dates, format.Options{Summary: opts.summary})
}
