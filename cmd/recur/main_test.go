package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyp0633/librecur/internal/config"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/server"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// run executes the root command with a quiet config file and returns stdout
// and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := writeFile(t, "recur.yaml", "log:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExpand_Flags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "weekly days by name",
			args: []string{"--freq", "weekly", "--start", "2025-01-06", "--days", "mon,wed", "--from", "2025-01-01", "--to", "2025-01-15"},
			want: "2025-01-06\n2025-01-08\n2025-01-13\n2025-01-15\n",
		},
		{
			name: "days by number with exclusion",
			args: []string{"--freq", "WEEKLY", "--start", "2025-01-06", "--days", "1", "--days", "3", "--exclude", "2025-01-08", "--from", "2025-01-01", "--to", "2025-01-15"},
			want: "2025-01-06\n2025-01-13\n2025-01-15\n",
		},
		{
			name: "daily with count",
			args: []string{"--freq", "daily", "--interval", "2", "--start", "2025-01-01", "--count", "3", "--from", "2025-01-01", "--to", "2025-12-31"},
			want: "2025-01-01\n2025-01-03\n2025-01-05\n",
		},
		{
			name: "monthly clamped",
			args: []string{"--freq", "monthly", "--start", "2025-01-31", "--day-of-month", "31", "--from", "2025-01-01", "--to", "2025-03-31"},
			want: "2025-01-31\n2025-02-28\n2025-03-31\n",
		},
		{
			name: "yearly leap day",
			args: []string{"--freq", "yearly", "--start", "2024-02-29", "--end-date", "2026-12-31", "--from", "2024-01-01", "--to", "2030-12-31"},
			want: "2024-02-29\n2025-02-28\n2026-02-28\n",
		},
		{
			name: "rrule",
			args: []string{"--rrule", "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO", "--start", "2025-01-06", "--from", "2025-01-01", "--to", "2025-02-28"},
			want: "2025-01-06\n2025-01-20\n2025-02-03\n2025-02-17\n",
		},
		{
			name: "malformed window prints nothing",
			args: []string{"--freq", "daily", "--start", "2025-01-01", "--from", "2025-01-01", "--to", "2025/02/28"},
			want: "",
		},
		{
			name: "overlong window end rolls into March",
			args: []string{"--freq", "daily", "--start", "2025-02-27", "--from", "2025-02-01", "--to", "2025-02-30"},
			want: "2025-02-27\n2025-02-28\n2025-03-01\n2025-03-02\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, append([]string{"expand"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestExpand_Formats(t *testing.T) {
	args := []string{"expand", "--freq", "daily", "--start", "2025-01-01", "--from", "2025-01-01", "--to", "2025-01-02"}

	t.Run("json", func(t *testing.T) {
		stdout, _, err := run(t, append(args, "--format", "json")...)
		require.NoError(t, err)
		var result recurrence.Result
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, result.Dates)
	})

	t.Run("ics", func(t *testing.T) {
		stdout, _, err := run(t, append(args, "-f", "ics", "--summary", "Daily")...)
		require.NoError(t, err)
		cal, err := ical.NewDecoder(strings.NewReader(stdout)).Decode()
		require.NoError(t, err)
		assert.Len(t, cal.Events(), 2)
	})

	t.Run("xml", func(t *testing.T) {
		stdout, _, err := run(t, append(args, "--format", "xml")...)
		require.NoError(t, err)
		assert.Contains(t, stdout, "<date>2025-01-02</date>")
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := run(t, append(args, "--format", "csv")...)
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestExpand_RuleFile(t *testing.T) {
	path := writeFile(t, "standup.jsonc", `{
		// every other Tuesday
		"rule": {"frequency": "weekly", "interval": 2, "start_date": "2025-01-07", "days_of_week": [2]},
		"range_start": "2025-01-01",
		"range_end": "2025-02-28",
	}`)

	stdout, _, err := run(t, "expand", "--rule-file", path)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07\n2025-01-21\n2025-02-04\n2025-02-18\n", stdout)

	stdout, _, err = run(t, "expand", "--rule-file", path, "--to", "2025-01-31", "--exclude", "2025-01-21")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-07\n", stdout)

	t.Run("start and interval flags override the file", func(t *testing.T) {
		stdout, _, err := run(t, "expand", "--rule-file", path, "--start", "2025-01-14")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-14\n2025-01-28\n2025-02-11\n2025-02-25\n", stdout)

		stdout, _, err = run(t, "expand", "--rule-file", path, "--interval", "3")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-07\n2025-01-28\n2025-02-18\n", stdout)
	})
}

func TestExpand_Series(t *testing.T) {
	stdout, _, err := run(t, "expand", "--freq", "weekly", "--start", "2025-01-06", "--days", "mo", "--exclude", "2025-01-13", "--series", "--summary", "Review")
	require.NoError(t, err)

	cal, err := ical.NewDecoder(strings.NewReader(stdout)).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", events[0].Props.Get(ical.PropRecurrenceRule).Value)
}

func TestExpand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no rule", []string{"--from", "2025-01-01", "--to", "2025-01-31"}, "one of --freq, --rrule or --rule-file"},
		{"no window", []string{"--freq", "daily", "--start", "2025-01-01"}, "a window is required"},
		{"unknown frequency", []string{"--freq", "hourly", "--start", "2025-01-01"}, "unknown frequency"},
		{"bad day", []string{"--freq", "weekly", "--start", "2025-01-01", "--days", "funday"}, "invalid day"},
		{"day out of range", []string{"--freq", "weekly", "--start", "2025-01-01", "--days", "7"}, "invalid day"},
		{"unsupported rrule", []string{"--rrule", "FREQ=YEARLY;BYMONTH=1", "--start", "2025-01-01"}, "BYMONTH"},
		{"both freq and rrule", []string{"--freq", "daily", "--rrule", "FREQ=DAILY"}, "freq"},
		{"strict", []string{"--freq", "daily", "--start", "2025-1-1", "--from", "2025-01-01", "--to", "2025-00-01", "--strict"}, "range_end"},
		{"strict overlong start", []string{"--freq", "daily", "--start", "2025-02-29", "--from", "2025-02-01", "--to", "2025-03-31", "--strict"}, "start_date"},
		{"missing rule file", []string{"--rule-file", "/nonexistent/rule.yaml"}, "failed to read rule file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"expand"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExpand_IterationLimit(t *testing.T) {
	cfgPath := writeFile(t, "recur.yaml", "engine:\n  max_iterations: 10\nlog:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", cfgPath, "expand", "--freq", "daily", "--start", "2025-01-01", "--from", "2025-01-01", "--to", "2025-12-31"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, recurrence.ErrIterationLimit)
	assert.Empty(t, stdout.String())
}

func TestExpand_Remote(t *testing.T) {
	srv, err := server.New(recurrence.NewEngine())
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	t.Run("structured rule", func(t *testing.T) {
		stdout, _, err := run(t, "expand", "--server", ts.URL, "--freq", "weekly", "--start", "2025-01-06", "--days", "mon,wed", "--from", "2025-01-01", "--to", "2025-01-15")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-06\n2025-01-08\n2025-01-13\n2025-01-15\n", stdout)
	})

	t.Run("rrule query", func(t *testing.T) {
		stdout, _, err := run(t, "expand", "--server", ts.URL+server.DefaultPath, "--rrule", "FREQ=DAILY;COUNT=5", "--start", "2025-01-01", "--exclude", "2025-01-02,2025-01-04", "--from", "2025-01-01", "--to", "2025-01-31")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-01\n2025-01-03\n2025-01-05\n2025-01-06\n2025-01-07\n", stdout)
	})

	t.Run("rrule with overrides", func(t *testing.T) {
		stdout, _, err := run(t, "expand", "--server", ts.URL, "--rrule", "FREQ=DAILY", "--count", "2", "--start", "2025-01-01", "--from", "2025-01-01", "--to", "2025-01-31")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-01\n2025-01-02\n", stdout)
	})

	t.Run("ics", func(t *testing.T) {
		stdout, _, err := run(t, "expand", "--server", ts.URL, "--freq", "daily", "--start", "2025-01-01", "--from", "2025-01-01", "--to", "2025-01-03", "--format", "ics")
		require.NoError(t, err)
		cal, err := ical.NewDecoder(strings.NewReader(stdout)).Decode()
		require.NoError(t, err)
		assert.Len(t, cal.Events(), 3)
	})

	t.Run("strict error", func(t *testing.T) {
		_, _, err := run(t, "expand", "--server", ts.URL, "--freq", "daily", "--start", "2025-02-30", "--from", "2025-01-01", "--to", "2025-01-03", "--strict")
		assert.ErrorContains(t, err, "status 400")
	})
}

func TestRRULECmd(t *testing.T) {
	stdout, _, err := run(t, "rrule", "--freq", "weekly", "--interval", "2", "--days", "mon,wed", "--count", "10", "--start", "2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;WKST=SU;COUNT=10;BYDAY=MO,WE\n", stdout)

	stdout, _, err = run(t, "rrule", "--freq", "monthly", "--day-of-month", "15", "--end-date", "2025-12-31", "--start", "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "FREQ=MONTHLY;UNTIL=20251231T000000Z;BYMONTHDAY=15\n", stdout)
}

func TestRoot_LogLevel(t *testing.T) {
	cfgPath := writeFile(t, "recur.yaml", "log:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", cfgPath, "--log-level", "debug", "rrule", "--freq", "daily", "--start", "2025-01-01"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "converted rule")

	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", cfgPath, "--log-level", "chatty", "rrule", "--freq", "daily"})
	assert.Error(t, cmd.Execute())
}

func TestServe(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "recur.yaml", "server:\n  path: /expand\nlog:\n  level: error\n"))
	require.NoError(t, err)
	logger, err := config.NewLogger(cfg.Log, &bytes.Buffer{})
	require.NoError(t, err)
	a := &app{cfg: cfg, logger: logger}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/expand?dtstart=2025-01-01&rrule=FREQ%3DDAILY&start=2025-01-01&end=2025-01-03"
	resp, err := http.Get(url)
	require.NoError(t, err)
	var result recurrence.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, result.Dates)

	resp, err = http.Get("http://" + listener.Addr().String() + "/occurrences")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := parseWeekdays([]string{"Sunday", "mo", "TUE", " 3 ", "6"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 6}, days)

	_, err = parseWeekdays([]string{"-1"})
	assert.Error(t, err)
}
