/*
Package server exposes recurrence expansion over HTTP.

# Basic Usage

	engine := recurrence.NewEngineWithConfig(recurrence.ServiceEngineConfig)
	srv, err := server.New(engine, server.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	http.Handle(server.DefaultPath, srv)
	http.ListenAndServe(":8080", nil)

# Requests

POST takes a JSON body, or XML when Content-Type says so:

	POST /occurrences
	Content-Type: application/json

	{
	  "rule": {"frequency": "weekly", "interval": 1, "start_date": "2025-01-06"},
	  "range_start": "2025-01-01",
	  "range_end": "2025-01-31"
	}

GET takes an RFC 5545 RRULE in the query string. DTSTART and EXDATE values are
plain YYYY-MM-DD dates:

	GET /occurrences?dtstart=2025-01-06&rrule=FREQ=WEEKLY;BYDAY=MO,WE&exdate=2025-01-13&start=2025-01-01&end=2025-01-31

# Responses

The reply format follows the Accept header: application/json (the default),
application/xml, text/plain with one date per line, or text/calendar with one
all-day VEVENT per date. A format query parameter overrides Accept, and
summary names the VEVENTs.

A malformed date in the rule or the window yields an empty list, matching
recurrence.Expand. Add strict=true to get a 400 instead. A rule that exhausts
the engine's iteration limit is answered with 422.
*/
package server
