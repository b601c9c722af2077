package main

import (
	"fmt"
	"strings"
	"time"
)

// RecordStatus is the per-row outcome written to the output store.
type RecordStatus string

const (
	StatusOK           RecordStatus = "ok"
	StatusParseError   RecordStatus = "parse_error"
	StatusRequestError RecordStatus = "request_error"
)

// sentinelUnknown fills any field that could not be extracted from a reply.
const sentinelUnknown = "unknown"

// scoreUnknown marks a risk score that was not extracted. Valid scores start
// at 1, so 0 never collides with a real score.
const scoreUnknown = 0

type InputItem struct {
	Index      int      // zero-based position in the roster
	Identifier string   // value of the designated column
	Row        []string // full roster row, carried through to the output
}

type OutputRecord struct {
	Identifier string
	Score      int    // scoreUnknown when not extracted
	Level      string // schema level, or sentinelUnknown
	DataTypes  []string
	Status     RecordStatus
	RawReply   string // retained only on parse_error, for diagnostics
}

// ScoreCell renders the score for the output store.
func (r OutputRecord) ScoreCell() string {
	if r.Score == scoreUnknown {
		return sentinelUnknown
	}
	return fmt.Sprintf("%d", r.Score)
}

// DataTypesCell renders the data-type tags as a comma-delimited list.
func (r OutputRecord) DataTypesCell() string {
	return strings.Join(r.DataTypes, ", ")
}

type RunSummary struct {
	Total         int
	OK            int
	ParseErrors   int
	RequestErrors int
	StartedAt     time.Time
	FinishedAt    time.Time
}

func (s *RunSummary) count(status RecordStatus) {
	s.Total++
	switch status {
	case StatusOK:
		s.OK++
	case StatusParseError:
		s.ParseErrors++
	case StatusRequestError:
		s.RequestErrors++
	}
}

// FormatRunSummary returns a human-readable summary of a finished run.
func FormatRunSummary(s RunSummary) string {
	if s.Total == 0 {
		return "Classified 0 items (empty roster)."
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d ok", s.OK))
	if s.ParseErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d parse errors", s.ParseErrors))
	}
	if s.RequestErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d request errors", s.RequestErrors))
	}
	msg := fmt.Sprintf("Classified %d items: %s", s.Total, strings.Join(parts, ", "))
	if !s.FinishedAt.IsZero() && !s.StartedAt.IsZero() {
		msg += fmt.Sprintf(" in %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}
	return msg
}
