// Package format renders practice results as a chat message.
package format

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"practicebot/internal/openf1"
)

const (
	defaultMeeting = "Grand Prix"
	defaultSession = "Practice"

	// missingPosition is printed for rows without a position.
	missingPosition = "None"

	whenLayout = "Mon 02 Jan 2006 15:04 MST"
)

// timestamp layouts accepted from the API, tried in order. Forms without an
// offset are UTC; a bare date is midnight UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Message is a rendered notification.
type Message struct {
	Title string
	Lines []string
}

// Content is the webhook body text: bold title, then one line per result.
func (m Message) Content() string {
	return "**" + m.Title + "**\n" + strings.Join(m.Lines, "\n")
}

// When renders the session end (or start) time in loc. It returns "" when the
// session has no timestamp and the raw string when it cannot be parsed.
func When(s openf1.Session, loc *time.Location) string {
	raw := s.SortKey()
	if raw == "" {
		return ""
	}
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(whenLayout)
}

// parseTimestamp reads ISO 8601. Timestamps without an offset are UTC.
func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Build renders the title and the first topN result lines.
func Build(s openf1.Session, rows []openf1.ResultRow, topN int, loc *time.Location) Message {
	meeting := firstNonEmpty(s.MeetingName, s.CountryName, defaultMeeting)
	session := firstNonEmpty(s.SessionName, defaultSession)

	if topN < 0 {
		topN = 0
	}
	if topN > len(rows) {
		topN = len(rows)
	}
	lines := make([]string, 0, topN)
	for _, r := range rows[:topN] {
		lines = append(lines, Line(r))
	}

	return Message{
		Title: meeting + " — " + session + " Results (" + When(s, loc) + ")",
		Lines: lines,
	}
}

// Line renders one result: "1. M. Verstappen — Red Bull Racing  1:11.097".
func Line(r openf1.ResultRow) string {
	pos := missingPosition
	if r.Position != nil {
		pos = strconv.Itoa(*r.Position)
	}
	lap := firstNonEmpty(r.BestLapTime.String(), r.Time.String())
	return pos + ". " + DriverName(r.DriverFirstName, r.DriverLastName) + " — " + r.TeamName + "  " + lap
}

// DriverName abbreviates the first name: "Max", "Verstappen" -> "M. Verstappen".
// Dots and spaces are trimmed from both ends, so a missing part leaves no stray ". ".
func DriverName(first, last string) string {
	initial := ""
	if r, size := utf8.DecodeRuneInString(first); size > 0 && r != utf8.RuneError {
		initial = string(r)
	} else if size > 0 {
		initial = first[:size]
	}
	return strings.Trim(initial+". "+last, ". ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
