package openf1

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SessionTypePractice is the data source's vocabulary for practice sessions.
const SessionTypePractice = "Practice"

// Session is one entry of GET /sessions. Timestamps are kept as the raw
// ISO 8601 strings; ordering and display parse them lazily.
type Session struct {
	SessionKey  Key    `json:"session_key"`
	SessionType string `json:"session_type"`
	SessionName string `json:"session_name"`
	MeetingName string `json:"meeting_name"`
	CountryName string `json:"country_name"`
	DateStart   string `json:"date_start"`
	DateEnd     string `json:"date_end"`
}

// SortKey orders sessions: end time, else start time, else "".
func (s Session) SortKey() string {
	if s.DateEnd != "" {
		return s.DateEnd
	}
	return s.DateStart
}

// ResultRow is one entry of GET /session_result.
type ResultRow struct {
	Position        *int   `json:"position"`
	DriverFirstName string `json:"driver_first_name"`
	DriverLastName  string `json:"driver_last_name"`
	TeamName        string `json:"team_name"`
	BestLapTime     Text   `json:"best_lap_time"`
	Time            Text   `json:"time"`
}

// Key is a session identifier. The API sends numbers; the bot stores strings.
type Key string

func (k *Key) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*k = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*k = Key(n.String())
	return nil
}

func (k Key) String() string { return string(k) }

// Text is a free-form field. Strings are kept verbatim, numbers keep their
// literal form, null is empty and anything else is compact JSON.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(buf.String()))
	}
	return nil
}

func (t Text) String() string { return string(t) }
