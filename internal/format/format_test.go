package format

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicebot/internal/openf1"
)

func intp(v int) *int { return &v }

func amsterdam(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return loc
}

func TestWhen(t *testing.T) {
	t.Parallel()
	loc := amsterdam(t)
	tests := []struct {
		name string
		s    openf1.Session
		want string
	}{
		{name: "zulu", s: openf1.Session{DateEnd: "2024-05-18T10:30:00Z"}, want: "Sat 18 May 2024 12:30 CEST"},
		{name: "offset", s: openf1.Session{DateEnd: "2024-08-23T11:30:00+00:00"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "fractional", s: openf1.Session{DateEnd: "2024-03-01T12:30:00.123000+00:00"}, want: "Fri 01 Mar 2024 13:30 CET"},
		{name: "start fallback", s: openf1.Session{DateStart: "2024-05-18T10:30:00Z"}, want: "Sat 18 May 2024 12:30 CEST"},
		{name: "end preferred", s: openf1.Session{DateStart: "2024-05-18T09:30:00Z", DateEnd: "2024-05-18T10:30:00Z"}, want: "Sat 18 May 2024 12:30 CEST"},
		{name: "naive is utc", s: openf1.Session{DateEnd: "2024-05-18T10:30:00"}, want: "Sat 18 May 2024 12:30 CEST"},
		{name: "compact offset", s: openf1.Session{DateEnd: "2024-08-23T11:30:00+0000"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "compact negative offset", s: openf1.Session{DateEnd: "2024-08-23T06:30:00-0500"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "space separator", s: openf1.Session{DateEnd: "2024-08-23 11:30:00+00:00"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "minutes only", s: openf1.Session{DateEnd: "2024-08-23T11:30+00:00"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "naive minutes only", s: openf1.Session{DateEnd: "2024-08-23T11:30"}, want: "Fri 23 Aug 2024 13:30 CEST"},
		{name: "date only", s: openf1.Session{DateEnd: "2024-08-23"}, want: "Fri 23 Aug 2024 02:00 CEST"},
		{name: "absent", s: openf1.Session{}, want: ""},
		{name: "unparsable", s: openf1.Session{DateEnd: "next friday"}, want: "next friday"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, When(tt.s, loc))
		})
	}
}

func TestDriverName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "M. Verstappen", DriverName("Max", "Verstappen"))
	assert.Equal(t, "Verstappen", DriverName("", "Verstappen"))
	assert.Equal(t, "M", DriverName("Max", ""))
	assert.Equal(t, "", DriverName("", ""))
	assert.Equal(t, "Ž. Lastname", DriverName("Žiga", "Lastname"))
}

func TestLine(t *testing.T) {
	t.Parallel()
	row := openf1.ResultRow{
		Position:        intp(1),
		DriverFirstName: "Lando",
		DriverLastName:  "Norris",
		TeamName:        "McLaren",
		BestLapTime:     "1:11.097",
		Time:            "ignored",
	}
	assert.Equal(t, "1. L. Norris — McLaren  1:11.097", Line(row))

	row.BestLapTime = ""
	assert.Equal(t, "1. L. Norris — McLaren  ignored", Line(row))

	assert.Equal(t, "None.  —   ", Line(openf1.ResultRow{}))
}

func TestBuildOrdersAndTruncates(t *testing.T) {
	t.Parallel()
	rows := []openf1.ResultRow{
		{Position: intp(2), DriverFirstName: "Lando", DriverLastName: "Norris", TeamName: "McLaren"},
		{Position: intp(1), DriverFirstName: "Max", DriverLastName: "Verstappen", TeamName: "Red Bull Racing"},
		{Position: nil, DriverFirstName: "Logan", DriverLastName: "Sargeant", TeamName: "Williams"},
	}
	openf1.SortResults(rows)

	msg := Build(openf1.Session{}, rows, 10, time.UTC)
	assert.Equal(t, "Grand Prix — Practice Results ()", msg.Title)
	assert.Equal(t, []string{
		"1. M. Verstappen — Red Bull Racing  ",
		"2. L. Norris — McLaren  ",
		"None. L. Sargeant — Williams  ",
	}, msg.Lines)

	assert.Len(t, Build(openf1.Session{}, rows, 2, time.UTC).Lines, 2)
	assert.Empty(t, Build(openf1.Session{}, rows, 0, time.UTC).Lines)
}

func TestBuildTitleFallbacks(t *testing.T) {
	t.Parallel()
	s := openf1.Session{CountryName: "Netherlands", SessionName: "Practice 3"}
	assert.Equal(t, "Netherlands — Practice 3 Results ()", Build(s, nil, 10, time.UTC).Title)

	s.MeetingName = "Dutch Grand Prix"
	assert.Equal(t, "Dutch Grand Prix — Practice 3 Results ()", Build(s, nil, 10, time.UTC).Title)
}

func TestContent(t *testing.T) {
	t.Parallel()
	m := Message{Title: "T", Lines: []string{"a", "b"}}
	assert.Equal(t, "**T**\na\nb", m.Content())
	assert.Equal(t, "**T**\n", Message{Title: "T"}.Content())
}
