package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicebot/internal/notifier"
	"practicebot/internal/openf1"
	"practicebot/internal/storage"
	logx "practicebot/pkg/logx"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

type fakeSessions struct {
	s     openf1.Session
	ok    bool
	err   error
	calls int
}

func (f *fakeSessions) LatestPracticeSession(context.Context) (openf1.Session, bool, error) {
	f.calls++
	return f.s, f.ok, f.err
}

type fakeResults struct {
	rows  []openf1.ResultRow
	err   error
	calls int
}

func (f *fakeResults) ResultsFor(context.Context, openf1.Key) ([]openf1.ResultRow, error) {
	f.calls++
	return f.rows, f.err
}

type fakePoster struct {
	err    error
	titles []string
	lines  [][]string
}

func (f *fakePoster) Post(_ context.Context, title string, lines []string) error {
	if f.err != nil {
		return f.err
	}
	f.titles = append(f.titles, title)
	f.lines = append(f.lines, lines)
	return nil
}

type memStore struct {
	st      storage.State
	saves   int
	saveErr error
}

func (m *memStore) Load(context.Context) storage.State { return m.st }
func (m *memStore) Save(_ context.Context, st storage.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.st = st
	return nil
}
func (m *memStore) Close() error { return nil }

func practice(key string) openf1.Session {
	return openf1.Session{
		SessionKey:  openf1.Key(key),
		SessionType: openf1.SessionTypePractice,
		SessionName: "Practice 2",
		MeetingName: "Dutch Grand Prix",
		DateEnd:     "2024-08-23T16:00:00+00:00",
	}
}

func rows() []openf1.ResultRow {
	return []openf1.ResultRow{
		{Position: intp(1), DriverFirstName: "Max", DriverLastName: "Verstappen", TeamName: "Red Bull Racing", BestLapTime: "1:11.097"},
	}
}

func TestRunOutcomes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		sessions    *fakeSessions
		results     *fakeResults
		stored      string
		want        Outcome
		wantFetches int
		wantPosts   int
		wantSaves   int
	}{
		{
			name:     "no practice session",
			sessions: &fakeSessions{},
			results:  &fakeResults{rows: rows()},
			want:     OutcomeNoSession,
		},
		{
			name:     "session without key",
			sessions: &fakeSessions{s: practice(""), ok: true},
			results:  &fakeResults{rows: rows()},
			want:     OutcomeNoSession,
		},
		{
			name:     "already posted skips results fetch",
			sessions: &fakeSessions{s: practice("9999"), ok: true},
			results:  &fakeResults{rows: rows()},
			stored:   "9999",
			want:     OutcomeAlreadyPosted,
		},
		{
			name:        "no results leaves state",
			sessions:    &fakeSessions{s: practice("9999"), ok: true},
			results:     &fakeResults{},
			stored:      "9998",
			want:        OutcomeNoResults,
			wantFetches: 1,
		},
		{
			name:        "new session posts and persists",
			sessions:    &fakeSessions{s: practice("9999"), ok: true},
			results:     &fakeResults{rows: rows()},
			stored:      "9998",
			want:        OutcomePosted,
			wantFetches: 1,
			wantPosts:   1,
			wantSaves:   1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &memStore{}
			if tt.stored != "" {
				store.st = storage.State{}.WithLastPosted(tt.stored)
			}
			poster := &fakePoster{}
			p := New(Config{TopN: 10}, store, tt.sessions, tt.results, poster, logx.Nop())

			got, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFetches, tt.results.calls, "results fetches")
			assert.Len(t, poster.titles, tt.wantPosts)
			assert.Equal(t, tt.wantSaves, store.saves)
			if tt.want == OutcomePosted {
				assert.Equal(t, "9999", store.st.LastPosted())
			} else {
				assert.Equal(t, tt.stored, store.st.LastPosted())
			}
		})
	}
}

func TestRunPostFailureDoesNotPersist(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	poster := &fakePoster{err: errors.New("webhook down")}
	p := New(Config{TopN: 10}, store, &fakeSessions{s: practice("9999"), ok: true}, &fakeResults{rows: rows()}, poster, logx.Nop())

	outcome, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, "failed", outcome.String())
	assert.Equal(t, 0, store.saves)
	assert.Nil(t, store.st.LastPostedSessionKey)
}

func TestRunSaveFailureAfterPostIsReported(t *testing.T) {
	t.Parallel()
	store := &memStore{saveErr: errors.New("disk full")}
	poster := &fakePoster{}
	p := New(Config{TopN: 10}, store, &fakeSessions{s: practice("9999"), ok: true}, &fakeResults{rows: rows()}, poster, logx.Nop())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, poster.titles, 1, "message already delivered")
}

func TestRunResolveErrorAborts(t *testing.T) {
	t.Parallel()
	results := &fakeResults{rows: rows()}
	p := New(Config{}, &memStore{}, &fakeSessions{err: errors.New("timeout")}, results, &fakePoster{}, logx.Nop())

	outcome, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, 0, results.calls)
}

func TestRunTwicePostsOnce(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	sessions := &fakeSessions{s: practice("9999"), ok: true}
	results := &fakeResults{rows: rows()}
	poster := &fakePoster{}
	p := New(Config{TopN: 10}, store, sessions, results, poster, logx.Nop())

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomePosted, first)
	assert.Equal(t, OutcomeAlreadyPosted, second)
	assert.Equal(t, 1, results.calls)
	assert.Len(t, poster.titles, 1)
}

func TestPreviewDoesNotTouchState(t *testing.T) {
	t.Parallel()
	store := &memStore{st: storage.State{}.WithLastPosted("9999")}
	poster := &fakePoster{}
	p := New(Config{TopN: 10}, store, &fakeSessions{s: practice("9999"), ok: true}, &fakeResults{rows: rows()}, poster, logx.Nop())

	msg, outcome, err := p.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeReady, outcome)
	assert.Equal(t, []string{"1. M. Verstappen — Red Bull Racing  1:11.097"}, msg.Lines)
	assert.Empty(t, poster.titles)
	assert.Equal(t, 0, store.saves)
}

// openF1Stub serves the Dutch GP practice scenario.
func openF1Stub(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	resultCalls := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"session_key": 9999,
			"session_type": "Practice",
			"session_name": "Practice 1",
			"meeting_name": "Dutch Grand Prix",
			"country_name": "Netherlands",
			"date_start": "2024-08-23T10:30:00+00:00",
			"date_end": "2024-08-23T11:30:00+00:00"
		}]`))
	})
	mux.HandleFunc("/session_result", func(w http.ResponseWriter, r *http.Request) {
		resultCalls.Add(1)
		_, _ = w.Write([]byte(`[
			{"position": 3, "driver_first_name": "Charles", "driver_last_name": "Leclerc", "team_name": "Ferrari", "best_lap_time": "1:11.300"},
			{"position": 1, "driver_first_name": "Lando", "driver_last_name": "Norris", "team_name": "McLaren", "best_lap_time": "1:11.097"},
			{"position": 2, "driver_first_name": "Max", "driver_last_name": "Verstappen", "team_name": "Red Bull Racing", "best_lap_time": "1:11.200"}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, resultCalls
}

func TestEndToEndDutchPractice(t *testing.T) {
	t.Parallel()
	api, resultCalls := openF1Stub(t)

	var (
		mu       sync.Mutex
		payloads []string
	)
	delivered := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), payloads...)
	}
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		payloads = append(payloads, string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(hook.Close)

	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{"last_posted_session_key": null}`), 0o644))
	store, err := storage.Open(storage.Config{Driver: "file", Path: statePath}, logx.Nop())
	require.NoError(t, err)

	client := openf1.New(openf1.Config{BaseURL: api.URL, Timeout: time.Second}, logx.Nop())
	notify, err := notifier.New(notifier.Config{DiscordWebhook: hook.URL, Timeout: time.Second}, logx.Nop())
	require.NoError(t, err)
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	p := New(Config{TopN: 10, Location: loc}, store, client, client, notify, logx.Nop())

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePosted, outcome)

	require.Len(t, delivered(), 1)
	var payload struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(delivered()[0]), &payload))
	assert.Equal(t, "**Dutch Grand Prix — Practice 1 Results (Fri 23 Aug 2024 13:30 CEST)**\n"+
		"1. L. Norris — McLaren  1:11.097\n"+
		"2. M. Verstappen — Red Bull Racing  1:11.200\n"+
		"3. C. Leclerc — Ferrari  1:11.300", payload.Content)

	b, err := os.ReadFile(statePath)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(b, &saved))
	assert.Equal(t, map[string]any{"last_posted_session_key": "9999"}, saved)

	// Second run: gate hit, no results fetch, no webhook call, state unchanged.
	outcome, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyPosted, outcome)
	assert.Len(t, delivered(), 1)
	assert.Equal(t, int32(1), resultCalls.Load())

	after, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(after))
}

func TestRejectedWebhookStillRecordsSession(t *testing.T) {
	t.Parallel()
	api, _ := openF1Stub(t)

	var posts atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		http.Error(w, `{"message":"Invalid Form Body"}`, http.StatusBadRequest)
	}))
	t.Cleanup(hook.Close)

	statePath := filepath.Join(t.TempDir(), "state.json")
	store, err := storage.Open(storage.Config{Driver: "file", Path: statePath}, logx.Nop())
	require.NoError(t, err)
	client := openf1.New(openf1.Config{BaseURL: api.URL, Timeout: time.Second}, logx.Nop())
	notify, err := notifier.New(notifier.Config{DiscordWebhook: hook.URL, Timeout: time.Second}, logx.Nop())
	require.NoError(t, err)

	p := New(Config{TopN: 10}, store, client, client, notify, logx.Nop())

	want := []Outcome{OutcomePosted, OutcomeAlreadyPosted, OutcomeAlreadyPosted}
	for i, w := range want {
		outcome, err := p.Run(context.Background())
		require.NoError(t, err, "run %d", i+1)
		assert.Equal(t, w, outcome, "run %d", i+1)
	}
	assert.Equal(t, int32(1), posts.Load())

	b, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_posted_session_key": "9999"}`, string(b))
}

func TestNumericStateFromOlderDeploymentsGatesRun(t *testing.T) {
	t.Parallel()
	api, resultCalls := openF1Stub(t)

	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{\n  \"last_posted_session_key\": 9999\n}\n"), 0o644))
	store, err := storage.Open(storage.Config{Driver: "file", Path: statePath}, logx.Nop())
	require.NoError(t, err)
	client := openf1.New(openf1.Config{BaseURL: api.URL, Timeout: time.Second}, logx.Nop())
	poster := &fakePoster{}

	outcome, err := New(Config{TopN: 10}, store, client, client, poster, logx.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyPosted, outcome)
	assert.Empty(t, poster.titles)
	assert.Equal(t, int32(0), resultCalls.Load())
}

func TestTerminalOutcomesAreLogged(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		stored  *string
		rows    []openf1.ResultRow
		want    Outcome
		message string
	}{
		{
			name:    "already posted",
			stored:  strp("9999"),
			rows:    rows(),
			want:    OutcomeAlreadyPosted,
			message: "already posted this session; skipping",
		},
		{
			name:    "no results",
			want:    OutcomeNoResults,
			message: "no results yet; try again next run",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			store := &memStore{st: storage.State{LastPostedSessionKey: tt.stored}}
			p := New(Config{TopN: 10}, store, &fakeSessions{s: practice("9999"), ok: true},
				&fakeResults{rows: tt.rows}, &fakePoster{}, logx.NewWriter(&logs, "info"))

			outcome, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)

			var rec map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &rec))
			assert.Equal(t, "info", rec["level"])
			assert.Equal(t, tt.message, rec["message"])
			assert.Equal(t, "pipeline", rec["comp"])
			assert.Equal(t, "9999", rec["session_key"])
		})
	}
}
