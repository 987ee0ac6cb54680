// Package pipeline runs one fetch → format → deduplicate → deliver pass.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"practicebot/internal/format"
	"practicebot/internal/openf1"
	"practicebot/internal/storage"
	logx "practicebot/pkg/logx"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	OutcomeNoSession Outcome = iota + 1
	OutcomeAlreadyPosted
	OutcomeNoResults
	OutcomePosted
	// OutcomeReady is returned by Preview when a message would be posted.
	OutcomeReady
	// OutcomeFailed accompanies every non-nil error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoSession:
		return "no_session"
	case OutcomeAlreadyPosted:
		return "already_posted"
	case OutcomeNoResults:
		return "no_results"
	case OutcomePosted:
		return "posted"
	case OutcomeReady:
		return "ready"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type SessionResolver interface {
	LatestPracticeSession(ctx context.Context) (openf1.Session, bool, error)
}

type ResultsFetcher interface {
	ResultsFor(ctx context.Context, key openf1.Key) ([]openf1.ResultRow, error)
}

type Poster interface {
	Post(ctx context.Context, title string, lines []string) error
}

type Config struct {
	TopN     int
	Location *time.Location
}

type Pipeline struct {
	cfg      Config
	store    storage.Store
	sessions SessionResolver
	results  ResultsFetcher
	poster   Poster
	log      logx.Logger
}

func New(cfg Config, store storage.Store, sessions SessionResolver, results ResultsFetcher, poster Poster, log logx.Logger) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		results:  results,
		poster:   poster,
		log:      log.With(logx.String("comp", "pipeline")),
	}
}

// Run posts the latest practice session's results unless already posted.
//
// State is written only after a successful post. If that write fails the
// message has still been delivered; the error is returned and the next run
// may post the same session again.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	st := p.store.Load(ctx)

	sess, ok, err := p.sessions.LatestPracticeSession(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		p.log.Info("no practice session found")
		return OutcomeNoSession, nil
	}

	key := sess.SessionKey.String()
	if key == "" {
		p.log.Info("session has no key", logx.String("session", sess.SessionName))
		return OutcomeNoSession, nil
	}
	log := p.log.With(logx.String("session_key", key))

	if st.LastPostedSessionKey != nil && *st.LastPostedSessionKey == key {
		log.Info("already posted this session; skipping")
		return OutcomeAlreadyPosted, nil
	}

	rows, err := p.results.ResultsFor(ctx, sess.SessionKey)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch results %s: %w", key, err)
	}
	if len(rows) == 0 {
		log.Info("no results yet; try again next run")
		return OutcomeNoResults, nil
	}

	msg := format.Build(sess, rows, p.cfg.TopN, p.cfg.Location)
	if err := p.poster.Post(ctx, msg.Title, msg.Lines); err != nil {
		return OutcomeFailed, fmt.Errorf("post session %s: %w", key, err)
	}

	if err := p.store.Save(ctx, st.WithLastPosted(key)); err != nil {
		return OutcomeFailed, fmt.Errorf("save state after posting %s: %w", key, err)
	}
	log.Info("posted session", logx.String("title", msg.Title), logx.Int("lines", len(msg.Lines)))
	return OutcomePosted, nil
}

// Preview resolves and formats the current message without the dedupe gate,
// delivery or a state write.
func (p *Pipeline) Preview(ctx context.Context) (format.Message, Outcome, error) {
	sess, ok, err := p.sessions.LatestPracticeSession(ctx)
	if err != nil {
		return format.Message{}, OutcomeFailed, fmt.Errorf("resolve session: %w", err)
	}
	if !ok || sess.SessionKey == "" {
		return format.Message{}, OutcomeNoSession, nil
	}
	rows, err := p.results.ResultsFor(ctx, sess.SessionKey)
	if err != nil {
		return format.Message{}, OutcomeFailed, fmt.Errorf("fetch results %s: %w", sess.SessionKey, err)
	}
	if len(rows) == 0 {
		return format.Message{}, OutcomeNoResults, nil
	}
	return format.Build(sess, rows, p.cfg.TopN, p.cfg.Location), OutcomeReady, nil
}
