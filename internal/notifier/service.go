package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"practicebot/internal/format"
	logx "practicebot/pkg/logx"
)

const defaultTimeout = 20 * time.Second

// Service posts messages to every configured sink, in order.
type Service struct {
	log   logx.Logger
	sinks []Sink
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	s := &Service{log: log.With(logx.String("comp", "notifier"))}
	if url := strings.TrimSpace(cfg.DiscordWebhook); url != "" {
		s.sinks = append(s.sinks, newDiscord(url, client, s.log.With(logx.String("sink", "discord"))))
	}
	if strings.TrimSpace(cfg.Telegram.Token) != "" {
		tg, err := newTelegram(cfg.Telegram, client)
		if err != nil {
			return nil, fmt.Errorf("telegram sink: %w", err)
		}
		s.sinks = append(s.sinks, tg)
	}
	return s, nil
}

// NewWithSinks builds a service over explicit sinks.
func NewWithSinks(log logx.Logger, sinks ...Sink) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log.With(logx.String("comp", "notifier")), sinks: sinks}
}

// Enabled reports whether any sink is configured.
func (s *Service) Enabled() bool { return len(s.sinks) > 0 }

// Post delivers the title and lines as one message.
func (s *Service) Post(ctx context.Context, title string, lines []string) error {
	if len(s.sinks) == 0 {
		s.log.Info("no webhook configured; skipping delivery", logx.String("title", title))
		return nil
	}
	m := format.Message{Title: title, Lines: lines}
	for _, sink := range s.sinks {
		start := time.Now()
		if err := sink.Send(ctx, m); err != nil {
			return fmt.Errorf("notify %s: %w", sink.Name(), err)
		}
		s.log.Debug("message delivered",
			logx.String("sink", sink.Name()),
			logx.Int("lines", len(lines)),
			logx.Duration("took", time.Since(start)),
		)
	}
	return nil
}
