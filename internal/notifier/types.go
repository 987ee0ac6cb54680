package notifier

import (
	"context"
	"time"

	"practicebot/internal/format"
)

// Config lists the sinks. Empty credentials disable a sink.
type Config struct {
	DiscordWebhook string
	Timeout        time.Duration
	Telegram       TelegramConfig
}

type TelegramConfig struct {
	Token    string
	ChatID   int64
	ThreadID int
	// APIURL overrides the Bot API endpoint (tests, local bot API servers).
	APIURL string
}

// Sink delivers one message to one endpoint.
type Sink interface {
	Name() string
	Send(ctx context.Context, m format.Message) error
}
