package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment overrides. A nil field means the variable is unset.
//
// DISCORD_WEBHOOK, TOP_N and LOCAL_TZ keep the names used by existing
// deployments; everything else is prefixed.
type Env struct {
	DiscordWebhook *string `env:"DISCORD_WEBHOOK"`
	TopN           *int    `env:"TOP_N"`
	LocalTZ        *string `env:"LOCAL_TZ"`

	APIBaseURL    *string `env:"PRACTICEBOT_API_BASE_URL"`
	StatePath     *string `env:"PRACTICEBOT_STATE_PATH"`
	StorageDriver *string `env:"PRACTICEBOT_STORAGE_DRIVER"`
	LogLevel      *string `env:"PRACTICEBOT_LOG_LEVEL"`
	Schedule      *string `env:"PRACTICEBOT_SCHEDULE"`

	TelegramToken    *string `env:"TELEGRAM_TOKEN"`
	TelegramChatID   *int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramThreadID *int    `env:"TELEGRAM_THREAD_ID"`
}

// ParseEnv reads overrides from environ. A nil map reads the process environment.
func ParseEnv(environ map[string]string) (Env, error) {
	var e Env
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overlays the set variables onto cfg.
func (e Env) Apply(cfg *Config) {
	setStr(&cfg.Notifier.DiscordWebhook, e.DiscordWebhook)
	if e.TopN != nil {
		cfg.Report.TopN = *e.TopN
	}
	setStr(&cfg.Report.Timezone, e.LocalTZ)
	setStr(&cfg.API.BaseURL, e.APIBaseURL)
	setStr(&cfg.Storage.Path, e.StatePath)
	setStr(&cfg.Storage.Driver, e.StorageDriver)
	setStr(&cfg.Logging.Level, e.LogLevel)
	setStr(&cfg.Schedule.Spec, e.Schedule)
	setStr(&cfg.Notifier.Telegram.Token, e.TelegramToken)
	if e.TelegramChatID != nil {
		cfg.Notifier.Telegram.ChatID = *e.TelegramChatID
	}
	if e.TelegramThreadID != nil {
		cfg.Notifier.Telegram.ThreadID = *e.TelegramThreadID
	}
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
