package app

import (
	"strings"
	"time"

	"practicebot/internal/config"
	"practicebot/internal/notifier"
	"practicebot/internal/openf1"
	"practicebot/internal/pipeline"
	"practicebot/internal/task/scheduler"
	logx "practicebot/pkg/logx"
)

const defaultTimeout = 20 * time.Second

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapClientConfig(cfg *config.Config) (openf1.Config, error) {
	timeout, err := config.ParseDurationOrDefault("api.timeout", cfg.API.Timeout, defaultTimeout)
	if err != nil {
		return openf1.Config{}, err
	}
	base := strings.TrimSpace(cfg.API.BaseURL)
	if base == "" {
		base = config.DefaultAPIBaseURL
	}
	return openf1.Config{BaseURL: base, Timeout: timeout, RatePerSec: cfg.API.RatePerSec}, nil
}

func mapNotifierConfig(cfg *config.Config) (notifier.Config, error) {
	timeout, err := config.ParseDurationOrDefault("notifier.timeout", cfg.Notifier.Timeout, defaultTimeout)
	if err != nil {
		return notifier.Config{}, err
	}
	tg := cfg.Notifier.Telegram
	return notifier.Config{
		DiscordWebhook: strings.TrimSpace(cfg.Notifier.DiscordWebhook),
		Timeout:        timeout,
		Telegram: notifier.TelegramConfig{
			Token:    strings.TrimSpace(tg.Token),
			ChatID:   tg.ChatID,
			ThreadID: tg.ThreadID,
		},
	}, nil
}

func mapPipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	loc, err := config.LoadLocation("report.timezone", cfg.Report.Timezone, config.DefaultTimezone)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{TopN: cfg.Report.TopN, Location: loc}, nil
}

// mapScheduleConfig maps the daemon trigger. The schedule time zone defaults
// to the report time zone so "0 14 * * 5" reads in the same local time as titles.
func mapScheduleConfig(cfg *config.Config) (scheduler.Config, error) {
	spec, err := scheduler.ParseSchedule(cfg.Schedule.Spec)
	if err != nil {
		return scheduler.Config{}, err
	}
	tz := cfg.Schedule.Timezone
	if strings.TrimSpace(tz) == "" {
		tz = cfg.Report.Timezone
	}
	loc, err := config.LoadLocation("schedule.timezone", tz, config.DefaultTimezone)
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{Spec: spec, Location: loc, RunOnStart: cfg.Schedule.RunsOnStart()}, nil
}
