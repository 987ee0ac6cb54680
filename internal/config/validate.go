package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the fields that would otherwise fail halfway through a run.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if u, err := url.Parse(strings.TrimSpace(c.API.BaseURL)); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url: invalid url %q", c.API.BaseURL))
	}
	if c.API.RatePerSec < 0 {
		errs = append(errs, errors.New("api.rate_per_sec: must be >= 0"))
	}
	if c.Report.TopN < 0 {
		errs = append(errs, errors.New("report.top_n: must be >= 0"))
	}

	durations := []struct{ path, raw string }{
		{"api.timeout", c.API.Timeout},
		{"notifier.timeout", c.Notifier.Timeout},
		{"storage.busy_timeout", c.Storage.BusyTimeout},
	}
	for _, d := range durations {
		if _, err := ParseDurationField(d.path, d.raw); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := LoadLocation("report.timezone", c.Report.Timezone, DefaultTimezone); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Schedule.Timezone) != "" {
		if _, err := LoadLocation("schedule.timezone", c.Schedule.Timezone, DefaultTimezone); err != nil {
			errs = append(errs, err)
		}
	}

	tg := c.Notifier.Telegram
	if strings.TrimSpace(tg.Token) != "" && tg.ChatID == 0 {
		errs = append(errs, errors.New("notifier.telegram.chat_id: required when token is set"))
	}

	return errors.Join(errs...)
}
