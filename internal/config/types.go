package config

// Config is the on-disk (JSON or YAML) configuration.
//
// Every field is optional. Missing keys keep the values from Default(), and
// environment variables (see Env) are applied on top.
type Config struct {
	API      APIConfig      `json:"api"`
	Report   ReportConfig   `json:"report"`
	Notifier NotifierConfig `json:"notifier"`
	Storage  StorageConfig  `json:"storage"`
	Logging  LoggingConfig  `json:"logging"`
	Schedule ScheduleConfig `json:"schedule"`
}

// APIConfig controls the OpenF1 client.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type APIConfig struct {
	BaseURL    string `json:"base_url,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

type ReportConfig struct {
	TopN int `json:"top_n"`
	// Timezone is an IANA zone name used to render the session time in the title.
	Timezone string `json:"timezone,omitempty"`
}

// NotifierConfig lists the delivery sinks. A sink without credentials is disabled;
// with no sink enabled, posting is a logged no-op.
type NotifierConfig struct {
	DiscordWebhook string         `json:"discord_webhook,omitempty"` // do not log
	Timeout        string         `json:"timeout,omitempty"`
	Telegram       TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Token    string `json:"token,omitempty"` // do not log
	ChatID   int64  `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
}

// StorageConfig controls where the last posted session key lives.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./practicebot.db" }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string      `json:"level,omitempty"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ScheduleConfig controls daemon mode triggers.
//
// Spec accepts a cron expression ("*/15 * * * *", "@hourly") or an interval
// ("15m", "every:15m", "00:30").
type ScheduleConfig struct {
	Spec       string `json:"spec,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	RunOnStart *bool  `json:"run_on_start,omitempty"`
}

const (
	DefaultAPIBaseURL  = "https://api.openf1.org/v1"
	DefaultTimeout     = "20s"
	DefaultRatePerSec  = 3
	DefaultTopN        = 10
	DefaultTimezone    = "Europe/Amsterdam"
	DefaultStorage     = "file"
	DefaultStatePath   = "state.json"
	DefaultLogLevel    = "info"
	DefaultScheduleRaw = "every:15m"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    DefaultAPIBaseURL,
			Timeout:    DefaultTimeout,
			RatePerSec: DefaultRatePerSec,
		},
		Report: ReportConfig{
			TopN:     DefaultTopN,
			Timezone: DefaultTimezone,
		},
		Notifier: NotifierConfig{
			Timeout: DefaultTimeout,
		},
		Storage: StorageConfig{
			Driver: DefaultStorage,
			Path:   DefaultStatePath,
		},
		Logging: LoggingConfig{
			Level:   DefaultLogLevel,
			Console: true,
		},
		Schedule: ScheduleConfig{
			Spec: DefaultScheduleRaw,
		},
	}
}

// RunsOnStart reports whether daemon mode runs once before the first trigger.
// Defaults to true.
func (s ScheduleConfig) RunsOnStart() bool {
	if s.RunOnStart == nil {
		return true
	}
	return *s.RunOnStart
}
