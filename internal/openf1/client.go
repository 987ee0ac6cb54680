// Package openf1 reads session metadata and results from the OpenF1 HTTP API.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "practicebot/pkg/logx"
)

const (
	defaultTimeout    = 20 * time.Second
	defaultRatePerSec = 3
	userAgent         = "practicebot"
	maxErrorBody      = 512
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int // 0 disables client-side pacing
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("openf1 %s: http %d", e.Path, e.Status)
	}
	return fmt.Sprintf("openf1 %s: http %d: %s", e.Path, e.Status, e.Body)
}

// Client is a read-only OpenF1 client. Every call is bounded by the
// configured timeout and is never retried.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		base: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http: &http.Client{Timeout: timeout},
		log:  log.With(logx.String("comp", "openf1")),
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return c
}

// Sessions returns the sessions of a meeting ("latest" for the current one).
func (c *Client) Sessions(ctx context.Context, meetingKey string) ([]Session, error) {
	var out []Session
	if err := c.get(ctx, "/sessions", url.Values{"meeting_key": {meetingKey}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionResults returns the unsorted result rows of a session.
func (c *Client) SessionResults(ctx context.Context, key Key) ([]ResultRow, error) {
	var out []ResultRow
	if err := c.get(ctx, "/session_result", url.Values{"session_key": {key.String()}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openf1 %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request done",
		logx.String("path", path),
		logx.String("query", q.Encode()),
		logx.Int("status", resp.StatusCode),
		logx.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openf1 %s: decode: %w", path, err)
	}
	return nil
}
