package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// KeyLastPosted is the single recognized state key.
const KeyLastPosted = "last_posted_session_key"

// Config configures storage.
//
// Driver values:
//   - "file": JSON object at Path
//   - "sqlite": SQLite database file at Path
//
// An empty Driver means "file".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// State is the persisted dedup state.
type State struct {
	// LastPostedSessionKey is nil until a session has been posted.
	LastPostedSessionKey *string `json:"last_posted_session_key"`
}

// LastPosted returns the stored key, or "" when none is stored.
func (s State) LastPosted() string {
	if s.LastPostedSessionKey == nil {
		return ""
	}
	return *s.LastPostedSessionKey
}

// UnmarshalJSON accepts the key as a string or as a JSON number, the form
// older deployments wrote. Numbers keep their literal text.
func (s *State) UnmarshalJSON(b []byte) error {
	var raw struct {
		Key json.RawMessage `json:"last_posted_session_key"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = State{}

	v := bytes.TrimSpace(raw.Key)
	switch {
	case len(v) == 0, bytes.Equal(v, []byte("null")):
		return nil
	case v[0] == '"':
		var key string
		if err := json.Unmarshal(v, &key); err != nil {
			return err
		}
		s.LastPostedSessionKey = &key
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("%s: want string or number, got %s", KeyLastPosted, v)
		}
		key := n.String()
		s.LastPostedSessionKey = &key
	}
	return nil
}

// WithLastPosted returns a copy of s recording key as posted.
func (s State) WithLastPosted(key string) State {
	s.LastPostedSessionKey = &key
	return s
}

// Store is the persistence contract used by the pipeline.
//
// Load never fails: a missing or unreadable state yields the zero State.
// Save errors must be surfaced, since losing the state re-posts a session.
type Store interface {
	Load(ctx context.Context) State
	Save(ctx context.Context, st State) error
	Close() error
}
