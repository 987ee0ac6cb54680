package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logx "practicebot/pkg/logx"
)

// fileStore keeps the state as a single JSON object:
//
//	{
//	  "last_posted_session_key": "9999"
//	}
type fileStore struct {
	log  logx.Logger
	path string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Load(ctx context.Context) State {
	_ = ctx
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("state file missing; starting fresh", logx.String("path", s.path))
		return State{}
	}
	if err != nil {
		s.log.Warn("state file unreadable; starting fresh", logx.String("path", s.path), logx.Err(err))
		return State{}
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		s.log.Warn("state file malformed; starting fresh", logx.String("path", s.path), logx.Err(err))
		return State{}
	}
	return st
}

// Save replaces the file atomically (write temp, rename).
func (s *fileStore) Save(ctx context.Context, st State) error {
	_ = ctx
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
