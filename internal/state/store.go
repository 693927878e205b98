package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore reads and writes the state blob as a single JSON file.
//
// Saves go through a temporary file in the same directory followed by a
// rename, so a crash mid-write leaves either the previous or the new
// complete blob on disk, never a truncated hybrid. Mutual exclusion
// between invocations is an external precondition (one scheduler slot);
// the store takes no locks of its own.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore wires the blob location.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the blob from disk. A missing file is a first run and yields
// the empty state; malformed content is a hard error so a corrupt blob is
// surfaced to the operator instead of silently discarded.
func (s *FileStore) Load() (*Blob, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.debug("state file absent, starting fresh", "path", s.path)
		return NewBlob(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", s.path, err)
	}

	var blob Blob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	blob.normalize()
	return &blob, nil
}

// Save atomically replaces the blob on disk.
func (s *FileStore) Save(blob *Blob) error {
	raw, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp state: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state %s: %w", s.path, err)
	}

	s.debug("state saved", "path", s.path)
	return nil
}

func (s *FileStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
