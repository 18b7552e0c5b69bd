package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileStore keeps one document in one file. Saves go through a staging file next to
// the canonical path and are renamed into place only after the staged bytes re-parse.
type FileStore[T any] struct {
	path      string
	codec     Codec
	validator Validator[T]
}

// NewFileStore returns a store for path. The codec defaults to CodecFor(path).
func NewFileStore[T any](path string, opts ...Option[T]) *FileStore[T] {
	o := options[T]{codec: CodecFor(path)}
	for _, opt := range opts {
		opt(&o)
	}
	return &FileStore[T]{path: path, codec: o.codec, validator: o.validator}
}

// Path returns the canonical file location.
func (s *FileStore[T]) Path() string { return s.path }

func (s *FileStore[T]) stagingPath() string { return s.path + ".tmp" }

// Load reads and decodes the canonical document.
func (s *FileStore[T]) Load(ctx context.Context) (T, error) {
	var doc T
	if err := ctx.Err(); err != nil {
		return doc, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if err := s.codec.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes doc to the staging file, re-reads and re-parses it, runs the validator
// and renames it over the canonical file. On any failure the staging file is removed.
func (s *FileStore[T]) Save(ctx context.Context, doc T) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}

	staging := s.stagingPath()
	defer func() {
		if err != nil {
			if rmErr := os.Remove(staging); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.Warn().Err(rmErr).Str("path", staging).Msg("failed to remove staging file")
			}
		}
	}()

	if err := writeSynced(staging, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", staging, err)
	}

	staged, err := os.ReadFile(staging)
	if err != nil {
		return fmt.Errorf("failed to re-read %s: %w", staging, err)
	}
	if err := verify(s.codec, staged, s.validator); err != nil {
		return fmt.Errorf("staged %s rejected: %w", s.path, err)
	}

	if err := os.Rename(staging, s.path); err != nil {
		return fmt.Errorf("failed to commit %s: %w", s.path, err)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
