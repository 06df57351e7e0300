package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/game"
)

const fileExt = ".wgp"

// FileStore writes one msgpack envelope per game into a directory.
type FileStore struct {
	dir    string
	clock  quartz.Clock
	logger zerolog.Logger
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, clock quartz.Clock, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &FileStore{
		dir:    dir,
		clock:  clock,
		logger: logger.With().Str("component", "store").Str("dir", dir).Logger(),
	}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := seal(g, s.clock.Now())
	if err != nil {
		return err
	}
	data, err := encodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", g.ID, err)
	}
	if err := WriteFileAtomic(s.path(g.ID), data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", g.ID, err)
	}
	s.logger.Debug().Str("game_id", g.ID).Int("hole", env.Hole).Int("bytes", len(data)).Msg("Game saved")
	return nil
}

func (s *FileStore) read(id string) (*Envelope, error) {
	if err := ValidateID(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", id, err)
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	if env.GameID != id {
		return nil, fmt.Errorf("store: file for %s holds game %s", id, env.GameID)
	}
	return env, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, err := s.read(id)
	if err != nil {
		return nil, err
	}
	return env.restore()
}

// List implements Store. Unreadable files are logged and skipped.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", s.dir, err)
	}
	var out []Summary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		env, err := s.read(strings.TrimSuffix(name, fileExt))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Skipping unreadable game file")
			continue
		}
		out = append(out, env.summary())
	}
	sortSummaries(out)
	return out, nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return ErrNotFound
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
