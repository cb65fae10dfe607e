package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apptrade "github.com/fathiyyah28/proyek-sub000/internal/application/trade"
	infraconfig "github.com/fathiyyah28/proyek-sub000/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ apptrade.ProofStorage = (*LocalProofStorage)(nil)

// ErrInvalidKey is returned for keys that would escape the storage root
var ErrInvalidKey = errors.New("storage key escapes the storage directory")

// LocalProofStorage keeps proof files under a directory on disk.
// Used in development and single-node deployments.
type LocalProofStorage struct {
	root   string
	logger *zap.Logger
}

// NewLocalProofStorage creates the root directory if needed
func NewLocalProofStorage(dir string, logger *zap.Logger) (*LocalProofStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalProofStorage{root: root, logger: logger}, nil
}

func (s *LocalProofStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

// Put writes the file atomically through a temp file in the same directory.
func (s *LocalProofStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write proof file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// Exists reports whether the key has been written
func (s *LocalProofStorage) Exists(_ context.Context, key string) (bool, error) {
	full, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// New returns the proof storage selected by cfg.Driver
func New(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (apptrade.ProofStorage, error) {
	switch cfg.Driver {
	case "s3":
		s3Storage, err := NewS3ProofStorage(ctx, &cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	case "", "local":
		return NewLocalProofStorage(cfg.LocalDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
