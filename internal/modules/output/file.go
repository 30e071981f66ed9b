package output

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// ErrLocked is returned when another process holds the artifact lock.
var ErrLocked = errors.New("artifact is locked by another writer")

// FileOutput writes the artifact to a file atomically: the content goes to
// a temporary file in the target directory, is synced and then renamed over
// the target. An advisory lock on "<path>.lock" is held for the duration.
type FileOutput struct {
	path       string
	letterCase string
}

// NewFile creates a file output module.
func NewFile(path, letterCase string) (*FileOutput, error) {
	if path == "" {
		return nil, errhandling.NewConfigurationError("file output requires 'path'", nil)
	}
	if letterCase == "" {
		letterCase = LetterCaseLower
	}
	return &FileOutput{path: path, letterCase: letterCase}, nil
}

// NewFileFromConfig creates a file output module ("path", "letterCase").
func NewFileFromConfig(cfg *sieve.ModuleConfig) (*FileOutput, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("file output configuration is nil", nil)
	}
	path, _ := cfg.Config["path"].(string)
	letterCase, err := parseLetterCase(cfg.Config)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid file output config", err)
	}
	return NewFile(path, letterCase)
}

// Path returns the artifact path.
func (f *FileOutput) Path() string {
	return f.path
}

// LockPath returns the path of the advisory lock file.
func (f *FileOutput) LockPath() string {
	return f.path + ".lock"
}

// Write implements Module.
func (f *FileOutput) Write(ctx context.Context, result *sieve.ResultSet) error {
	data, err := Format(result, f.letterCase)
	if err != nil {
		return errhandling.NewConfigurationError("artifact cannot be formatted", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errhandling.NewIOError(dir, "output directory cannot be created", err)
	}

	lock := flock.New(f.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return errhandling.NewIOError(f.LockPath(), "artifact lock cannot be acquired", err)
	}
	if !locked {
		return errhandling.NewIOError(f.LockPath(), "artifact lock is held", ErrLocked)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release artifact lock",
				slog.String("lock", f.LockPath()),
				slog.String("error", unlockErr.Error()),
			)
		}
	}()

	// Last cancellation point: after this the write runs to completion.
	if err := ctx.Err(); err != nil {
		return errhandling.NewCanceledError(err)
	}

	if err := writeAtomic(f.path, data); err != nil {
		return err
	}

	logger.Debug("artifact written",
		slog.String("path", f.path),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// writeAtomic replaces path with data so that readers see either the old
// file or the complete new one.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errhandling.NewIOError(dir, "temporary artifact cannot be created", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errhandling.NewIOError(tmpPath, "artifact cannot be written", err)
	}
	if err = tmp.Sync(); err != nil {
		return errhandling.NewIOError(tmpPath, "artifact cannot be synced", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errhandling.NewIOError(tmpPath, "artifact permissions cannot be set", err)
	}
	if err = tmp.Close(); err != nil {
		return errhandling.NewIOError(tmpPath, "artifact cannot be closed", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errhandling.NewIOError(path, "artifact cannot be moved into place", err)
	}
	return nil
}

// Preview implements PreviewableModule.
func (f *FileOutput) Preview(result *sieve.ResultSet, opts PreviewOptions) (*sieve.ArtifactPreview, error) {
	data, err := Format(result, f.letterCase)
	if err != nil {
		return nil, err
	}
	return buildPreview(f.path, result, data, opts), nil
}

// Close implements Module.
func (f *FileOutput) Close() error {
	return nil
}

var _ PreviewableModule = (*FileOutput)(nil)
