package output

import (
	"context"
	"io"
	"os"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// StdoutOutput writes the artifact to standard output in a single write.
type StdoutOutput struct {
	w          io.Writer
	letterCase string
}

// NewStdout creates a module writing to w (os.Stdout when nil).
func NewStdout(w io.Writer, letterCase string) *StdoutOutput {
	if w == nil {
		w = os.Stdout
	}
	if letterCase == "" {
		letterCase = LetterCaseLower
	}
	return &StdoutOutput{w: w, letterCase: letterCase}
}

// NewStdoutFromConfig creates a stdout output module ("letterCase").
func NewStdoutFromConfig(cfg *sieve.ModuleConfig) (*StdoutOutput, error) {
	var config map[string]interface{}
	if cfg != nil {
		config = cfg.Config
	}
	letterCase, err := parseLetterCase(config)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid stdout output config", err)
	}
	return NewStdout(nil, letterCase), nil
}

// SetWriter redirects the artifact to w.
func (s *StdoutOutput) SetWriter(w io.Writer) {
	s.w = w
}

// Write implements Module.
func (s *StdoutOutput) Write(ctx context.Context, result *sieve.ResultSet) error {
	data, err := Format(result, s.letterCase)
	if err != nil {
		return errhandling.NewConfigurationError("artifact cannot be formatted", err)
	}
	if err := ctx.Err(); err != nil {
		return errhandling.NewCanceledError(err)
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := s.w.Write(data); err != nil {
		return errhandling.NewIOError("stdout", "artifact cannot be written", err)
	}
	return nil
}

// Preview implements PreviewableModule.
func (s *StdoutOutput) Preview(result *sieve.ResultSet, opts PreviewOptions) (*sieve.ArtifactPreview, error) {
	data, err := Format(result, s.letterCase)
	if err != nil {
		return nil, err
	}
	return buildPreview("stdout", result, data, opts), nil
}

// Close implements Module.
func (s *StdoutOutput) Close() error {
	return nil
}

var _ PreviewableModule = (*StdoutOutput)(nil)
