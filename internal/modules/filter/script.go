package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/internal/pathutil"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// TypeScript is the module type of JavaScript predicates.
const TypeScript = "script"

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// Common errors for script module
var (
	// ErrScriptEmpty is returned when the script is empty or whitespace-only
	ErrScriptEmpty = errors.New("script cannot be empty")
	// ErrScriptTooLong is returned when the script exceeds MaxScriptLength
	ErrScriptTooLong = errors.New("script exceeds maximum length")
	// ErrMissingPredicateFunc is returned when the script doesn't define predicate
	ErrMissingPredicateFunc = errors.New("predicate function not found in script")
	// ErrPredicateNotFunction is returned when predicate is defined but is not a function
	ErrPredicateNotFunction = errors.New("predicate is not a function")
)

// ScriptConfig represents the configuration for a script filter module.
// Exactly one of Script or ScriptFile must be provided.
type ScriptConfig struct {
	// Script is inline JavaScript source defining predicate(word)
	Script string `json:"script,omitempty"`
	// ScriptFile is the path to a JavaScript file defining predicate(word)
	ScriptFile string `json:"scriptFile,omitempty"`
	// MinLength rejects shorter words before the script runs
	MinLength int `json:"minLength,omitempty"`
	// OnError specifies error handling mode: "fail" (default) or "skip"
	OnError string `json:"onError,omitempty"`
	// ModuleID identifies the module in console output
	ModuleID string `json:"-"`
}

// ScriptModule accepts the words for which a JavaScript predicate(word)
// function returns a truthy value.
//
// Goja runtimes are not goroutine-safe: Process must not be called
// concurrently on the same instance. Context cancellation interrupts a
// running script.
type ScriptModule struct {
	onError     string
	minLength   int
	runtime     *goja.Runtime
	predicate   goja.Callable
	console     *jsConsole
	interruptMu sync.Mutex
}

// NewScriptFromConfig compiles the script and looks up its predicate function.
func NewScriptFromConfig(config ScriptConfig) (*ScriptModule, error) {
	source, err := resolveScriptSource(config)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, ErrScriptEmpty
	}
	if len(source) > MaxScriptLength {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum %d bytes", ErrScriptTooLong, len(source), MaxScriptLength)
	}

	onError := config.OnError
	if onError == "" {
		onError = OnErrorFail
	}
	if onError != OnErrorFail && onError != OnErrorSkip {
		return nil, fmt.Errorf("%w, got %q", ErrInvalidOnError, onError)
	}

	vm := goja.New()
	console, err := newJSConsole(vm, config.ModuleID)
	if err != nil {
		return nil, err
	}
	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("script compilation failed: %w", err)
	}

	predicateVal := vm.Get("predicate")
	if predicateVal == nil || goja.IsUndefined(predicateVal) {
		return nil, ErrMissingPredicateFunc
	}
	predicate, ok := goja.AssertFunction(predicateVal)
	if !ok {
		return nil, ErrPredicateNotFunction
	}

	logger.Debug("script module initialized",
		slog.Int("script_length", len(source)),
		slog.String("on_error", onError),
		slog.Bool("from_file", config.ScriptFile != ""),
	)

	return &ScriptModule{
		onError:   onError,
		minLength: config.MinLength,
		runtime:   vm,
		predicate: predicate,
		console:   console,
	}, nil
}

// resolveScriptSource returns the inline script or the content of the script file.
func resolveScriptSource(config ScriptConfig) (string, error) {
	if config.Script != "" && config.ScriptFile != "" {
		return "", errors.New("cannot specify both 'script' and 'scriptFile' - use only one")
	}
	if config.Script != "" {
		return config.Script, nil
	}
	if config.ScriptFile == "" {
		return "", errors.New("either 'script' or 'scriptFile' is required")
	}

	if err := pathutil.ValidateFilePath(config.ScriptFile); err != nil {
		return "", fmt.Errorf("invalid scriptFile: %w", err)
	}

	file, err := os.Open(config.ScriptFile)
	if err != nil {
		return "", errhandling.NewResourceError(config.ScriptFile, "script file cannot be opened", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Warn("failed to close script file",
				slog.String("file", config.ScriptFile),
				slog.String("error", closeErr.Error()),
			)
		}
	}()

	// Read one byte past the limit so oversize files are detected without
	// loading them entirely.
	content, err := io.ReadAll(io.LimitReader(file, MaxScriptLength+1))
	if err != nil {
		return "", errhandling.NewResourceError(config.ScriptFile, "script file cannot be read", err)
	}
	if len(content) > MaxScriptLength {
		return "", fmt.Errorf("%w: script file %q is larger than %d bytes", ErrScriptTooLong, config.ScriptFile, MaxScriptLength)
	}
	return string(content), nil
}

// ParseScriptConfig parses a script filter configuration from raw config.
func ParseScriptConfig(cfg map[string]interface{}) (ScriptConfig, error) {
	config := ScriptConfig{}

	script, hasScript := cfg["script"].(string)
	scriptFile, hasScriptFile := cfg["scriptFile"].(string)
	if hasScript && hasScriptFile {
		return config, errors.New("cannot specify both 'script' and 'scriptFile' - use only one")
	}
	if !hasScript && !hasScriptFile {
		if cfg["script"] != nil {
			return config, errors.New("field 'script' must be a string")
		}
		if cfg["scriptFile"] != nil {
			return config, errors.New("field 'scriptFile' must be a string")
		}
		return config, errors.New("either 'script' or 'scriptFile' is required in script config")
	}
	config.Script = script
	config.ScriptFile = scriptFile

	minLength, _, err := intConfig(cfg, "minLength")
	if err != nil {
		return config, err
	}
	config.MinLength = minLength

	onError, err := parseOnError(cfg)
	if err != nil {
		return config, err
	}
	config.OnError = onError
	return config, nil
}

// NewScriptFromModuleConfig creates a script module from a pipeline filter entry.
func NewScriptFromModuleConfig(cfg sieve.ModuleConfig, index int) (*ScriptModule, error) {
	config, err := ParseScriptConfig(cfg.Config)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid script filter config", err)
	}
	config.ModuleID = fmt.Sprintf("filters[%d]", index)

	m, err := NewScriptFromConfig(config)
	if err != nil {
		if errhandling.GetErrorCategory(err) == errhandling.CategoryResourceUnavailable {
			return nil, err
		}
		return nil, errhandling.NewConfigurationError("invalid script filter config", err)
	}
	return m, nil
}

// Evaluate calls predicate(word) and converts the result with JavaScript
// truthiness. Context cancellation interrupts the running script.
func (m *ScriptModule) Evaluate(ctx context.Context, word string) (bool, error) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			m.interruptMu.Lock()
			m.runtime.Interrupt(ctx.Err().Error())
			m.interruptMu.Unlock()
		case <-done:
		}
	}()

	m.console.SetWord(word)
	result, err := m.predicate(goja.Undefined(), m.runtime.ToValue(word))
	m.console.SetWord("")

	m.interruptMu.Lock()
	m.runtime.ClearInterrupt()
	m.interruptMu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			return false, fmt.Errorf("predicate threw: %v", jsErr.Value())
		}
		return false, err
	}
	return result != nil && result.ToBoolean(), nil
}

// Process implements Module.
func (m *ScriptModule) Process(ctx context.Context, words []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(words))
	skipped := 0
	for _, word := range words {
		if utf8.RuneCountInString(word) < m.minLength {
			continue
		}

		ok, err := m.Evaluate(ctx, word)
		if err != nil {
			if errhandling.IsCanceled(err) {
				return nil, err
			}
			if m.onError == OnErrorSkip {
				skipped++
				logger.Warn("skipping word due to script error",
					slog.String("module_type", TypeScript),
					slog.String("word", word),
					slog.String("error", err.Error()),
				)
				continue
			}
			return nil, errhandling.NewEvaluationError(fmt.Sprintf("script failed for word %q", word), err)
		}
		if ok {
			result = append(result, word)
		}
	}

	if skipped > 0 {
		logger.Info("script filter skipped words",
			slog.Int("input_words", len(words)),
			slog.Int("skipped_words", skipped),
		)
	}
	return result, nil
}
