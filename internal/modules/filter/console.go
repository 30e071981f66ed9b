package filter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dop251/goja"

	"github.com/wordsieve/runtime/internal/logger"
)

// MaxLogMessageLength is the maximum length of a single console message (8KB).
const MaxLogMessageLength = 8 * 1024

// jsConsole routes console.log/info/warn/error/debug calls of a predicate
// script to the runtime logger.
type jsConsole struct {
	moduleID string
	word     string
}

// newJSConsole registers a console object in the runtime.
func newJSConsole(runtime *goja.Runtime, moduleID string) (*jsConsole, error) {
	c := &jsConsole{moduleID: moduleID}

	console := runtime.NewObject()
	for name, level := range map[string]slog.Level{
		"log":   slog.LevelInfo,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"debug": slog.LevelDebug,
	} {
		level := level
		fn := func(call goja.FunctionCall) goja.Value {
			c.logWithLevel(level, call.Arguments)
			return goja.Undefined()
		}
		if err := console.Set(name, fn); err != nil {
			return nil, fmt.Errorf("console.Set(%q): %w", name, err)
		}
	}
	if err := runtime.Set("console", console); err != nil {
		return nil, fmt.Errorf("runtime.Set(console): %w", err)
	}
	return c, nil
}

// SetWord records the word being evaluated for log context.
func (c *jsConsole) SetWord(word string) {
	c.word = word
}

func (c *jsConsole) logWithLevel(level slog.Level, args []goja.Value) {
	message := formatArgs(args)
	if len(message) > MaxLogMessageLength {
		message = message[:MaxLogMessageLength-3] + "..."
	}

	attrs := []any{
		slog.String("source", "javascript"),
		slog.String("module_type", TypeScript),
	}
	if c.moduleID != "" {
		attrs = append(attrs, slog.String("module_id", c.moduleID))
	}
	if c.word != "" {
		attrs = append(attrs, slog.String("word", c.word))
	}

	switch level {
	case slog.LevelDebug:
		logger.Debug(message, attrs...)
	case slog.LevelWarn:
		logger.Warn(message, attrs...)
	case slog.LevelError:
		logger.Error(message, attrs...)
	default:
		logger.Info(message, attrs...)
	}
}

// formatArgs joins console arguments with spaces, like Node.js does.
// Strings are printed raw; objects and arrays as JSON when possible.
func formatArgs(args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatValue(arg))
	}
	return strings.Join(parts, " ")
}

func formatValue(val goja.Value) string {
	if val == nil || goja.IsUndefined(val) {
		return "undefined"
	}
	if goja.IsNull(val) {
		return "null"
	}
	if _, isObject := val.(*goja.Object); !isObject {
		return val.String()
	}

	exported := val.Export()
	if _, isFunc := exported.(func(goja.FunctionCall) goja.Value); isFunc {
		return "[Function]"
	}
	data, err := json.Marshal(exported)
	if err != nil {
		// Cyclic structures and other unmarshalable values.
		return "[Object]"
	}
	return string(data)
}
