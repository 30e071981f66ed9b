package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// TypeExpression is the module type of expression predicates.
const TypeExpression = "expression"

// Common errors for expression module
var (
	// ErrEmptyExpression is returned when no expression is configured
	ErrEmptyExpression = errors.New("expression cannot be empty")
	// ErrInvalidExpression is returned when the expression does not compile
	ErrInvalidExpression = errors.New("invalid expression")
)

// wordEnv is the environment an expression is evaluated against.
type wordEnv struct {
	Word     string `expr:"word"`
	Length   int    `expr:"length"`
	First    string `expr:"first"`
	Last     string `expr:"last"`
	Reversed string `expr:"reversed"`
}

func newWordEnv(word string) wordEnv {
	runes := []rune(word)
	env := wordEnv{Word: word, Length: len(runes)}
	if len(runes) > 0 {
		env.First = string(runes[0])
		env.Last = string(runes[len(runes)-1])
	}
	reversed := make([]rune, len(runes))
	for i, r := range runes {
		reversed[len(runes)-1-i] = r
	}
	env.Reversed = string(reversed)
	return env
}

// ExpressionModule evaluates a boolean expr-lang expression per word.
// Example: `word == reversed && length > 3`.
type ExpressionModule struct {
	expression string
	program    *vm.Program
	minLength  int
	onError    string
}

// NewExpression compiles expression against the word environment.
// Compilation fails unless the expression is boolean.
func NewExpression(expression string, minLength int, onError string) (*ExpressionModule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrEmptyExpression
	}
	program, err := expr.Compile(expression, expr.Env(wordEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	if onError == "" {
		onError = OnErrorFail
	}
	return &ExpressionModule{
		expression: expression,
		program:    program,
		minLength:  minLength,
		onError:    onError,
	}, nil
}

// NewExpressionFromConfig creates an expression module ("expression", "minLength", "onError").
func NewExpressionFromConfig(cfg sieve.ModuleConfig) (*ExpressionModule, error) {
	expression, _ := cfg.Config["expression"].(string)
	minLength, _, err := intConfig(cfg.Config, "minLength")
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid expression filter config", err)
	}
	onError, err := parseOnError(cfg.Config)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid expression filter config", err)
	}

	m, err := NewExpression(expression, minLength, onError)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid expression filter config", err)
	}

	logger.Debug("expression module initialized",
		slog.String("expression", expression),
		slog.Int("min_length", minLength),
		slog.String("on_error", onError),
	)
	return m, nil
}

// Evaluate runs the expression for a single word.
func (m *ExpressionModule) Evaluate(word string) (bool, error) {
	out, err := expr.Run(m.program, newWordEnv(word))
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("expression returned %T, want bool", out)
	}
	return ok, nil
}

// Process implements Module.
func (m *ExpressionModule) Process(ctx context.Context, words []string) ([]string, error) {
	result := make([]string, 0, len(words))
	for i, word := range words {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if utf8.RuneCountInString(word) < m.minLength {
			continue
		}

		ok, err := m.Evaluate(word)
		if err != nil {
			evalErr := errhandling.NewEvaluationError(
				fmt.Sprintf("expression %q failed for word %q", m.expression, word), err)
			if m.onError == OnErrorSkip {
				logger.Warn("skipping word due to expression error",
					slog.String("word", word),
					slog.String("error", err.Error()),
				)
				continue
			}
			return nil, evalErr
		}
		if ok {
			result = append(result, word)
		}
	}
	return result, nil
}
