package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// stringParsers maps each supported format to its content parser.
var stringParsers = map[string]func(string) *ParseResult{
	FormatJSON: ParseJSONString,
	FormatYAML: ParseYAMLString,
	FormatTOML: ParseTOMLString,
}

// ParseConfig parses and validates a configuration file.
// The format comes from the file extension, or is sniffed from the content
// when the extension is unknown. Validation runs only when parsing succeeded.
func ParseConfig(path string) *Result {
	result := &Result{FilePath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	format := DetectFormat(path)
	if format == "" {
		format = sniffFormat(string(content))
	}
	if format == "" {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    path,
			Message: "unable to detect configuration format: not valid JSON, YAML or TOML",
			Type:    ErrorTypeFormat,
		})
		return result
	}

	parsed := stringParsers[format](string(content))
	for i := range parsed.Errors {
		if parsed.Errors[i].Path == "" {
			parsed.Errors[i].Path = path
		}
	}
	parsed.FilePath = path

	return finishResult(result, parsed)
}

// ParseConfigString parses and validates configuration content from a string.
// If format is empty, it is detected from the content.
func ParseConfigString(content string, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		format = sniffFormat(content)
		if format == "" {
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect configuration format: not valid JSON, YAML or TOML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	parse, ok := stringParsers[format]
	if !ok {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	return finishResult(result, parse(content))
}

func finishResult(result *Result, parsed *ParseResult) *Result {
	result.Data = parsed.Data
	result.ParseErrors = parsed.Errors
	result.Format = parsed.Format

	if !parsed.IsValid() {
		return result
	}

	result.ValidationErrors = ValidateConfig(parsed.Data).Errors
	return result
}

// DetectFormat detects the configuration format from file extension.
// Returns "json", "yaml", "toml", or empty string if format cannot be detected.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return ""
	}
}

// sniffFormat guesses the format of content. TOML is tried before YAML because
// a TOML document is frequently a valid YAML scalar.
func sniffFormat(content string) string {
	switch {
	case IsJSON(content):
		return FormatJSON
	case IsTOML(content):
		return FormatTOML
	case IsYAML(content):
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be JSON format.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML checks if the content parses as a YAML mapping.
// Note: JSON is also valid YAML, so this may return true for JSON content.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data map[string]interface{}
	return yaml.Unmarshal([]byte(content), &data) == nil && data != nil
}

// IsTOML checks if the content parses as a non-empty TOML document.
func IsTOML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data map[string]interface{}
	return toml.Unmarshal([]byte(content), &data) == nil && len(data) > 0
}

// ============================================================================
// JSON
// ============================================================================

// ParseJSONFile parses a JSON configuration file from the given path.
func ParseJSONFile(path string) *ParseResult {
	return parseFile(path, FormatJSON)
}

// ParseJSONString parses JSON content from a string.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{Format: FormatJSON}

	content = strings.TrimSpace(content)
	if content == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseJSONError(err, content))
		return result
	}

	return setObject(result, data, "JSON object")
}

// parseJSONError extracts detailed error information from a JSON unmarshaling error.
func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		parseErr.Offset = typeErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, typeErr.Offset)
		parseErr.Message = fmt.Sprintf("type error at field '%s': expected %s, got %s",
			typeErr.Field, typeErr.Type.String(), typeErr.Value)
	}

	return parseErr
}

// offsetToLineColumn converts a byte offset to line and column numbers (1-based).
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// ============================================================================
// YAML
// ============================================================================

// ParseYAMLFile parses a YAML configuration file from the given path.
func ParseYAMLFile(path string) *ParseResult {
	return parseFile(path, FormatYAML)
}

// ParseYAMLString parses YAML content from a string.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{Format: FormatYAML}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result
	}

	return setObject(result, data, "YAML mapping")
}

// parseYAMLError extracts detailed error information from a YAML unmarshaling error.
func parseYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports positions as "yaml: line X: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}

	return parseErr
}

// ============================================================================
// TOML
// ============================================================================

// ParseTOMLFile parses a TOML configuration file from the given path.
func ParseTOMLFile(path string) *ParseResult {
	return parseFile(path, FormatTOML)
}

// ParseTOMLString parses TOML content from a string.
func ParseTOMLString(content string) *ParseResult {
	result := &ParseResult{Format: FormatTOML}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected TOML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data map[string]interface{}
	if err := toml.Unmarshal([]byte(content), &data); err != nil {
		parseErr := ParseError{Message: err.Error(), Type: ErrorTypeSyntax}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			parseErr.Line, parseErr.Column = decodeErr.Position()
		}
		result.Errors = append(result.Errors, parseErr)
		return result
	}
	if len(data) == 0 {
		return result
	}

	return setObject(result, data, "TOML table")
}

// ============================================================================
// Helpers
// ============================================================================

func parseFile(path, format string) *ParseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return &ParseResult{
			FilePath: path,
			Format:   format,
			Errors: []ParseError{{
				Path:    path,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			}},
		}
	}

	result := stringParsers[format](string(content))
	result.FilePath = path
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = path
		}
	}
	return result
}

// setObject stores data in result when it is an object. YAML and TOML values
// are passed through a JSON round trip so every format yields the same value
// types (float64 numbers, map[string]interface{} objects) for validation and
// conversion.
func setObject(result *ParseResult, data interface{}, expected string) *ParseResult {
	if data == nil {
		// null document or comments only: valid syntax but not a configuration
		return result
	}

	if result.Format != FormatJSON {
		normalized, err := normalizeJSON(data)
		if err != nil {
			result.Errors = append(result.Errors, ParseError{
				Message: fmt.Sprintf("invalid configuration: %v", err),
				Type:    ErrorTypeFormat,
			})
			return result
		}
		data = normalized
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid configuration: expected %s, got %T", expected, data),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	result.Data = dataMap
	return result
}

func normalizeJSON(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
