// Package pathutil provides shared path validation and resolution helpers.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathKeys are the module configuration keys holding file system paths.
var PathKeys = []string{"path", "paths", "dir", "scriptFile"}

// ValidateFilePath validates a file path for path traversal and invalid characters.
// Uses segment-based detection so that "scripts/../etc/passwd" is rejected before
// cleaning (cleaned path would be "etc/passwd" and could bypass a simple ".." check).
// Returns an error if the path is empty, contains null bytes, or has ".." in any segment.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}

	for _, segment := range strings.Split(filepath.ToSlash(filePath), "/") {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", filePath)
		}
	}
	return nil
}

// Resolve makes a relative path relative to baseDir. Absolute paths and
// an empty baseDir leave the path as given (cleaned).
func Resolve(baseDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

// ResolveConfig returns a copy of a module config map in which the values
// of PathKeys (strings or lists of strings) are resolved against baseDir.
// Other values are shared with the input map.
func ResolveConfig(cfg map[string]interface{}, baseDir string) map[string]interface{} {
	if cfg == nil {
		return nil
	}
	out := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	for _, key := range PathKeys {
		switch v := cfg[key].(type) {
		case string:
			out[key] = Resolve(baseDir, v)
		case []interface{}:
			resolved := make([]interface{}, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					resolved[i] = Resolve(baseDir, s)
				} else {
					resolved[i] = item
				}
			}
			out[key] = resolved
		}
	}
	return out
}
