package runtime

import (
	"errors"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Error codes for pipeline execution errors
const (
	ErrCodeCorpusFailed   = "CORPUS_FAILED"
	ErrCodeFilterFailed   = "FILTER_FAILED"
	ErrCodeOracleFailed   = "ORACLE_FAILED"
	ErrCodeGroupingFailed = "GROUPING_FAILED"
	ErrCodeOutputFailed   = "OUTPUT_FAILED"
	ErrCodeInvalidInput   = "INVALID_INPUT"
)

// Common errors
var (
	// ErrNilPipeline is returned when pipeline configuration is nil
	ErrNilPipeline = errors.New("pipeline configuration is nil")

	// ErrNilCorpusModule is returned when corpus module is nil
	ErrNilCorpusModule = errors.New("corpus module is nil")

	// ErrNilOutputModule is returned when output module is nil
	ErrNilOutputModule = errors.New("output module is nil")
)

// buildExecutionError creates an ExecutionError carrying the error category
// and, when known, the resource that failed.
func buildExecutionError(code, module string, err error) *sieve.ExecutionError {
	cl := errhandling.ClassifyError(err)
	ex := &sieve.ExecutionError{
		Code:     code,
		Category: string(cl.Category),
		Message:  err.Error(),
		Module:   module,
	}
	if cl.Resource != "" {
		ex.Details = map[string]interface{}{"resource": cl.Resource}
	}
	return ex
}
