// Package runtime provides the pipeline execution engine.
// It orchestrates the execution of Corpus, Filter, Meaning and Output modules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/internal/modules/corpus"
	"github.com/wordsieve/runtime/internal/modules/filter"
	"github.com/wordsieve/runtime/internal/modules/output"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Stage names used in logs and execution errors.
const (
	StageCorpus   = "corpus"
	StageFilter   = "filter"
	StageMeaning  = "meaning"
	StageGrouping = "grouping"
	StageOutput   = "output"
)

// MeaningStage is the oracle-backed filter that runs after every shape filter.
type MeaningStage interface {
	filter.Module
	Queries() int
	Close() error
}

// Modules groups the modules an Executor runs.
type Modules struct {
	Corpus  corpus.Module
	Filters []filter.Module
	// Meaning is optional; nil skips the meaning stage.
	Meaning MeaningStage
	Output  output.Module
}

// Executor is responsible for executing pipeline configurations.
// It orchestrates the execution flow:
// Corpus → Normalize → Filters → Meaning → Sort/Group → Output.
//
// The Executor only interacts with modules through their public interfaces.
// An Executor runs a pipeline once: its modules are closed by the run.
type Executor struct {
	corpusModule  corpus.Module
	filterModules []filter.Module
	meaningModule MeaningStage
	outputModule  output.Module
	dryRun        bool
}

// NewExecutorWithModules creates a new pipeline executor with all modules configured.
// In dry-run mode the output module is only asked for a preview.
func NewExecutorWithModules(modules Modules, dryRun bool) *Executor {
	return &Executor{
		corpusModule:  modules.Corpus,
		filterModules: modules.Filters,
		meaningModule: modules.Meaning,
		outputModule:  modules.Output,
		dryRun:        dryRun,
	}
}

// stageTimings holds timing measurements for each execution stage
type stageTimings struct {
	corpusDuration  time.Duration
	filterDuration  time.Duration
	meaningDuration time.Duration
	outputDuration  time.Duration
}

// run carries the state of one execution.
type run struct {
	pipeline *sieve.Pipeline
	result   *sieve.ExecutionResult
	execCtx  logger.ExecutionContext
	timings  stageTimings
	queries  int
}

// Execute runs a pipeline configuration with a background context.
//
// For cancellation support, use ExecuteWithContext instead.
func (e *Executor) Execute(pipeline *sieve.Pipeline) (*sieve.ExecutionResult, error) {
	return e.ExecuteWithContext(context.Background(), pipeline)
}

// ExecuteWithContext runs a pipeline configuration with the given context.
//
// Execution flow:
//  1. Load the corpus and close the corpus module
//  2. Normalize and deduplicate candidates
//  3. Run shape filters in configured order
//  4. Run the meaning stage (if configured)
//  5. Sort and optionally group the survivors
//  6. Write the artifact once (or build a preview in dry-run mode)
//
// Any failure aborts the run before the write, so a failed run never leaves
// a partial artifact. Returns both result and error for comprehensive error
// handling.
func (e *Executor) ExecuteWithContext(ctx context.Context, pipeline *sieve.Pipeline) (*sieve.ExecutionResult, error) {
	startedAt := time.Now()
	result := &sieve.ExecutionResult{
		RunID:     uuid.NewString(),
		StartedAt: startedAt,
		Status:    StatusError,
	}

	if err := e.validateExecution(pipeline, result); err != nil {
		e.closeAll("")
		return result, err
	}
	result.PipelineID = pipeline.ID

	r := &run{
		pipeline: pipeline,
		result:   result,
		execCtx: logger.ExecutionContext{
			PipelineID:   pipeline.ID,
			PipelineName: pipeline.Name,
			RunID:        result.RunID,
			DryRun:       e.dryRun,
		},
	}
	logger.LogExecutionStart(r.execCtx)
	defer e.closeAll(pipeline.ID)

	resultSet, err := e.process(ctx, r)
	if err != nil {
		return e.fail(r, startedAt, err)
	}

	if err := e.executeOutput(ctx, r, resultSet); err != nil {
		return e.fail(r, startedAt, err)
	}

	e.finalizeSuccessWithMetrics(r, startedAt)
	return result, nil
}

// process runs every stage up to the result set.
func (e *Executor) process(ctx context.Context, r *run) (*sieve.ResultSet, error) {
	raw, err := e.executeCorpus(ctx, r)
	if err != nil {
		return nil, err
	}

	words := Normalize(raw)
	r.result.CandidatesUnique = len(words)
	logger.WithExecution(r.execCtx).Debug("candidates normalized",
		slog.Int("loaded", len(raw)),
		slog.Int("unique", len(words)),
	)

	shaped, err := e.executeFilters(ctx, r, words)
	if err != nil {
		return nil, err
	}
	r.result.ShapeRejected = len(words) - len(shaped)

	meaningful, err := e.executeMeaning(ctx, r, shaped)
	if err != nil {
		return nil, err
	}
	r.result.MeaningRejected = len(shaped) - len(meaningful)

	resultSet, err := BuildResultSet(meaningful, r.pipeline.Grouping)
	if err != nil {
		r.result.Error = buildExecutionError(ErrCodeGroupingFailed, StageGrouping, err)
		return nil, fmt.Errorf("grouping results: %w", err)
	}
	return resultSet, nil
}

// fail records the failure in the result and logs the end of the run.
func (e *Executor) fail(r *run, startedAt time.Time, err error) (*sieve.ExecutionResult, error) {
	r.result.CompletedAt = time.Now()
	r.result.Status = StatusError
	r.result.WordsWritten = 0

	errCtx := logger.ErrorContext{
		PipelineID:   r.pipeline.ID,
		RunID:        r.result.RunID,
		ErrorMessage: err.Error(),
		Err:          err,
		Duration:     time.Since(startedAt),
	}
	if execErr := r.result.Error; execErr != nil {
		errCtx.Stage = execErr.Module
		errCtx.ErrorCode = execErr.Code
		errCtx.ErrorCategory = execErr.Category
		errCtx.Extra = map[string]interface{}{}
		for k, v := range execErr.Details {
			if k == "resource" {
				errCtx.Resource, _ = v.(string)
				continue
			}
			errCtx.Extra[k] = v
		}
	}
	logger.LogError("pipeline run failed", errCtx)
	logger.LogExecutionEnd(r.execCtx, StatusError, 0, time.Since(startedAt))
	return r.result, err
}

// validateExecution validates the pipeline and modules before execution.
func (e *Executor) validateExecution(pipeline *sieve.Pipeline, result *sieve.ExecutionResult) error {
	if pipeline == nil {
		logger.Error("pipeline execution failed: nil pipeline configuration")
		result.CompletedAt = time.Now()
		result.Error = buildExecutionError(ErrCodeInvalidInput, "", ErrNilPipeline)
		return ErrNilPipeline
	}

	if e.corpusModule == nil {
		logger.Error("pipeline execution failed: corpus module is nil",
			slog.String("pipeline_id", pipeline.ID))
		result.PipelineID = pipeline.ID
		result.CompletedAt = time.Now()
		result.Error = buildExecutionError(ErrCodeInvalidInput, StageCorpus, ErrNilCorpusModule)
		return ErrNilCorpusModule
	}

	if e.outputModule == nil {
		logger.Error("pipeline execution failed: output module is nil",
			slog.String("pipeline_id", pipeline.ID))
		result.PipelineID = pipeline.ID
		result.CompletedAt = time.Now()
		result.Error = buildExecutionError(ErrCodeInvalidInput, StageOutput, ErrNilOutputModule)
		return ErrNilOutputModule
	}

	return nil
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(pipelineID, moduleName string, m moduleCloser) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("pipeline_id", pipelineID),
			slog.String("module", moduleName),
			slog.String("error", err.Error()),
		)
	}
}

// closeAll releases every module still held by the executor.
func (e *Executor) closeAll(pipelineID string) {
	if e.corpusModule != nil {
		e.closeModule(pipelineID, StageCorpus, e.corpusModule)
		e.corpusModule = nil
	}
	if e.meaningModule != nil {
		e.closeModule(pipelineID, StageMeaning, e.meaningModule)
		e.meaningModule = nil
	}
	if e.outputModule != nil {
		e.closeModule(pipelineID, StageOutput, e.outputModule)
		e.outputModule = nil
	}
}

func (r *run) stage(name string) logger.ExecutionContext {
	sc := r.execCtx
	sc.Stage = name
	return sc
}

// executeCorpus loads the corpus and closes the corpus module right away.
func (e *Executor) executeCorpus(ctx context.Context, r *run) ([]string, error) {
	stageCtx := r.stage(StageCorpus)
	logger.LogStageStart(stageCtx)

	start := time.Now()
	raw, err := e.corpusModule.Load(ctx)
	r.timings.corpusDuration = time.Since(start)

	// Candidates stay in memory; the corpus resource is no longer needed.
	e.closeModule(r.pipeline.ID, StageCorpus, e.corpusModule)
	e.corpusModule = nil

	if err != nil {
		r.result.Error = buildExecutionError(ErrCodeCorpusFailed, StageCorpus, err)
		logger.LogStageEnd(stageCtx, 0, r.timings.corpusDuration, &logger.ExecutionError{
			Code:    ErrCodeCorpusFailed,
			Message: err.Error(),
		})
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	r.result.CandidatesLoaded = len(raw)
	logger.LogStageEnd(stageCtx, len(raw), r.timings.corpusDuration, nil)
	return raw, nil
}

// executeFilters runs all shape filter modules in sequence.
func (e *Executor) executeFilters(ctx context.Context, r *run, words []string) ([]string, error) {
	stageCtx := r.stage(StageFilter)
	logger.LogStageStart(stageCtx)
	start := time.Now()

	current := words
	for i, filterModule := range e.filterModules {
		if filterModule == nil {
			logger.Warn("nil filter module encountered; skipping",
				slog.String("pipeline_id", r.pipeline.ID),
				slog.String("stage", StageFilter),
				slog.Int("filter_index", i),
			)
			continue
		}

		filterStart := time.Now()
		next, err := filterModule.Process(ctx, current)
		filterDuration := time.Since(filterStart)

		if err != nil {
			r.timings.filterDuration = time.Since(start)
			errMsg := fmt.Sprintf("filter module %d failed: %v", i, err)
			r.result.Error = buildExecutionError(ErrCodeFilterFailed, StageFilter, err)
			r.result.Error.Message = errMsg
			if r.result.Error.Details == nil {
				r.result.Error.Details = map[string]interface{}{}
			}
			r.result.Error.Details["filterIndex"] = i
			logger.LogStageEnd(stageCtx, len(current), r.timings.filterDuration, &logger.ExecutionError{
				Code:    ErrCodeFilterFailed,
				Message: errMsg,
			})
			return nil, fmt.Errorf("executing filter module %d: %w", i, err)
		}

		filterCtx := stageCtx
		filterCtx.FilterIndex = i
		if i < len(r.pipeline.Filters) {
			filterCtx.ModuleType = r.pipeline.Filters[i].Type
		}
		logger.WithExecution(filterCtx).Debug("filter module completed",
			slog.Int("input_words", len(current)),
			slog.Int("output_words", len(next)),
			slog.Duration("duration", filterDuration),
		)
		current = next
	}

	r.timings.filterDuration = time.Since(start)
	logger.LogStageEnd(stageCtx, len(current), r.timings.filterDuration, nil)
	return current, nil
}

// executeMeaning keeps the words the oracle knows a sense for.
func (e *Executor) executeMeaning(ctx context.Context, r *run, words []string) ([]string, error) {
	if e.meaningModule == nil {
		return words, nil
	}

	stageCtx := r.stage(StageMeaning)
	logger.LogStageStart(stageCtx)

	start := time.Now()
	kept, err := e.meaningModule.Process(ctx, words)
	r.timings.meaningDuration = time.Since(start)
	r.queries = e.meaningModule.Queries()
	r.result.OracleQueries = r.queries

	if err != nil {
		r.result.Error = buildExecutionError(ErrCodeOracleFailed, StageMeaning, err)
		logger.LogStageEnd(stageCtx, len(words), r.timings.meaningDuration, &logger.ExecutionError{
			Code:    ErrCodeOracleFailed,
			Message: err.Error(),
		})
		return nil, fmt.Errorf("executing meaning stage: %w", err)
	}

	logger.LogStageEnd(stageCtx, len(kept), r.timings.meaningDuration, nil)
	return kept, nil
}

// artifactPather is implemented by outputs that write to a file.
type artifactPather interface {
	Path() string
}

// executeOutput writes the artifact, or builds a preview in dry-run mode.
func (e *Executor) executeOutput(ctx context.Context, r *run, rs *sieve.ResultSet) error {
	r.result.GroupsDropped = rs.DroppedGroups

	if e.dryRun {
		r.result.DryRunPreview = e.executeDryRunPreview(r, rs)
		e.recordCounts(r.result, rs)
		return nil
	}

	stageCtx := r.stage(StageOutput)
	logger.LogStageStart(stageCtx)

	start := time.Now()
	err := e.outputModule.Write(ctx, rs)
	r.timings.outputDuration = time.Since(start)

	if err != nil {
		r.result.Error = buildExecutionError(ErrCodeOutputFailed, StageOutput, err)
		logger.LogStageEnd(stageCtx, rs.Len(), r.timings.outputDuration, &logger.ExecutionError{
			Code:    ErrCodeOutputFailed,
			Message: err.Error(),
		})
		return fmt.Errorf("writing artifact: %w", err)
	}

	if p, ok := e.outputModule.(artifactPather); ok {
		r.result.ArtifactPath = p.Path()
	}
	e.recordCounts(r.result, rs)
	logger.LogStageEnd(stageCtx, rs.Len(), r.timings.outputDuration, nil)
	return nil
}

func (e *Executor) recordCounts(result *sieve.ExecutionResult, rs *sieve.ResultSet) {
	result.WordsWritten = rs.Len()
	if rs.Grouped {
		result.GroupsWritten = len(rs.Groups)
	}
}

// executeDryRunPreview describes the artifact that would have been written.
// Returns nil if the output module doesn't implement PreviewableModule.
func (e *Executor) executeDryRunPreview(r *run, rs *sieve.ResultSet) *sieve.ArtifactPreview {
	previewable, ok := e.outputModule.(output.PreviewableModule)
	if !ok {
		logger.Debug("output module does not implement PreviewableModule, skipping preview",
			slog.String("pipeline_id", r.pipeline.ID),
		)
		return nil
	}

	opts := output.PreviewOptions{}
	if r.pipeline.DryRunOptions != nil {
		opts.SampleLines = r.pipeline.DryRunOptions.SampleLines
	}

	preview, err := previewable.Preview(rs, opts)
	if err != nil {
		logger.Error("failed to generate dry-run preview",
			slog.String("pipeline_id", r.pipeline.ID),
			slog.Int("word_count", rs.Len()),
			slog.String("error", err.Error()),
		)
		// The run itself succeeded; the preview reports why it is missing.
		return &sieve.ArtifactPreview{
			Target: "[PREVIEW GENERATION FAILED]",
			Sample: []string{err.Error()},
		}
	}
	return preview
}

// finalizeSuccessWithMetrics marks the execution as successful and logs completion with detailed metrics.
func (e *Executor) finalizeSuccessWithMetrics(r *run, startedAt time.Time) {
	result := r.result
	result.Status = StatusSuccess
	result.CompletedAt = time.Now()
	result.Error = nil

	totalDuration := time.Since(startedAt)
	metrics := logger.ExecutionMetrics{
		TotalDuration:    totalDuration,
		CorpusDuration:   r.timings.corpusDuration,
		FilterDuration:   r.timings.filterDuration,
		MeaningDuration:  r.timings.meaningDuration,
		OutputDuration:   r.timings.outputDuration,
		CandidatesLoaded: result.CandidatesLoaded,
		CandidatesUnique: result.CandidatesUnique,
		ShapeRejected:    result.ShapeRejected,
		MeaningRejected:  result.MeaningRejected,
		OracleQueries:    r.queries,
		WordsWritten:     result.WordsWritten,
	}

	logger.LogExecutionEnd(r.execCtx, StatusSuccess, result.WordsWritten, totalDuration)
	logger.LogMetrics(r.execCtx, metrics)
}
