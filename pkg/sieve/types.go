// Package sieve provides public types for word filter pipelines.
// This package is intended to be importable by external projects that need
// to describe or inspect wordsieve runs.
package sieve

import "time"

// Pipeline represents a complete word filter pipeline configuration.
// A pipeline loads a corpus, applies shape filters, checks meaning against
// an oracle, optionally groups the survivors and writes one artifact.
type Pipeline struct {
	// ID is the unique identifier for this pipeline
	ID string `json:"id"`

	// Name is the human-readable name of the pipeline
	Name string `json:"name"`

	// Description provides additional context about the pipeline
	Description string `json:"description,omitempty"`

	// Version is the pipeline configuration version
	Version string `json:"version"`

	// Corpus defines the source of candidate words
	Corpus *ModuleConfig `json:"corpus"`

	// Filters is an ordered list of shape predicate modules
	Filters []ModuleConfig `json:"filters,omitempty"`

	// Meaning defines the meaning oracle; nil disables the meaning stage
	Meaning *ModuleConfig `json:"meaning,omitempty"`

	// Grouping buckets the result by a derived key; nil produces a flat result
	Grouping *Grouping `json:"grouping,omitempty"`

	// Output defines the artifact destination
	Output *ModuleConfig `json:"output"`

	// DryRunOptions configures dry-run mode behavior
	DryRunOptions *DryRunOptions `json:"dryRunOptions,omitempty"`

	// BaseDir is the directory relative paths in module configs resolve against.
	// It is set from the configuration file location and never serialized.
	BaseDir string `json:"-"`
}

// ModuleConfig represents the configuration for a pipeline module.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "wordlist", "palindrome", "file")
	Type string `json:"type"`

	// Config contains the module-specific configuration
	Config map[string]interface{} `json:"config,omitempty"`
}

// Group key functions.
const (
	GroupByFirstLetter = "firstLetter"
	GroupByLastLetter  = "lastLetter"
)

// Grouping configures grouped output.
type Grouping struct {
	// Key is the group key function ("firstLetter" or "lastLetter")
	Key string `json:"key"`

	// MinSize drops groups with fewer members (1 keeps every group)
	MinSize int `json:"minSize,omitempty"`
}

// DryRunOptions configures dry-run mode behavior.
type DryRunOptions struct {
	// SampleLines is the number of artifact lines shown in the preview
	SampleLines int `json:"sampleLines,omitempty"`
}

// Group is one bucket of a grouped result.
type Group struct {
	Key   string   `json:"key"`
	Words []string `json:"words"`
}

// ResultSet is the sorted, deduplicated outcome of a pipeline run.
// It is immutable once produced by the runtime.
type ResultSet struct {
	// Words holds every qualifying word in sorted order
	Words []string `json:"words"`

	// Grouped reports whether Groups is the artifact layout
	Grouped bool `json:"grouped"`

	// Groups holds the kept groups in key order (only when Grouped)
	Groups []Group `json:"groups,omitempty"`

	// DroppedGroups counts groups removed by the minimum size threshold
	DroppedGroups int `json:"droppedGroups,omitempty"`
}

// Len returns the number of words the artifact will contain.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	if !r.Grouped {
		return len(r.Words)
	}
	n := 0
	for _, g := range r.Groups {
		n += len(g.Words)
	}
	return n
}

// ExecutionResult represents the result of a pipeline execution.
type ExecutionResult struct {
	// PipelineID is the ID of the executed pipeline
	PipelineID string `json:"pipelineId"`

	// RunID uniquely identifies this execution
	RunID string `json:"runId"`

	// Status is the execution status ("success", "error")
	Status string `json:"status"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// CandidatesLoaded is the number of raw corpus entries
	CandidatesLoaded int `json:"candidatesLoaded"`

	// CandidatesUnique is the number of distinct normalized candidates
	CandidatesUnique int `json:"candidatesUnique"`

	// ShapeRejected counts candidates removed by shape filters
	ShapeRejected int `json:"shapeRejected"`

	// MeaningRejected counts candidates the oracle found no sense for
	MeaningRejected int `json:"meaningRejected"`

	// OracleQueries is the number of meaning oracle lookups
	OracleQueries int `json:"oracleQueries,omitempty"`

	// WordsWritten is the number of words in the artifact
	WordsWritten int `json:"wordsWritten"`

	// GroupsWritten is the number of group lines in a grouped artifact
	GroupsWritten int `json:"groupsWritten,omitempty"`

	// GroupsDropped is the number of groups below the minimum size
	GroupsDropped int `json:"groupsDropped,omitempty"`

	// ArtifactPath is where the artifact was written (empty for stdout or dry-run)
	ArtifactPath string `json:"artifactPath,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`

	// DryRunPreview shows what would have been written (only set in dry-run mode)
	DryRunPreview *ArtifactPreview `json:"dryRunPreview,omitempty"`
}

// ArtifactPreview describes an artifact that dry-run mode did not write.
type ArtifactPreview struct {
	// Target is the destination that would have been written
	Target string `json:"target"`

	// Layout is "flat" or "grouped"
	Layout string `json:"layout"`

	// Bytes is the artifact size
	Bytes int `json:"bytes"`

	// Lines is the number of artifact lines
	Lines int `json:"lines"`

	// Sample holds the first lines of the artifact, truncated for display
	Sample []string `json:"sample,omitempty"`
}

// ExecutionError contains details about an execution failure.
type ExecutionError struct {
	// Code is the error code
	Code string `json:"code"`

	// Category is the error classification (resource_unavailable, io, ...)
	Category string `json:"category,omitempty"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Module is the stage where the error occurred
	Module string `json:"module,omitempty"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`
}
