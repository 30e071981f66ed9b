package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/wordsieve/runtime/pkg/sieve"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// ColumnAlignment selects the alignment of a table column.
type ColumnAlignment int

// Column alignments
const (
	AlignLeft ColumnAlignment = iota
	AlignRight
)

// RenderTable renders rows as a rounded table. Missing cells are left blank.
func RenderTable(headers []string, rows [][]string, aligns []ColumnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// PrintExecutionResult displays a successful pipeline execution.
func PrintExecutionResult(w io.Writer, result *sieve.ExecutionResult, opts OutputOptions) {
	if result == nil || opts.Quiet {
		return
	}

	fmt.Fprintln(w, "✓ Pipeline executed successfully")
	rows := [][]string{
		{"Candidates loaded", strconv.Itoa(result.CandidatesLoaded)},
		{"Unique candidates", strconv.Itoa(result.CandidatesUnique)},
		{"Rejected by shape", strconv.Itoa(result.ShapeRejected)},
		{"Rejected by meaning", strconv.Itoa(result.MeaningRejected)},
		{"Words written", strconv.Itoa(result.WordsWritten)},
	}
	if result.GroupsWritten > 0 || result.GroupsDropped > 0 {
		rows = append(rows,
			[]string{"Groups written", strconv.Itoa(result.GroupsWritten)},
			[]string{"Groups dropped", strconv.Itoa(result.GroupsDropped)},
		)
	}
	if opts.Verbose {
		rows = append(rows,
			[]string{"Oracle queries", strconv.Itoa(result.OracleQueries)},
			[]string{"Run ID", result.RunID},
			[]string{"Duration", result.CompletedAt.Sub(result.StartedAt).String()},
		)
	}
	fmt.Fprintln(w, RenderTable([]string{"Metric", "Value"}, rows, []ColumnAlignment{AlignLeft, AlignRight}))

	if result.ArtifactPath != "" {
		fmt.Fprintf(w, "  Artifact: %s\n", result.ArtifactPath)
	}
	if opts.DryRun && result.DryRunPreview != nil {
		PrintDryRunPreview(w, result.DryRunPreview)
	}
}

// PrintDryRunPreview displays the artifact that dry-run mode did not write.
func PrintDryRunPreview(w io.Writer, preview *sieve.ArtifactPreview) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dry-Run Preview (what would have been written):")
	fmt.Fprintf(w, "  Target: %s\n", preview.Target)
	fmt.Fprintf(w, "  Layout: %s\n", preview.Layout)
	fmt.Fprintf(w, "  Size: %d bytes, %d lines\n", preview.Bytes, preview.Lines)
	if len(preview.Sample) > 0 {
		fmt.Fprintln(w, "  Sample:")
		for _, line := range preview.Sample {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if preview.Lines > len(preview.Sample) {
			fmt.Fprintf(w, "    ... (%d more lines)\n", preview.Lines-len(preview.Sample))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "No artifact was written (dry-run mode)")
}

// PrintModuleTypes lists registered module types per kind, in kind order.
func PrintModuleTypes(w io.Writer, kinds []string, types map[string][]string) {
	rows := make([][]string, 0)
	for _, kind := range kinds {
		for _, t := range types[kind] {
			rows = append(rows, []string{kind, t})
		}
	}
	fmt.Fprintln(w, RenderTable([]string{"Kind", "Type"}, rows, nil))
}

// PrintMeaningTable lists oracle answers for words.
func PrintMeaningTable(w io.Writer, words []string, meaning []bool) {
	rows := make([][]string, len(words))
	for i, word := range words {
		answer := "no"
		if i < len(meaning) && meaning[i] {
			answer = "yes"
		}
		rows[i] = []string{word, answer}
	}
	fmt.Fprintln(w, RenderTable([]string{"Word", "Has meaning"}, rows, nil))
}
