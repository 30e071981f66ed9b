// Package main provides the CLI entry point for the wordsieve runtime.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wordsieve/runtime/internal/cli"
	"github.com/wordsieve/runtime/internal/config"
	"github.com/wordsieve/runtime/internal/factory"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/internal/metrics"
	"github.com/wordsieve/runtime/internal/modules/output"
	"github.com/wordsieve/runtime/internal/registry"
	"github.com/wordsieve/runtime/internal/runtime"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitCode(code int) error {
	if code == cli.ExitSuccess {
		return nil
	}
	return &exitError{code: code}
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitRuntimeError
	}
	return cli.ExitSuccess
}

// app holds the flags and writers of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	verbose   bool
	quiet     bool
	logFormat string
	logFile   string

	// Run command flags
	dryRun      bool
	metricsFile string

	// Check command flags
	oracleType string
	oraclePath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "wordsieve",
		Short: "wordsieve - Declarative word filter pipelines",
		Long: `wordsieve runs declarative word filter pipelines.

A pipeline loads a corpus of candidate words, keeps the ones with the
configured shape (palindromes, consecutive letters, ...), checks that each
survivor has a recorded meaning in a lexical database, optionally groups
them and writes one sorted artifact.

Examples:
  # Validate a configuration file
  wordsieve validate palindromes.yaml

  # Run a pipeline
  wordsieve run palindromes.yaml

  # Preview the artifact without writing it
  wordsieve run --dry-run groups.toml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configureLogging,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.CloseLogFile()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "json", "Log format: json or human")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file")

	validateCmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a pipeline configuration file",
		Long: `Validate a pipeline configuration file against the schema.

JSON, YAML and TOML are supported. The format is detected from the file
extension or, failing that, from the content. Filter expressions and
scripts are compiled as part of the validation.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations, invalid filters)
  2 - Parse errors (invalid JSON/YAML/TOML syntax)`,
		Args: cobra.ExactArgs(1),
		RunE: a.runValidate,
	}

	runCmd := &cobra.Command{
		Use:   "run <config-file>...",
		Short: "Run one or more pipelines",
		Long: `Run the pipelines defined in the configuration files, in order.
The first failing pipeline stops the command.

Exit codes:
  0 - Every pipeline succeeded
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors (evaluation failures, cancellation)
  4 - Corpus or oracle resource unavailable
  5 - Artifact could not be written`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runPipelines,
	}
	runCmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Run every stage but only preview the artifact")
	runCmd.Flags().StringVar(&a.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")

	checkCmd := &cobra.Command{
		Use:   "check <word>...",
		Short: "Ask a meaning oracle about words",
		Long: `Load a meaning oracle and report whether each word has a recorded sense.

Examples:
  wordsieve check --oracle wordnet --path /usr/share/wordnet dog geese xyzzy
  wordsieve check --oracle sqlite --path lexicon.db noon`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runCheck,
	}
	checkCmd.Flags().StringVar(&a.oracleType, "oracle", "wordnet", "Oracle type")
	checkCmd.Flags().StringVar(&a.oraclePath, "path", "", "Oracle database path (directory for wordnet)")
	_ = checkCmd.MarkFlagRequired("path")

	modulesCmd := &cobra.Command{
		Use:   "modules",
		Short: "List registered module types",
		Args:  cobra.NoArgs,
		Run:   a.runModules,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run:   a.runVersion,
	}

	root.AddCommand(validateCmd, runCmd, checkCmd, modulesCmd, versionCmd)
	return root
}

func (a *app) configureLogging(_ *cobra.Command, _ []string) error {
	format, err := logger.ParseFormat(a.logFormat)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	} else if a.quiet {
		level = slog.LevelError
	}

	logger.SetOutput(a.stderr)
	if a.logFile != "" {
		return logger.SetLogFile(a.logFile, level, format)
	}
	logger.SetLevelAndFormat(level, format)
	return nil
}

// loadPipeline loads a configuration and reports its errors.
// It returns a non-zero exit code when the pipeline cannot be used.
func (a *app) loadPipeline(path string) (*sieve.Pipeline, *config.Result, int) {
	pipeline, result, err := config.NewLoader("").Load(path)
	if err == nil {
		return pipeline, result, cli.ExitSuccess
	}
	if result != nil && !result.IsValid() {
		cli.PrintConfigResult(a.stderr, result, a.verbose, a.quiet)
		return nil, result, cli.ExitCodeForResult(result)
	}
	fmt.Fprintf(a.stderr, "✗ Failed to convert configuration: %v\n", err)
	return nil, result, cli.ExitRuntimeError
}

func (a *app) runValidate(_ *cobra.Command, args []string) error {
	configPath := args[0]
	if !a.quiet {
		fmt.Fprintf(a.stdout, "Validating configuration: %s\n", configPath)
	}

	pipeline, result, code := a.loadPipeline(configPath)
	if code != cli.ExitSuccess {
		return exitCode(code)
	}

	if _, err := factory.CreateFilterModules(pipeline.Filters, pipeline.BaseDir); err != nil {
		cli.PrintSetupError(a.stderr, "filters", err)
		return exitCode(cli.ExitCodeFor(err))
	}

	if !a.quiet {
		fmt.Fprintf(a.stdout, "✓ Configuration is valid (format: %s)\n", result.Format)
		if a.verbose {
			fmt.Fprintf(a.stdout, "  Pipeline: %s (v%s)\n", pipeline.Name, pipeline.Version)
			if pipeline.Description != "" {
				fmt.Fprintf(a.stdout, "  Description: %s\n", pipeline.Description)
			}
		}
	}
	return nil
}

func (a *app) runPipelines(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	code := cli.ExitSuccess
	for _, configPath := range args {
		result, runCode := a.runOne(ctx, configPath)
		recorder.Observe(result)
		if runCode != cli.ExitSuccess {
			code = runCode
			break
		}
	}

	if a.metricsFile != "" {
		if err := recorder.WriteToTextfile(a.metricsFile); err != nil {
			fmt.Fprintf(a.stderr, "✗ %v\n", err)
			if code == cli.ExitSuccess {
				code = cli.ExitOutputError
			}
		}
	}
	return exitCode(code)
}

// runOne loads, builds and executes a single pipeline.
func (a *app) runOne(ctx context.Context, configPath string) (*sieve.ExecutionResult, int) {
	pipeline, _, code := a.loadPipeline(configPath)
	if code != cli.ExitSuccess {
		return nil, code
	}

	// A stdout artifact owns stdout; progress and the summary move to stderr.
	summary := a.stdout
	if pipeline.Output != nil && pipeline.Output.Type == output.TypeStdout {
		summary = a.stderr
	}

	if !a.quiet {
		fmt.Fprintf(summary, "Loaded pipeline configuration: %s\n", configPath)
		if a.verbose {
			fmt.Fprintf(summary, "  Pipeline: %s (v%s)\n", pipeline.Name, pipeline.Version)
		}
	}

	modules, stage, err := buildModules(ctx, pipeline, a.stdout)
	if err != nil {
		cli.PrintSetupError(a.stderr, stage, err)
		return nil, cli.ExitCodeFor(err)
	}

	executor := runtime.NewExecutorWithModules(modules, a.dryRun)
	result, err := executor.ExecuteWithContext(ctx, pipeline)
	if err != nil {
		cli.PrintRunError(a.stderr, result, err)
		return result, cli.ExitCodeFor(err)
	}

	cli.PrintExecutionResult(summary, result, cli.OutputOptions{
		Verbose: a.verbose,
		Quiet:   a.quiet,
		DryRun:  a.dryRun,
	})
	return result, cli.ExitSuccess
}

// buildModules creates every module of a pipeline. Filters are built first
// so configuration mistakes surface before the oracle is loaded. It returns
// the stage that failed along with the error. A stdout artifact goes to stdout.
func buildModules(ctx context.Context, pipeline *sieve.Pipeline, stdout io.Writer) (runtime.Modules, string, error) {
	var modules runtime.Modules

	filters, err := factory.CreateFilterModules(pipeline.Filters, pipeline.BaseDir)
	if err != nil {
		return modules, runtime.StageFilter, err
	}
	modules.Filters = filters

	meaning, err := factory.CreateMeaningModule(ctx, pipeline.Meaning, pipeline.BaseDir)
	if err != nil {
		return modules, "meaning oracle", err
	}
	if meaning != nil {
		modules.Meaning = meaning
	}

	closeMeaning := func() {
		if meaning != nil {
			_ = meaning.Close()
		}
	}

	if modules.Corpus, err = factory.CreateCorpusModule(pipeline.Corpus, pipeline.BaseDir); err != nil {
		closeMeaning()
		return runtime.Modules{}, runtime.StageCorpus, err
	}
	if modules.Output, err = factory.CreateOutputModule(pipeline.Output, pipeline.BaseDir); err != nil {
		closeMeaning()
		return runtime.Modules{}, runtime.StageOutput, err
	}
	if so, ok := modules.Output.(*output.StdoutOutput); ok {
		so.SetWriter(stdout)
	}
	return modules, "", nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	key := "path"
	if a.oracleType == "wordnet" {
		key = "dir"
	}
	cfg := &sieve.ModuleConfig{Type: a.oracleType, Config: map[string]interface{}{key: a.oraclePath}}

	o, err := factory.LoadOracle(cmd.Context(), cfg, "")
	if err != nil {
		cli.PrintSetupError(a.stderr, "oracle", err)
		return exitCode(cli.ExitCodeFor(err))
	}
	if o == nil {
		fmt.Fprintf(a.stderr, "✗ Oracle %q answers no queries\n", a.oracleType)
		return exitCode(cli.ExitValidationError)
	}
	defer func() {
		if closeErr := o.Close(); closeErr != nil {
			logger.Warn("failed to close oracle", slog.String("error", closeErr.Error()))
		}
	}()

	words := runtime.Normalize(args)
	meaning := make([]bool, len(words))
	for i, word := range words {
		ok, err := o.HasMeaning(cmd.Context(), word)
		if err != nil {
			fmt.Fprintf(a.stderr, "✗ Oracle query failed for %q: %v\n", word, err)
			return exitCode(cli.ExitResourceError)
		}
		meaning[i] = ok
	}
	cli.PrintMeaningTable(a.stdout, words, meaning)
	return nil
}

func (a *app) runModules(_ *cobra.Command, _ []string) {
	kinds := []string{"corpus", "filter", "oracle", "output"}
	cli.PrintModuleTypes(a.stdout, kinds, map[string][]string{
		"corpus": registry.ListCorpusTypes(),
		"filter": registry.ListFilterTypes(),
		"oracle": registry.ListOracleTypes(),
		"output": registry.ListOutputTypes(),
	})
}

func (a *app) runVersion(_ *cobra.Command, _ []string) {
	fmt.Fprintf(a.stdout, "Version: %s\n", version)
	fmt.Fprintf(a.stdout, "Commit: %s\n", commit)
	fmt.Fprintf(a.stdout, "Build Date: %s\n", buildDate)
}
