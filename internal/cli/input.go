package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"shaderbuild/internal/shader"
)

const (
	ExitSuccess           = 0
	ExitBuildFailure      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// OutputConfig names an optional output file. Path "-" means stdout.
type OutputConfig struct {
	Enabled bool
	Path    string
}

// CLIInvocation is the fully canonicalized description of a build run.
//
// All paths are normalized (Clean) and relative paths are resolved against
// RootDir, which is required and must be absolute. Nothing depends on the
// process working directory or the install location of the binary.
type CLIInvocation struct {
	RootDir      string
	SourceDir    string
	OutputDir    string
	CompilerPath string
	Target       string

	Incremental bool
	StaleWindow time.Duration

	Report OutputConfig
	Trace  OutputConfig

	Quiet   bool
	Verbose bool
}

// BuildConfig converts the invocation into a shader build config. Progress
// and logging writers are left for the caller to attach.
func (inv CLIInvocation) BuildConfig() shader.Config {
	return shader.Config{
		RootDir:          inv.RootDir,
		SourceDir:        inv.SourceDir,
		OutputDir:        inv.OutputDir,
		CompilerPath:     inv.CompilerPath,
		Target:           inv.Target,
		IncrementalBuild: inv.Incremental,
		StaleWindow:      inv.StaleWindow,
	}
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a canonical CLIInvocation.
//
// Unset directory flags fall back to shader.DefaultConfig for the root.
// Environment variables are never consulted.
func ParseInvocation(args []string) (CLIInvocation, error) {
	fs := flag.NewFlagSet("shaderbuild", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var rootDir, sourceDir, outputDir, compilerPath, target string
	var reportPath, tracePath string
	var incremental, quiet, verbose bool
	var staleWindow time.Duration

	fs.StringVar(&rootDir, "root", "", "Absolute build root. Required.")
	fs.StringVar(&sourceDir, "src", "", "Shader source directory (default <root>/../shaders/src).")
	fs.StringVar(&outputDir, "out", "", "Artifact output directory (default <root>/shaders).")
	fs.StringVar(&compilerPath, "compiler", "", "Compiler executable (default <root>/slangc).")
	fs.StringVar(&target, "target", shader.DefaultTarget, "Compiler target format.")
	fs.BoolVar(&incremental, "incremental", false, "Skip stages whose artifact is up to date.")
	fs.DurationVar(&staleWindow, "stale-window", shader.DefaultStaleWindow, "Staleness tolerance for -incremental.")
	fs.StringVar(&reportPath, "report", "", "Write the JSON build report to this path ('-' for stdout).")
	fs.StringVar(&tracePath, "trace", "", "Write the build trace to this path (optional).")
	fs.BoolVar(&quiet, "quiet", false, "Suppress per-stage progress lines.")
	fs.BoolVar(&verbose, "v", false, "Log compiler output to stderr.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return CLIInvocation{}, err
		}
		return CLIInvocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return CLIInvocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	if strings.TrimSpace(rootDir) == "" {
		return CLIInvocation{}, invalidInvocationf("--root is required")
	}
	rootDir = filepath.Clean(rootDir)
	if !filepath.IsAbs(rootDir) {
		return CLIInvocation{}, invalidInvocationf("--root must be an absolute path (got %q)", rootDir)
	}
	if strings.TrimSpace(target) == "" {
		return CLIInvocation{}, invalidInvocationf("--target must not be empty")
	}
	if staleWindow < 0 {
		return CLIInvocation{}, invalidInvocationf("--stale-window must not be negative (got %s)", staleWindow)
	}

	defaults := shader.DefaultConfig(rootDir)
	inv := CLIInvocation{
		RootDir:     rootDir,
		Target:      strings.TrimSpace(target),
		Incremental: incremental,
		StaleWindow: staleWindow,
		Quiet:       quiet,
		Verbose:     verbose,
	}

	var err error
	if inv.SourceDir, err = resolveOrDefault(rootDir, sourceDir, defaults.SourceDir); err != nil {
		return CLIInvocation{}, err
	}
	if inv.OutputDir, err = resolveOrDefault(rootDir, outputDir, defaults.OutputDir); err != nil {
		return CLIInvocation{}, err
	}
	if inv.CompilerPath, err = resolveOrDefault(rootDir, compilerPath, defaults.CompilerPath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.Report, err = parseOutput(rootDir, reportPath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.Trace, err = parseOutput(rootDir, tracePath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.Trace.Path == "-" {
		return CLIInvocation{}, invalidInvocationf("--trace must name a file")
	}

	return inv, nil
}

func resolveOrDefault(rootDir, p, fallback string) (string, error) {
	if p == "" {
		return fallback, nil
	}
	return resolveUnderRoot(rootDir, p)
}

func parseOutput(rootDir, p string) (OutputConfig, error) {
	p = strings.TrimSpace(p)
	switch p {
	case "":
		return OutputConfig{}, nil
	case "-":
		return OutputConfig{Enabled: true, Path: "-"}, nil
	}
	resolved, err := resolveUnderRoot(rootDir, p)
	if err != nil {
		return OutputConfig{}, err
	}
	return OutputConfig{Enabled: true, Path: resolved}, nil
}

func resolveUnderRoot(rootDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", invalidInvocationf("path must not be empty")
	}
	clean := filepath.Clean(p)
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	// rootDir is absolute, so Join does not consult the process CWD.
	return filepath.Join(rootDir, clean), nil
}

// ExitCode maps an error from ParseInvocation or Execute to a semantic exit
// code. Unknown errors map to ExitInternalError.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	switch {
	case errors.Is(err, shader.ErrCompilation), errors.Is(err, shader.ErrUnrecognizedStage):
		return ExitBuildFailure
	case errors.Is(err, shader.ErrMissingExecutable), errors.Is(err, shader.ErrFilesystem), errors.Is(err, shader.ErrInvalidConfig):
		return ExitConfigError
	}
	return ExitInternalError
}
