// Package shader discovers Slang shader sources, resolves the stages each
// one declares, and compiles every stage with an external compiler.
//
// A build is strictly sequential and fail-fast: the first compiler failure,
// unknown stage or filesystem error aborts the whole run. Artifacts written
// before the failure are left in place.
package shader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"shaderbuild/internal/trace"
)

// Invoker runs a single compiler job. *Compiler is the production
// implementation.
type Invoker interface {
	Compile(ctx context.Context, job CompileJob) (*CompileResult, error)
}

// Builder compiles every stage of every shader source described by Config.
type Builder struct {
	Config Config

	// Compiler runs compile jobs. Defaults to a *Compiler for Config.CompilerPath.
	Compiler Invoker

	// Trace receives one event per build decision. Nil records nothing.
	Trace trace.Sink
}

// NewBuilder creates a Builder that invokes the compiler at cfg.CompilerPath.
func NewBuilder(cfg Config) *Builder {
	return &Builder{
		Config:   cfg,
		Compiler: NewCompiler(cfg.CompilerPath),
		Trace:    trace.NopSink{},
	}
}

// BuildShaders runs a full build with the default compiler and no trace.
func BuildShaders(ctx context.Context, cfg Config) (*BuildResult, error) {
	return NewBuilder(cfg).Build(ctx)
}

// Build runs the build.
//
// The flow:
//  1. Validate config and create the output directory
//  2. Discover sources, sorted by name
//  3. Per source: resolve stages, then compile each stage in order
//  4. Record the sorted stages built per shader
//
// The returned result is nil whenever err is non-nil.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	cfg := b.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if b.Compiler == nil {
		b.Compiler = NewCompiler(cfg.CompilerPath)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fsError("mkdir", cfg.OutputDir, err)
	}

	sources, err := DiscoverSources(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	cfg.logf("found %d shader source(s) in %s", len(sources), cfg.SourceDir)

	result := newBuildResult(filepath.Base(cfg.RootDir))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}
		if err := b.buildSource(ctx, src, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// buildSource compiles every declared stage of src and records the outcome
// in result.
func (b *Builder) buildSource(ctx context.Context, src Source, result *BuildResult) error {
	cfg := b.Config

	content, err := os.ReadFile(src.Path)
	if err != nil {
		return fsError("read", src.Path, err)
	}

	// Resolve every annotation before compiling anything for this file.
	stages, err := ResolveStages(src.Name, content)
	if err != nil {
		return err
	}
	if len(stages) == 0 {
		trace.SafeRecord(b.Trace, trace.Event{Kind: trace.EventShaderEmpty, Shader: src.Name})
	}

	built := make([]Stage, 0, len(stages))
	compiled := make(map[Stage]bool, len(stages))
	var kept []Stage
	for _, stage := range stages {
		out := ArtifactPath(cfg.OutputDir, src.Name, stage)

		// A repeated annotation recompiles; the artifact it just wrote is not
		// evidence of freshness.
		if cfg.IncrementalBuild && !compiled[stage] {
			fresh, err := upToDate(src.ModTime, out, cfg.StaleWindow)
			if err != nil {
				return err
			}
			if fresh {
				cfg.logf("%s %s is up to date", src.Name, stage)
				trace.SafeRecord(b.Trace, trace.Event{
					Kind:     trace.EventStageUpToDate,
					Shader:   src.Name,
					Stage:    string(stage),
					Reason:   "ArtifactFresh",
					Artifact: filepath.Base(out),
				})
				kept = append(kept, stage)
				continue
			}
		}

		if err := b.compileStage(ctx, src, stage, out); err != nil {
			return err
		}
		built = append(built, stage)
		compiled[stage] = true
	}

	set(result.Shaders, src.Name, built)
	if len(kept) > 0 {
		set(result.UpToDate, src.Name, kept)
	}
	return nil
}

func (b *Builder) compileStage(ctx context.Context, src Source, stage Stage, out string) error {
	cfg := b.Config

	// stage came from ResolveStages, so the lookup cannot miss.
	entry, _ := stage.EntryPoint()

	fmt.Fprintf(cfg.progress(), "Building %s %s shader...\n", src.Name, stage)

	res, err := b.Compiler.Compile(ctx, CompileJob{
		Source:     src.Path,
		EntryPoint: entry,
		Stage:      stage,
		Target:     cfg.Target,
		Output:     out,
	})
	if err != nil {
		trace.SafeRecord(b.Trace, trace.Event{
			Kind:   trace.EventStageFailed,
			Shader: src.Name,
			Stage:  string(stage),
			Reason: "CompilerError",
		})
		return err
	}

	if len(res.Stdout) > 0 {
		cfg.logf("%s %s stdout:\n%s", src.Name, stage, res.Stdout)
	}
	if len(res.Stderr) > 0 {
		cfg.logf("%s %s stderr:\n%s", src.Name, stage, res.Stderr)
	}

	if res.ExitCode != 0 {
		trace.SafeRecord(b.Trace, trace.Event{
			Kind:   trace.EventStageFailed,
			Shader: src.Name,
			Stage:  string(stage),
			Reason: "NonZeroExit",
		})
		return &CompilationError{
			Shader:   src.Name,
			Stage:    stage,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	trace.SafeRecord(b.Trace, trace.Event{
		Kind:     trace.EventStageCompiled,
		Shader:   src.Name,
		Stage:    string(stage),
		Artifact: filepath.Base(out),
	})
	return nil
}
