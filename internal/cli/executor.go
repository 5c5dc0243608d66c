package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"shaderbuild/internal/shader"
	"shaderbuild/internal/trace"
)

// Streams are the process streams a run writes to.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultStreams returns the process stdout and stderr.
func DefaultStreams() Streams {
	return Streams{Stdout: os.Stdout, Stderr: os.Stderr}
}

type CLIResult struct {
	ExitCode int
	Build    *shader.BuildResult
}

// Execute runs a canonical invocation against the process streams.
func Execute(ctx context.Context, inv CLIInvocation) (CLIResult, error) {
	return ExecuteWithStreams(ctx, inv, DefaultStreams())
}

// ExecuteWithStreams maps a canonical CLIInvocation to a shader build.
//
// Responsibilities:
//   - Wire progress and verbose logging to the given streams.
//   - Record a build trace and write it even when the build fails.
//   - Write the JSON report on success.
//   - Translate build outcomes to semantic exit codes.
func ExecuteWithStreams(ctx context.Context, inv CLIInvocation, streams Streams) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if streams.Stdout == nil {
		streams.Stdout = io.Discard
	}
	if streams.Stderr == nil {
		streams.Stderr = io.Discard
	}

	cfg := inv.BuildConfig()
	if !inv.Quiet {
		cfg.Progress = streams.Stdout
		// stdout carries the report, which must stay parseable.
		if inv.Report.Enabled && inv.Report.Path == "-" {
			cfg.Progress = streams.Stderr
		}
	}
	if inv.Verbose {
		cfg.Logger = log.New(streams.Stderr, "shaderbuild: ", 0)
	}

	rec := trace.NewRecorder()
	builder := shader.NewBuilder(cfg)
	builder.Trace = rec

	defer func() {
		if !inv.Trace.Enabled {
			return
		}
		if err := writeTrace(inv.Trace.Path, rec.Trace(filepath.Base(inv.RootDir))); err != nil && execErr == nil {
			res.ExitCode = ExitConfigError
			execErr = fmt.Errorf("writing trace: %w", err)
		}
	}()

	result, err := builder.Build(ctx)
	if err != nil {
		res.ExitCode = ExitCode(err)
		return res, err
	}
	res.Build = result
	if cfg.Logger != nil {
		stages := 0
		for _, name := range result.ShaderNames() {
			stages += len(result.Shaders[name])
		}
		cfg.Logger.Printf("built %d stage(s) across %d shader(s)", stages, len(result.Shaders))
	}

	if inv.Report.Enabled {
		if err := writeReport(inv.Report.Path, result, streams.Stdout); err != nil {
			res.ExitCode = ExitConfigError
			return res, fmt.Errorf("writing report: %w", err)
		}
	}

	res.ExitCode = ExitSuccess
	return res, nil
}

func writeReport(path string, result *shader.BuildResult, stdout io.Writer) error {
	b, err := result.MarshalJSON()
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(path, b, 0o644)
}

// writeTrace writes the canonical trace to path and its digest to
// path + ".sha256".
func writeTrace(path string, t trace.BuildTrace) error {
	b, err := t.CanonicalJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := writeFileAtomic(path, b, 0o644); err != nil {
		return err
	}
	return writeFileAtomic(path+".sha256", []byte(trace.ComputeHash(b)+"\n"), 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
