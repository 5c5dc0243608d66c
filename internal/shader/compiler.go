package shader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CompileJob is one compiler invocation for a single (shader, stage) pair.
type CompileJob struct {
	Source     string
	EntryPoint string
	Stage      Stage
	Target     string
	Output     string
}

// Args returns the compiler argument list for the job.
func (j CompileJob) Args() []string {
	return []string{
		j.Source,
		"-entry", j.EntryPoint,
		"-stage", string(j.Stage),
		"-target", j.Target,
		"-o", j.Output,
	}
}

// CompileResult holds the outcome of a finished compiler process.
type CompileResult struct {
	Stdout []byte
	Stderr []byte

	// ExitCode is the process exit code; 0 is success.
	ExitCode int
}

// Compiler runs an external shader compiler as a blocking subprocess.
type Compiler struct {
	// Path is the compiler executable.
	Path string
}

// NewCompiler creates a Compiler for the executable at path.
func NewCompiler(path string) *Compiler {
	return &Compiler{Path: path}
}

// Compile runs the compiler for job and waits for it to exit.
//
// A non-zero exit is not an error here; the caller decides what it means.
// A process that cannot be started returns a MissingExecutableError.
// Cancelling ctx kills the process.
func (c *Compiler) Compile(ctx context.Context, job CompileJob) (*CompileResult, error) {
	if c == nil || c.Path == "" {
		return nil, &MissingExecutableError{Path: "", Cause: errors.New("compiler path is empty")}
	}

	cmd := exec.CommandContext(ctx, c.Path, job.Args()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("compilation cancelled: %w", ctxErr)
		}
		return nil, &MissingExecutableError{Path: c.Path, Cause: err}
	}

	exitCode, err := exitStatus(ctx, cmd.Wait())
	if err != nil {
		return nil, err
	}

	return &CompileResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

// exitStatus interprets the error from Wait. A process that exited on its
// own is reported by its exit code even if ctx was cancelled afterwards.
func exitStatus(ctx context.Context, waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("compilation cancelled: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return 0, fmt.Errorf("waiting for compiler: %w", waitErr)
	}
	return exitErr.ExitCode(), nil
}
