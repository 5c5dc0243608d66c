package shader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingExecutable = errors.New("missing compiler executable")
	ErrUnrecognizedStage = errors.New("unrecognized shader stage")
	ErrCompilation       = errors.New("shader compilation failed")
	ErrFilesystem        = errors.New("filesystem error")
	ErrInvalidConfig     = errors.New("invalid build config")
)

// MissingExecutableError reports a compiler that could not be launched.
type MissingExecutableError struct {
	Path  string
	Cause error
}

func (e *MissingExecutableError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMissingExecutable, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrMissingExecutable, e.Path)
}

func (e *MissingExecutableError) Is(target error) bool { return target == ErrMissingExecutable }

func (e *MissingExecutableError) Unwrap() error { return e.Cause }

// UnrecognizedStageError reports an annotation naming a stage outside the
// entry-point table. Stage holds the name exactly as written in the source.
type UnrecognizedStageError struct {
	Shader string
	Stage  string
}

func (e *UnrecognizedStageError) Error() string {
	if e == nil {
		return ""
	}
	if s, ok := suggestStage(e.Stage); ok {
		return fmt.Sprintf("%s %q in shader %s (stage names are lower case; did you mean %q?)",
			ErrUnrecognizedStage, e.Stage, e.Shader, s)
	}
	return fmt.Sprintf("%s %q in shader %s (expected one of %s)",
		ErrUnrecognizedStage, e.Stage, e.Shader, joinStages(Stages()))
}

func (e *UnrecognizedStageError) Is(target error) bool { return target == ErrUnrecognizedStage }

// CompilationError reports a compiler run that exited non-zero.
type CompilationError struct {
	Shader   string
	Stage    Stage
	ExitCode int
	Stderr   []byte
}

func (e *CompilationError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: shader=%s stage=%s exit=%d", ErrCompilation, e.Shader, e.Stage, e.ExitCode)
	if detail := strings.TrimSpace(string(e.Stderr)); detail != "" {
		msg += ": " + detail
	}
	return msg
}

func (e *CompilationError) Is(target error) bool { return target == ErrCompilation }

// FilesystemError reports a failure to read sources or prepare outputs.
type FilesystemError struct {
	Op    string
	Path  string
	Cause error
}

func (e *FilesystemError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrFilesystem, e.Op, e.Path, e.Cause)
}

func (e *FilesystemError) Is(target error) bool { return target == ErrFilesystem }

func (e *FilesystemError) Unwrap() error { return e.Cause }

func fsError(op, path string, err error) error {
	return &FilesystemError{Op: op, Path: path, Cause: err}
}

func joinStages(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}
