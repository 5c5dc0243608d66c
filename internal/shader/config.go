package shader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTarget is the compiler output format.
	DefaultTarget = "spirv"

	// DefaultStaleWindow is how close an artifact's mtime may trail its
	// source's mtime and still count as up to date.
	DefaultStaleWindow = 60 * time.Second

	// CompilerName is the compiler executable expected under the root.
	CompilerName = "slangc"
)

// Config describes one build. All paths must be absolute.
type Config struct {
	// RootDir is the build root. Its base name is reported as metadata.
	RootDir string

	SourceDir    string
	OutputDir    string
	CompilerPath string

	// Target is passed to the compiler's -target flag.
	Target string

	// IncrementalBuild enables the staleness check. Off by default: every
	// discovered stage is rebuilt.
	IncrementalBuild bool
	StaleWindow      time.Duration

	// Progress receives one line per compiler invocation. Nil discards.
	Progress io.Writer

	// Logger receives verbose diagnostics such as compiler output. Nil discards.
	Logger *log.Logger
}

// DefaultConfig returns the conventional layout for root:
//
//	<root>/../shaders/src/*.slang   sources
//	<root>/shaders/                 outputs
//	<root>/slangc                   compiler
func DefaultConfig(root string) Config {
	root = filepath.Clean(root)
	return Config{
		RootDir:      root,
		SourceDir:    filepath.Join(filepath.Dir(root), "shaders", "src"),
		OutputDir:    filepath.Join(root, "shaders"),
		CompilerPath: filepath.Join(root, CompilerName),
		Target:       DefaultTarget,
		StaleWindow:  DefaultStaleWindow,
	}
}

// Validate checks that the config is complete and every path is absolute.
func (c Config) Validate() error {
	paths := []struct {
		flag, value string
	}{
		{"root", c.RootDir},
		{"source dir", c.SourceDir},
		{"output dir", c.OutputDir},
		{"compiler path", c.CompilerPath},
	}
	for _, p := range paths {
		if strings.TrimSpace(p.value) == "" {
			return fmt.Errorf("%s is required", p.flag)
		}
		if !filepath.IsAbs(p.value) {
			return fmt.Errorf("%s must be an absolute path (got %q)", p.flag, p.value)
		}
	}
	if strings.TrimSpace(c.Target) == "" {
		return errors.New("target is required")
	}
	if c.IncrementalBuild && c.StaleWindow < 0 {
		return fmt.Errorf("stale window must not be negative (got %s)", c.StaleWindow)
	}
	return nil
}

func (c Config) progress() io.Writer {
	if c.Progress == nil {
		return io.Discard
	}
	return c.Progress
}

func (c Config) logf(format string, args ...any) {
	if c.Logger == nil {
		return
	}
	c.Logger.Printf(format, args...)
}
