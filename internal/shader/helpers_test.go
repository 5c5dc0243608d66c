package shader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// stubCompilerScript writes a tiny "spirv" payload to the -o argument and
// appends its full argument list to a log file.
const stubCompilerScript = `#!/bin/sh
echo "$*" >> %q
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
printf 'spirv' > "$out"
exit %d
`

// writeStubCompiler creates an executable stub compiler in dir and returns
// its path and the path of its argument log.
func writeStubCompiler(t *testing.T, dir string, exitCode int) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler requires a POSIX shell")
	}
	logPath := filepath.Join(dir, "slangc.log")
	path := filepath.Join(dir, CompilerName)
	script := fmt.Sprintf(stubCompilerScript, logPath, exitCode)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub compiler: %v", err)
	}
	return path, logPath
}

// newLayout creates <tmp>/bin as the root and <tmp>/shaders/src as the
// source directory, matching DefaultConfig.
func newLayout(t *testing.T) Config {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "bin")
	cfg := DefaultConfig(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	if err := os.MkdirAll(cfg.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	return cfg
}

func writeSource(t *testing.T, cfg Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.SourceDir, name+SourceExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source %s: %v", name, err)
	}
	return path
}

// fakeInvoker records jobs and writes a placeholder artifact for each
// successful one. Shaders listed in failExit exit with that code instead.
type fakeInvoker struct {
	jobs     []CompileJob
	failExit map[string]int
}

func (f *fakeInvoker) Compile(_ context.Context, job CompileJob) (*CompileResult, error) {
	f.jobs = append(f.jobs, job)
	stem := filepath.Base(job.Source)
	stem = stem[:len(stem)-len(SourceExt)]
	if code, ok := f.failExit[stem]; ok {
		return &CompileResult{ExitCode: code, Stderr: []byte("error: bad shader")}, nil
	}
	if err := os.WriteFile(job.Output, []byte("spirv"), 0o644); err != nil {
		return nil, err
	}
	return &CompileResult{}, nil
}

func (f *fakeInvoker) shaders() []string {
	out := make([]string, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, fmt.Sprintf("%s:%s", filepath.Base(j.Source), j.Stage))
	}
	return out
}

const triangleSource = `struct VSOut { float4 pos : SV_Position; };

[shader("vertex")]
VSOut vsMain(uint id : SV_VertexID) { VSOut o; return o; }

[shader("pixel")]
float4 psMain(VSOut i) : SV_Target { return float4(1, 0, 0, 1); }
`
