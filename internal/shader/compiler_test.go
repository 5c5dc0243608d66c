package shader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCompile_WritesOutputAndReportsSuccess(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeStubCompiler(t, dir, 0)
	out := filepath.Join(dir, "x_vertex.spv")

	res, err := NewCompiler(path).Compile(context.Background(), CompileJob{
		Source: "x.slang", EntryPoint: "vsMain", Stage: StageVertex, Target: DefaultTarget, Output: out,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(b) != "spirv" {
		t.Fatalf("unexpected output content %q", b)
	}
}

func TestCompile_NonZeroExitIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	path, _ := writeStubCompiler(t, dir, 3)

	res, err := NewCompiler(path).Compile(context.Background(), CompileJob{
		Source: "x.slang", EntryPoint: "psMain", Stage: StagePixel, Target: DefaultTarget,
		Output: filepath.Join(dir, "x_pixel.spv"),
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", res.ExitCode)
	}
}

func TestCompile_CapturesStderr(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noisy")
	script := "#!/bin/sh\necho 'warning: unused' >&2\necho 'ok'\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	res, err := NewCompiler(path).Compile(context.Background(), CompileJob{Stage: StageCompute})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if string(res.Stderr) != "warning: unused\n" {
		t.Errorf("stderr not captured: %q", res.Stderr)
	}
	if string(res.Stdout) != "ok\n" {
		t.Errorf("stdout not captured: %q", res.Stdout)
	}
}

func TestCompile_MissingExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slangc")
	_, err := NewCompiler(path).Compile(context.Background(), CompileJob{Stage: StageVertex})
	if !errors.Is(err, ErrMissingExecutable) {
		t.Fatalf("expected ErrMissingExecutable, got %v", err)
	}
}

func TestCompile_EmptyPath(t *testing.T) {
	_, err := NewCompiler("").Compile(context.Background(), CompileJob{})
	if !errors.Is(err, ErrMissingExecutable) {
		t.Fatalf("expected ErrMissingExecutable, got %v", err)
	}
}

func TestCompile_ContextCancellationKillsProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hang")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewCompiler(path).Compile(ctx, CompileJob{Stage: StageVertex})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("compiler process was not killed promptly")
	}
}

func TestExitStatus(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation after a clean exit must not turn success into an error.
	code, err := exitStatus(cancelled, nil)
	if err != nil || code != 0 {
		t.Fatalf("clean exit with cancelled context: code=%d err=%v", code, err)
	}

	code, err = exitStatus(context.Background(), errors.New("broken pipe"))
	if err == nil || code != 0 {
		t.Fatalf("expected wait error, got code=%d err=%v", code, err)
	}

	_, err = exitStatus(cancelled, errors.New("signal: killed"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompileJob_Args(t *testing.T) {
	job := CompileJob{Source: "/s/a.slang", EntryPoint: "csMain", Stage: StageCompute, Target: "spirv", Output: "/o/a_compute.spv"}
	want := []string{"/s/a.slang", "-entry", "csMain", "-stage", "compute", "-target", "spirv", "-o", "/o/a_compute.spv"}
	got := job.Args()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
