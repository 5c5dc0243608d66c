package shader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiscoverSources_SortedSlangFilesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.slang", "alpha.slang", "notes.txt", "mid.slang"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.slang"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sources, err := DiscoverSources(dir)
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(sources) != len(want) {
		t.Fatalf("expected %d sources, got %+v", len(want), sources)
	}
	for i, name := range want {
		if sources[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, sources[i].Name)
		}
		if sources[i].Path != filepath.Join(dir, name+SourceExt) {
			t.Errorf("unexpected path %q", sources[i].Path)
		}
	}
}

func TestDiscoverSources_RecordsModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.slang")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	sources, err := DiscoverSources(dir)
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}
	if len(sources) != 1 || !sources[0].ModTime.Equal(stamp) {
		t.Fatalf("expected mod time %v, got %+v", stamp, sources)
	}
}

func TestArtifactPath(t *testing.T) {
	got := ArtifactPath("/out", "triangle", StagePixel)
	if got != filepath.Join("/out", "triangle_pixel.spv") {
		t.Fatalf("unexpected artifact path %q", got)
	}
}

func TestUpToDate(t *testing.T) {
	dir := t.TempDir()
	art := filepath.Join(dir, "a_vertex.spv")
	src := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh, err := upToDate(src, art, DefaultStaleWindow)
	if err != nil || fresh {
		t.Fatalf("missing artifact must be stale: fresh=%v err=%v", fresh, err)
	}

	if err := os.WriteFile(art, []byte("spirv"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	tests := []struct {
		name    string
		artTime time.Time
		want    bool
	}{
		{"artifact newer", src.Add(time.Hour), true},
		{"source newer within window", src.Add(-30 * time.Second), true},
		{"source newer by window", src.Add(-60 * time.Second), false},
		{"source much newer", src.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.Chtimes(art, tt.artTime, tt.artTime); err != nil {
				t.Fatalf("chtimes: %v", err)
			}
			got, err := upToDate(src, art, DefaultStaleWindow)
			if err != nil {
				t.Fatalf("upToDate failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
