package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceExt is the file extension of Slang shader sources.
const SourceExt = ".slang"

// Source is a shader source file discovered on disk.
type Source struct {
	// Name is the file stem, used as the shader's identity.
	Name string

	// Path is the full path to the file.
	Path string

	// ModTime is the file's modification time at discovery.
	ModTime time.Time
}

// DiscoverSources lists the shader sources directly inside dir, sorted by
// path. A directory that does not exist yields no sources.
func DiscoverSources(dir string) ([]Source, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+SourceExt))
	if err != nil {
		return nil, fmt.Errorf("invalid source pattern: %w", err)
	}
	// Glob already sorts, but the ordering is a contract here.
	sort.Strings(matches)

	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fsError("stat", m, err)
		}
		if info.IsDir() {
			continue
		}
		base := filepath.Base(m)
		sources = append(sources, Source{
			Name:    strings.TrimSuffix(base, filepath.Ext(base)),
			Path:    m,
			ModTime: info.ModTime(),
		})
	}
	return sources, nil
}

// ArtifactPath returns the compiled module path for one (shader, stage) pair.
func ArtifactPath(outputDir, shaderName string, stage Stage) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.spv", shaderName, stage))
}
