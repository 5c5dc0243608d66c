package shader

import (
	"bytes"
	"encoding/json"
	"sort"
)

// BuildResult summarizes one build for the calling pipeline.
type BuildResult struct {
	// RootDir is the base name of the build root.
	RootDir string

	// Shaders maps each discovered shader to the sorted stages compiled for
	// it. Shaders with no annotations map to an empty list.
	Shaders map[string][]Stage

	// UpToDate maps shaders to the sorted stages the staleness check kept.
	// Only populated when incremental builds are enabled.
	UpToDate map[string][]Stage
}

func newBuildResult(rootDir string) *BuildResult {
	return &BuildResult{
		RootDir:  rootDir,
		Shaders:  map[string][]Stage{},
		UpToDate: map[string][]Stage{},
	}
}

// ShaderNames returns the discovered shader names, sorted.
func (r *BuildResult) ShaderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Shaders))
	for n := range r.Shaders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// set stores the sorted, deduplicated stages for name in m.
func set(m map[string][]Stage, name string, stages []Stage) {
	out := uniqueStages(stages)
	sortStages(out)
	m[name] = out
}

// MarshalJSON writes the result with a fixed key order:
//
//	{"rootDir":...,"shaders":{...},"upToDate":{...}}
//
// upToDate is omitted when empty. Shader keys are sorted and stage lists are
// never null.
func (r BuildResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"rootDir\":")
	rb, err := json.Marshal(r.RootDir)
	if err != nil {
		return nil, err
	}
	buf.Write(rb)

	buf.WriteString(",\"shaders\":")
	if err := writeStageMap(&buf, r.Shaders); err != nil {
		return nil, err
	}

	if hasStages(r.UpToDate) {
		buf.WriteString(",\"upToDate\":")
		if err := writeStageMap(&buf, r.UpToDate); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func hasStages(m map[string][]Stage) bool {
	for _, stages := range m {
		if len(stages) > 0 {
			return true
		}
	}
	return false
}

func writeStageMap(buf *bytes.Buffer, m map[string][]Stage) error {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)

	buf.WriteByte('{')
	for i, n := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(n)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		stages := m[n]
		if stages == nil {
			stages = []Stage{}
		}
		sb, err := json.Marshal(stages)
		if err != nil {
			return err
		}
		buf.Write(sb)
	}
	buf.WriteByte('}')
	return nil
}
