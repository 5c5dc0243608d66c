package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// BuildTrace is the canonical, deterministic record of one shader build.
//
// Invariants:
//   - Must contain logical decisions only (compiled, kept, failed), never
//     timestamps, durations or compiler output.
//   - Canonical order is independent of source enumeration order.
//
// Any consumer producing traces should treat BuildTrace as immutable once
// Canonicalize() is called. The trace is observational only and must never
// affect build behavior.
type BuildTrace struct {
	RootDir string
	Events  []Event
}

// EventKind is the stable discriminator for Event.
// The string values are part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	EventShaderEmpty   EventKind = "ShaderEmpty"
	EventStageUpToDate EventKind = "StageUpToDate"
	EventStageCompiled EventKind = "StageCompiled"
	EventStageFailed   EventKind = "StageFailed"
)

// Event is a single logical decision about a shader or one of its stages.
type Event struct {
	Kind EventKind

	// Shader is the source stem the event refers to. Always required.
	Shader string

	// Stage is required for every kind except EventShaderEmpty.
	Stage string

	// Reason is a stable reason code, e.g. "NonZeroExit" or "ArtifactFresh".
	Reason string

	// Artifact is the artifact file name (base name only, so traces are
	// independent of where the build root lives).
	Artifact string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *BuildTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.RootDir == "" {
		return errors.New("rootDir is required")
	}
	for i, e := range t.Events {
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Shader == "" {
			return fmt.Errorf("events[%d].shader is required", i)
		}
		if e.Kind != EventShaderEmpty && e.Stage == "" {
			return fmt.Errorf("events[%d].stage is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

// Canonicalize sorts events into a total order by
// (shader, stage, kindOrder, reason, artifact).
func (t *BuildTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]

		if a.Shader != b.Shader {
			return a.Shader < b.Shader
		}
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return a.Artifact < b.Artifact
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventShaderEmpty:
		return 10
	case EventStageUpToDate:
		return 20
	case EventStageCompiled:
		return 30
	case EventStageFailed:
		return 40
	default:
		return 1000
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy so the caller's slice is not reordered.
func (t BuildTrace) CanonicalJSON() ([]byte, error) {
	c := BuildTrace{RootDir: t.RootDir}
	c.Events = make([]Event, len(t.Events))
	copy(c.Events, t.Events)
	c.Canonicalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&c)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t BuildTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeHash(b), nil
}

// MarshalJSON fixes field order: rootDir, then events.
func (t BuildTrace) MarshalJSON() ([]byte, error) {
	if t.RootDir == "" {
		return nil, errors.New("rootDir is required")
	}
	var buf bytes.Buffer
	buf.WriteString("{\"rootDir\":")
	rb, _ := json.Marshal(t.RootDir)
	buf.Write(rb)

	buf.WriteString(",\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits empty optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField(&buf, "kind", string(e.Kind), true)
	writeField(&buf, "shader", e.Shader, false)
	writeField(&buf, "stage", e.Stage, false)
	writeField(&buf, "reason", e.Reason, false)
	writeField(&buf, "artifact", e.Artifact, false)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key, value string, first bool) {
	if value == "" && !first {
		return
	}
	if !first {
		buf.WriteByte(',')
	}
	buf.WriteByte('"')
	buf.WriteString(key)
	buf.WriteString("\":")
	vb, _ := json.Marshal(value)
	buf.Write(vb)
}
