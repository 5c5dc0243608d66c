package shader

import (
	"sort"

	"golang.org/x/text/cases"
)

// Stage is a shader pipeline phase compiled as its own entry point.
type Stage string

const (
	StageVertex  Stage = "vertex"
	StagePixel   Stage = "pixel"
	StageCompute Stage = "compute"
)

// entryPoints maps each known stage to the function the compiler starts at.
// It is never mutated after init.
var entryPoints = map[Stage]string{
	StageVertex:  "vsMain",
	StagePixel:   "psMain",
	StageCompute: "csMain",
}

// Stages returns every known stage, sorted by name.
func Stages() []Stage {
	out := make([]Stage, 0, len(entryPoints))
	for s := range entryPoints {
		out = append(out, s)
	}
	sortStages(out)
	return out
}

// EntryPoint returns the entry-point function name for s.
// The second result is false for an unknown stage.
func (s Stage) EntryPoint() (string, bool) {
	ep, ok := entryPoints[s]
	return ep, ok
}

// Valid reports whether s is a key of the entry-point table.
func (s Stage) Valid() bool {
	_, ok := entryPoints[s]
	return ok
}

func (s Stage) String() string { return string(s) }

// ParseStage validates raw against the entry-point table. Names are matched
// exactly: only the canonical lower-case spelling is accepted.
func ParseStage(raw string) (Stage, bool) {
	s := Stage(raw)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// suggestStage returns the known stage raw differs from only by case, if any.
func suggestStage(raw string) (Stage, bool) {
	// A Caser is stateful, so each call gets its own.
	s := Stage(cases.Fold().String(raw))
	if s == Stage(raw) || !s.Valid() {
		return "", false
	}
	return s, true
}

func sortStages(stages []Stage) {
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
}

// uniqueStages returns stages with duplicates removed, keeping the first
// occurrence of each.
func uniqueStages(stages []Stage) []Stage {
	seen := make(map[Stage]struct{}, len(stages))
	out := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
