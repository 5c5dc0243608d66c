package shader

import "regexp"

// annotationPattern matches stage annotations such as [shader("vertex")].
// Matching is case-insensitive; the captured stage name keeps its source case.
var annotationPattern = regexp.MustCompile(`(?i)\[shader\("(\w+)"\)\]`)

// ExtractStageNames returns every annotated stage name in src, in document
// order, duplicates included. Names are returned exactly as written.
func ExtractStageNames(src []byte) []string {
	matches := annotationPattern.FindAllSubmatch(src, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, string(m[1]))
	}
	return names
}

// ResolveStages validates every annotated stage name in src against the
// entry-point table.
//
// The returned stages keep document order and duplicates; each one is
// compiled. The first unknown name aborts resolution with an
// UnrecognizedStageError naming shaderName.
func ResolveStages(shaderName string, src []byte) ([]Stage, error) {
	names := ExtractStageNames(src)
	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		s, ok := ParseStage(name)
		if !ok {
			return nil, &UnrecognizedStageError{Shader: shaderName, Stage: name}
		}
		stages = append(stages, s)
	}
	return stages, nil
}
