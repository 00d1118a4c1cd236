package review

import "strings"

// LineKind classifies one line of a unified diff for display.
type LineKind int

const (
	Context LineKind = iota
	Addition
	Removal
	Hunk
)

func (k LineKind) String() string {
	switch k {
	case Addition:
		return "addition"
	case Removal:
		return "removal"
	case Hunk:
		return "hunk"
	default:
		return "context"
	}
}

// ClassifyLine: "+" (but not "+++") adds, "-" (but not "---") removes,
// "@@" starts a hunk, anything else is context.
func ClassifyLine(line string) LineKind {
	switch {
	case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
		return Addition
	case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
		return Removal
	case strings.HasPrefix(line, "@@"):
		return Hunk
	default:
		return Context
	}
}

type Line struct {
	Text string
	Kind LineKind
}

// NoChanges is shown in place of an empty diff.
const NoChanges = "No changes detected"

// Lines splits a diff into classified lines. An empty diff yields a single
// context line reading NoChanges.
func Lines(diff string) []Line {
	diff = strings.TrimRight(diff, "\n")
	if strings.TrimSpace(diff) == "" {
		return []Line{{Text: NoChanges, Kind: Context}}
	}
	raw := strings.Split(diff, "\n")
	out := make([]Line, len(raw))
	for i, ln := range raw {
		ln = strings.TrimRight(ln, "\r")
		out[i] = Line{Text: ln, Kind: ClassifyLine(ln)}
	}
	return out
}

// Stats counts added and removed lines.
func Stats(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Kind {
		case Addition:
			added++
		case Removal:
			removed++
		}
	}
	return added, removed
}
