package diff

import (
	"bytes"
	"fmt"
)

// LineType indicates whether a line was added, removed, or is context
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// Line represents a single line of a rendered diff. OldNum and NewNum are
// 1-based and zero on the side the line does not exist in.
type Line struct {
	Type    LineType
	Content string
	OldNum  int
	NewNum  int
}

// Hunk represents a continuous section of changes with surrounding context
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Stats summarises a Result.
type Stats struct {
	Additions int
	Deletions int
	Changes   int
}

// Stats counts added and deleted lines.
func (r *Result) Stats() Stats {
	s := Stats{Additions: len(r.Added), Deletions: len(r.Deleted)}
	s.Changes = s.Additions + s.Deletions
	return s
}

// Identical reports whether the compared sequences were equal.
func (r *Result) Identical() bool {
	return len(r.Added) == 0 && len(r.Deleted) == 0
}

// Lines interleaves common, deleted and added lines back into a single
// listing. Both input sequences can be recovered from a Result alone, since
// every old line is either deleted or common and likewise for new lines.
func (r *Result) Lines() []Line {
	oldLen := len(r.Deleted) + len(r.Common)
	newLen := len(r.Added) + len(r.Common)
	out := make([]Line, 0, len(r.Deleted)+len(r.Added)+len(r.Common))

	i, j, k := 0, 0, 0
	for i < oldLen || j < newLen {
		if content, ok := r.Deleted[i]; ok && i < oldLen {
			out = append(out, Line{Type: Deletion, Content: content, OldNum: i + 1})
			i++
			continue
		}
		if content, ok := r.Added[j]; ok && j < newLen {
			out = append(out, Line{Type: Addition, Content: content, NewNum: j + 1})
			j++
			continue
		}
		if k >= len(r.Common) {
			break
		}
		out = append(out, Line{Type: Context, Content: r.Common[k], OldNum: i + 1, NewNum: j + 1})
		i++
		j++
		k++
	}

	return out
}

// Hunks groups the listing into hunks keeping contextLines of unchanged
// lines around each change. Changes closer than twice the context share a
// hunk.
func (r *Result) Hunks(contextLines int) []Hunk {
	if contextLines < 0 {
		contextLines = 0
	}
	lines := r.Lines()
	n := len(lines)

	// running counts of old/new lines before each position
	oldBefore := make([]int, n+1)
	newBefore := make([]int, n+1)
	for k, l := range lines {
		oldBefore[k+1], newBefore[k+1] = oldBefore[k], newBefore[k]
		if l.Type != Addition {
			oldBefore[k+1]++
		}
		if l.Type != Deletion {
			newBefore[k+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < n; {
		if lines[i].Type == Context {
			i++
			continue
		}

		start := max(0, i-contextLines)
		end := i
		for k := i + 1; k < n; k++ {
			if lines[k].Type == Context {
				continue
			}
			if k-end-1 > 2*contextLines {
				break
			}
			end = k
		}
		stop := min(n, end+contextLines+1)

		h := Hunk{
			OldLines: oldBefore[stop] - oldBefore[start],
			NewLines: newBefore[stop] - newBefore[start],
			Lines:    lines[start:stop],
		}
		h.OldStart = oldBefore[start]
		if h.OldLines > 0 {
			h.OldStart++
		}
		h.NewStart = newBefore[start]
		if h.NewLines > 0 {
			h.NewStart++
		}

		hunks = append(hunks, h)
		i = stop
	}

	return hunks
}

// Format returns a string representation of the diff
func (r *Result) Format(contextLines int) string {
	var buf bytes.Buffer

	for _, hunk := range r.Hunks(contextLines) {
		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n",
			hunk.OldStart, hunk.OldLines,
			hunk.NewStart, hunk.NewLines)

		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteString("+ ")
			case Deletion:
				buf.WriteString("- ")
			case Context:
				buf.WriteString("  ")
			}
			buf.WriteString(line.Content)
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
