package diff

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strconv.Itoa(i + 1)
	}
	return lines
}

func TestResult_Lines(t *testing.T) {
	result := Diff([]string{"x", "a", "b", "c"}, []string{"a", "b", "y", "c"})

	want := []Line{
		{Type: Deletion, Content: "x", OldNum: 1},
		{Type: Context, Content: "a", OldNum: 2, NewNum: 1},
		{Type: Context, Content: "b", OldNum: 3, NewNum: 2},
		{Type: Addition, Content: "y", NewNum: 3},
		{Type: Context, Content: "c", OldNum: 4, NewNum: 4},
	}
	assert.Equal(t, want, result.Lines())
}

func TestResult_Stats(t *testing.T) {
	result := Diff([]string{"x", "a", "b"}, []string{"a", "y", "z"})
	stats := result.Stats()

	assert.Equal(t, 2, stats.Additions)
	assert.Equal(t, 2, stats.Deletions)
	assert.Equal(t, 4, stats.Changes)
	assert.False(t, result.Identical())
	assert.True(t, Diff([]string{"a"}, []string{"a"}).Identical())
}

func TestResult_Hunks(t *testing.T) {
	oldLines := numbered(10)
	newLines := numbered(10)
	newLines[4] = "five"

	hunks := Diff(oldLines, newLines).Hunks(3)
	require.Len(t, hunks, 1)

	h := hunks[0]
	assert.Equal(t, 2, h.OldStart)
	assert.Equal(t, 7, h.OldLines)
	assert.Equal(t, 2, h.NewStart)
	assert.Equal(t, 7, h.NewLines)
	require.Len(t, h.Lines, 8)
	assert.Equal(t, Deletion, h.Lines[3].Type)
	assert.Equal(t, "5", h.Lines[3].Content)
	assert.Equal(t, Addition, h.Lines[4].Type)
	assert.Equal(t, "five", h.Lines[4].Content)
}

func TestResult_HunksSplitOnDistantChanges(t *testing.T) {
	oldLines := numbered(20)
	newLines := numbered(20)
	newLines[1] = "two"
	newLines[17] = "eighteen"

	hunks := Diff(oldLines, newLines).Hunks(2)
	require.Len(t, hunks, 2)
	assert.Equal(t, 1, hunks[0].OldStart)
	assert.Equal(t, 16, hunks[1].OldStart)
}

func TestResult_HunksNoChanges(t *testing.T) {
	assert.Empty(t, Diff(numbered(5), numbered(5)).Hunks(3))
	assert.Empty(t, Diff(numbered(5), numbered(5)).Format(3))
}

func TestResult_Format(t *testing.T) {
	out := Diff(nil, []string{"a", "b"}).Format(3)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "@@ -0,0 +1,2 @@", lines[0])
	assert.Equal(t, "+ a", lines[1])
	assert.Equal(t, "+ b", lines[2])
}
