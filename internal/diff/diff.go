// internal/diff/diff.go
package diff

import (
	"bytes"
)

// Result holds the outcome of comparing two line sequences.
//
// Common is a longest common subsequence of the inputs. Added is keyed by the
// position in the new sequence, Deleted by the position in the old one.
type Result struct {
	Common  []string
	Added   map[int]string
	Deleted map[int]string
}

// Diff compares oldLines against newLines line by line.
//
// Lines are compared by exact content. When several longest common
// subsequences exist the walk back through the table prefers stepping the new
// pointer, so the same inputs always yield the same Added and Deleted sets.
func Diff(oldLines, newLines []string) *Result {
	table := buildLCSMatrix(oldLines, newLines)
	common := backtrack(oldLines, newLines, table)

	return &Result{
		Common:  common,
		Added:   unmatched(newLines, common),
		Deleted: unmatched(oldLines, common),
	}
}

// LCSLength returns the length of the longest common subsequence of the two
// sequences.
func LCSLength(oldLines, newLines []string) int {
	return buildLCSMatrix(oldLines, newLines)[len(oldLines)][len(newLines)]
}

// buildLCSMatrix creates the (len(old)+1) x (len(new)+1) table where cell
// [i][j] is the LCS length of old[:i] and new[:j].
func buildLCSMatrix(oldLines, newLines []string) [][]int {
	matrix := make([][]int, len(oldLines)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(newLines)+1)
	}

	for i := 1; i <= len(oldLines); i++ {
		for j := 1; j <= len(newLines); j++ {
			if oldLines[i-1] == newLines[j-1] {
				matrix[i][j] = matrix[i-1][j-1] + 1
			} else {
				matrix[i][j] = max(matrix[i-1][j], matrix[i][j-1])
			}
		}
	}

	return matrix
}

// backtrack walks the matrix from the bottom-right corner and collects the
// common lines in their original order.
func backtrack(oldLines, newLines []string, lcs [][]int) []string {
	i, j := len(oldLines), len(newLines)
	common := make([]string, lcs[i][j])
	k := len(common)

	for i > 0 && j > 0 {
		switch {
		case oldLines[i-1] == newLines[j-1]:
			k--
			common[k] = oldLines[i-1]
			i--
			j--
		case lcs[i-1][j] > lcs[i][j-1]:
			i--
		default:
			// ties step the new pointer
			j--
		}
	}

	return common
}

// unmatched scans lines in order and reports every line that is not consumed
// by a sequential match against common.
func unmatched(lines, common []string) map[int]string {
	out := make(map[int]string)
	cursor := 0
	for idx, line := range lines {
		if cursor < len(common) && line == common[cursor] {
			cursor++
			continue
		}
		out[idx] = line
	}
	return out
}

// SplitLines breaks file content into lines. A single trailing newline does
// not produce an extra empty line and empty content yields no lines.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	parts := bytes.Split(bytes.TrimSuffix(content, []byte{'\n'}), []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(p)
	}
	return lines
}
