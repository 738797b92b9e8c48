// internal/repo/status.go
package repo

import (
    "fmt"
    "strings"

    "duck/internal/content"
    "duck/internal/diff"
    "duck/internal/snapshot"
    "duck/internal/workspace"
    "duck/shared/types"
    "duck/shared/utils"
)

// FileDiff is the line diff of one path between HEAD and the working tree.
type FileDiff struct {
    Path    string
    Type    string
    OldHash string
    NewHash string
    Result  *diff.Result
}

// Status returns the current status of the workspace
func (r *Repository) Status() ([]shared.Change, error) {
    diffs, err := r.Diff(nil)
    if err != nil {
        return nil, err
    }

    changes := make([]shared.Change, 0, len(diffs))
    for _, d := range diffs {
        stats := d.Result.Stats()
        changes = append(changes, shared.Change{
            Path:      d.Path,
            Type:      d.Type,
            OldHash:   d.OldHash,
            NewHash:   d.NewHash,
            Additions: stats.Additions,
            Deletions: stats.Deletions,
        })
    }

    r.Logger.Debug("Computed workspace status")
    return changes, nil
}

// Diff compares HEAD with the working tree. With no paths every differing
// file is returned; otherwise only files equal to, or under, one of paths.
// Paths are slash-separated and relative to the root.
func (r *Repository) Diff(paths []string) ([]FileDiff, error) {
    r.mu.Lock()
    head, err := r.headSnapshot()
    r.mu.Unlock()
    if err != nil {
        return nil, err
    }

    files, err := r.scan()
    if err != nil {
        return nil, err
    }

    return r.diffTrees(head, files, paths)
}

func (r *Repository) diffTrees(head *snapshot.Snapshot, files map[string]workspace.File, paths []string) ([]FileDiff, error) {
    var out []FileDiff

    for _, path := range utils.UnionKeys(head.Files, files) {
        if !matchPaths(path, paths) {
            continue
        }

        oldHash := head.Files[path]
        file := files[path]
        if oldHash == file.Hash {
            continue
        }

        oldLines, err := content.Lines(r.Safe, oldHash)
        if err != nil {
            return nil, fmt.Errorf("diffing %s: %w", path, err)
        }

        out = append(out, FileDiff{
            Path:    path,
            Type:    shared.ChangeType(oldHash, file.Hash),
            OldHash: oldHash,
            NewHash: file.Hash,
            Result:  diff.Diff(oldLines, diff.SplitLines(file.Content)),
        })
    }

    return out, nil
}

func matchPaths(path string, filters []string) bool {
    if len(filters) == 0 {
        return true
    }
    for _, f := range filters {
        f = strings.TrimSuffix(f, "/")
        if f == "" || f == "." || path == f || strings.HasPrefix(path, f+"/") {
            return true
        }
    }
    return false
}
