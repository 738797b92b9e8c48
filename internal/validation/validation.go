package validation

import (
    "fmt"
    "path"
    "strings"

    "duck/internal/errors"
)

// Message trims a commit message and rejects empty ones.
func Message(message string) (string, error) {
    message = strings.TrimSpace(message)
    if message == "" {
        return "", errors.ValidationError("commit message cannot be empty", nil)
    }
    return message, nil
}

// Path checks that p is a clean slash path inside the workspace.
func Path(p string) error {
    switch {
    case p == "":
        return errors.ValidationError("path cannot be empty", nil)
    case strings.Contains(p, "\\"):
        return errors.ValidationError(fmt.Sprintf("path must use forward slashes: %s", p), nil)
    case path.IsAbs(p):
        return errors.ValidationError(fmt.Sprintf("path must be relative: %s", p), nil)
    case path.Clean(p) != p:
        return errors.ValidationError(fmt.Sprintf("path is not clean: %s", p), map[string]string{"clean": path.Clean(p)})
    case p == ".." || strings.HasPrefix(p, "../"):
        return errors.ValidationError(fmt.Sprintf("path escapes the workspace: %s", p), nil)
    }
    return nil
}
