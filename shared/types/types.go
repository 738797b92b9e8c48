// Package shared holds types used by both the CLI and the internal packages.
package shared

const (
	ChangeAdd    = "add"
	ChangeModify = "modify"
	ChangeDelete = "delete"
)

// Change describes one path that differs between the head commit and the
// working tree.
type Change struct {
	Path      string `json:"path"`
	Type      string `json:"type"` // add, modify, delete
	OldHash   string `json:"old_hash,omitempty"`
	NewHash   string `json:"new_hash,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ChangeType classifies a path by which side of the comparison holds it.
func ChangeType(oldHash, newHash string) string {
	switch {
	case oldHash == "":
		return ChangeAdd
	case newHash == "":
		return ChangeDelete
	default:
		return ChangeModify
	}
}
