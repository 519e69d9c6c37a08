package filetree

import (
	"strings"

	"prreview/internal/model"
)

// FlatFileEntry is one row of the tree's flattened projection. Key is the
// file path for files and the directory path plus "/" for directories.
type FlatFileEntry struct {
	Depth     int
	Name      string
	Path      string
	Key       string
	IsDir     bool
	Expanded  bool
	Status    model.FileStatus
	Additions int
	Deletions int
}

// Flatten walks the tree pre-order. Children of collapsed directories are
// omitted and the root itself is not emitted.
func Flatten(root *Node) []FlatFileEntry {
	if root == nil {
		return nil
	}
	out := make([]FlatFileEntry, 0, len(root.Children))
	for _, c := range root.Children {
		out = flattenInto(out, c, "", 0)
	}
	return out
}

func flattenInto(out []FlatFileEntry, n *Node, prefix string, depth int) []FlatFileEntry {
	key := prefix + n.Name
	if n.IsDir() {
		key += "/"
	}
	out = append(out, FlatFileEntry{
		Depth:     depth,
		Name:      n.Name,
		Path:      n.Path,
		Key:       key,
		IsDir:     n.IsDir(),
		Expanded:  n.Expanded,
		Status:    n.Status,
		Additions: n.Additions,
		Deletions: n.Deletions,
	})
	if !n.IsDir() || !n.Expanded {
		return out
	}
	for _, c := range n.Children {
		out = flattenInto(out, c, key, depth+1)
	}
	return out
}

// IndexOfKey returns the row index of key, or -1.
func IndexOfKey(entries []FlatFileEntry, key string) int {
	for i, e := range entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Icon is the tree glyph for the entry.
func (e FlatFileEntry) Icon() string {
	if !e.IsDir {
		return " "
	}
	if e.Expanded {
		return "▾"
	}
	return "▸"
}

// Indent is two spaces per depth level.
func (e FlatFileEntry) Indent() string {
	return strings.Repeat("  ", e.Depth)
}
