// Package filetree turns a flat list of changed files into a collapsible
// directory tree and its render-addressable flattening.
package filetree

import (
	"sort"
	"strings"

	"prreview/internal/model"
)

// Node is a directory (Path empty, may have children) or a file (Path set,
// never has children).
type Node struct {
	Name      string
	Path      string
	Children  []*Node
	Expanded  bool
	Status    model.FileStatus
	Additions int
	Deletions int
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Path == ""
}

func newDir(name string) *Node {
	return &Node{Name: name, Expanded: true}
}

func newFile(name string, f model.FileDiff) *Node {
	return &Node{
		Name:      name,
		Path:      f.Path,
		Status:    f.Status,
		Additions: f.Additions,
		Deletions: f.Deletions,
	}
}

// Build constructs a sorted tree with aggregated directory counts. The
// returned root is never emitted by Flatten.
func Build(files []model.FileDiff) *Node {
	root := newDir("")
	for _, f := range files {
		parts := splitPath(f.Path)
		if len(parts) == 0 {
			continue
		}
		insert(root, parts, f)
	}
	Sort(root)
	RecalculateAggregates(root)
	return root
}

func insert(node *Node, parts []string, f model.FileDiff) {
	if len(parts) == 1 {
		for _, c := range node.Children {
			if !c.IsDir() && c.Name == parts[0] {
				return
			}
		}
		node.Children = append(node.Children, newFile(parts[0], f))
		return
	}

	var dir *Node
	for _, c := range node.Children {
		if c.IsDir() && c.Name == parts[0] {
			dir = c
			break
		}
	}
	if dir == nil {
		dir = newDir(parts[0])
		node.Children = append(node.Children, dir)
	}
	insert(dir, parts[1:], f)
}

// Sort orders every node's children: directories first, then files, each
// group by name.
func Sort(node *Node) {
	if node == nil {
		return
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return a.Name < b.Name
	})
	for _, c := range node.Children {
		Sort(c)
	}
}

// Toggle flips a directory's expand flag. It returns false for files.
func Toggle(node *Node) bool {
	if node == nil || !node.IsDir() {
		return false
	}
	node.Expanded = !node.Expanded
	return true
}

// RecalculateAggregates sets each directory's counts to the sum over its
// descendant files and returns the node's counts.
func RecalculateAggregates(node *Node) (int, int) {
	if node == nil {
		return 0, 0
	}
	if !node.IsDir() {
		return node.Additions, node.Deletions
	}
	var add, del int
	for _, c := range node.Children {
		a, d := RecalculateAggregates(c)
		add += a
		del += d
	}
	node.Additions = add
	node.Deletions = del
	return add, del
}

// DirKey returns the entry key of the directory at path. Directory keys end
// in "/" so a file and a directory sharing a path stay distinct.
func DirKey(path string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// Find resolves a node by its entry key: a file path, or a directory path
// with a trailing slash.
func Find(root *Node, key string) *Node {
	parts := splitPath(key)
	if root == nil || len(parts) == 0 {
		return nil
	}
	wantDir := strings.HasSuffix(key, "/")
	cur := root
	for i, seg := range parts {
		last := i == len(parts)-1
		next := childNamed(cur, seg, !last || wantDir)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func childNamed(node *Node, name string, dir bool) *Node {
	for _, c := range node.Children {
		if c.Name == name && c.IsDir() == dir {
			return c
		}
	}
	return nil
}

// FindAndToggle toggles the directory at the full path dirPath, with or
// without a trailing slash. It reports false for file paths and paths that
// do not resolve.
func FindAndToggle(root *Node, dirPath string) bool {
	n := Find(root, DirKey(dirPath))
	if n == nil || n == root {
		return false
	}
	return Toggle(n)
}

// SetExpandedAll expands or collapses every directory below root.
func SetExpandedAll(root *Node, expanded bool) {
	if root == nil {
		return
	}
	for _, c := range root.Children {
		if c.IsDir() {
			c.Expanded = expanded
			SetExpandedAll(c, expanded)
		}
	}
}

// FilePaths returns file paths in display order, ignoring expand state.
func FilePaths(root *Node) []string {
	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.IsDir() {
				walk(c)
				continue
			}
			out = append(out, c.Path)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// ParentKey returns the key of the directory containing key, or "" at the top level.
func ParentKey(key string) string {
	trimmed := strings.TrimSuffix(key, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

func splitPath(p string) []string {
	raw := strings.Split(strings.Trim(p, "/"), "/")
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CollapsedKeys lists the keys of every collapsed directory, including ones
// hidden under collapsed ancestors.
func CollapsedKeys(root *Node) []string {
	var out []string
	var walk func(n *Node, prefix string)
	walk = func(n *Node, prefix string) {
		for _, c := range n.Children {
			if !c.IsDir() {
				continue
			}
			key := prefix + c.Name + "/"
			if !c.Expanded {
				out = append(out, key)
			}
			walk(c, key)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return out
}

// Collapse collapses the directories named by keys. Unknown keys are ignored.
func Collapse(root *Node, keys []string) {
	for _, k := range keys {
		if n := Find(root, k); n != nil && n != root && n.IsDir() {
			n.Expanded = false
		}
	}
}
