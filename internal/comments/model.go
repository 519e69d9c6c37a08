// Package comments holds pending inline review comments and the review event.
package comments

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Side is the diff side a comment is anchored to, as GitHub names it.
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// PendingComment is an unsent inline comment. StartLine is zero for
// single-line comments.
type PendingComment struct {
	// ID is assigned by Book.Add and is unique within that book.
	ID        int
	Path      string
	Line      int
	Side      Side
	StartLine int
	StartSide Side
	Body      string
}

// IsMultiLine reports whether the comment spans a range of lines.
func (c PendingComment) IsMultiLine() bool {
	return c.StartLine > 0 && (c.StartLine != c.Line || c.StartSide != c.Side)
}

// LineLabel is "L12" or "L3-L7".
func (c PendingComment) LineLabel() string {
	if c.IsMultiLine() {
		return fmt.Sprintf("L%d-L%d", c.StartLine, c.Line)
	}
	return "L" + strconv.Itoa(c.Line)
}

// AnchorKey identifies a comment position.
func AnchorKey(path string, side Side, line int) string {
	return path + ":" + string(side) + ":" + strconv.Itoa(line)
}

// Draft is a comment being edited.
type Draft struct {
	Path      string
	Line      int
	Side      Side
	StartLine int
	StartSide Side
	body      []rune
}

// Body returns the current buffer.
func (d *Draft) Body() string {
	return string(d.body)
}

// Insert appends r to the buffer.
func (d *Draft) Insert(r rune) {
	d.body = append(d.body, r)
}

// Backspace removes the last rune, if any.
func (d *Draft) Backspace() {
	if len(d.body) > 0 {
		d.body = d.body[:len(d.body)-1]
	}
}

// SetBody replaces the buffer.
func (d *Draft) SetBody(s string) {
	d.body = []rune(s)
}

// Empty reports whether the buffer holds only whitespace.
func (d *Draft) Empty() bool {
	return strings.TrimSpace(string(d.body)) == ""
}

// Comment converts the draft into a pending comment.
func (d *Draft) Comment() PendingComment {
	return PendingComment{
		Path:      d.Path,
		Line:      d.Line,
		Side:      d.Side,
		StartLine: d.StartLine,
		StartSide: d.StartSide,
		Body:      strings.TrimRight(string(d.body), " \t\n"),
	}
}

// Book collects pending comments per file in creation order.
type Book struct {
	byPath map[string][]PendingComment
	nextID int
}

func NewBook() *Book {
	return &Book{byPath: make(map[string][]PendingComment)}
}

// Add stores c under a fresh ID and returns that ID.
func (b *Book) Add(c PendingComment) int {
	b.nextID++
	c.ID = b.nextID
	b.byPath[c.Path] = append(b.byPath[c.Path], c)
	return c.ID
}

// ForPath returns a copy of the file's comments.
func (b *Book) ForPath(path string) []PendingComment {
	return append([]PendingComment(nil), b.byPath[path]...)
}

// HasLine reports whether any comment on path is anchored at line.
func (b *Book) HasLine(path string, line int) bool {
	for _, c := range b.byPath[path] {
		if c.Line == line {
			return true
		}
	}
	return false
}

// RemoveLast deletes the most recent comment on path anchored at line.
func (b *Book) RemoveLast(path string, line int) bool {
	list := b.byPath[path]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Line != line {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(b.byPath, path)
		} else {
			b.byPath[path] = list
		}
		return true
	}
	return false
}

// Count is the total number of pending comments.
func (b *Book) Count() int {
	n := 0
	for _, list := range b.byPath {
		n += len(list)
	}
	return n
}

// Ordered lists every comment, grouped by file in fileOrder and then by
// creation order. Files missing from fileOrder come last, by path.
func (b *Book) Ordered(fileOrder []string) []PendingComment {
	out := make([]PendingComment, 0, b.Count())
	seen := make(map[string]bool, len(fileOrder))
	for _, p := range fileOrder {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, b.byPath[p]...)
	}

	var rest []string
	for p := range b.byPath {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	for _, p := range rest {
		out = append(out, b.byPath[p]...)
	}
	return out
}

// Remove deletes the comments with the given IDs and returns how many were
// found.
func (b *Book) Remove(ids ...int) int {
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	removed := 0
	for path, list := range b.byPath {
		kept := list[:0]
		for _, c := range list {
			if drop[c.ID] {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			delete(b.byPath, path)
		} else {
			b.byPath[path] = kept
		}
	}
	return removed
}
