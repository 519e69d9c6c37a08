// Package model describes the file/hunk/line structure of a pull request diff.
package model

import "path"

// FileStatus is the change type of a file in a pull request.
type FileStatus int

const (
	StatusModified FileStatus = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusCopied
)

func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	default:
		return "modified"
	}
}

// Symbol is the single-letter marker used in file lists.
func (s FileStatus) Symbol() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	case StatusRenamed:
		return "R"
	case StatusCopied:
		return "C"
	default:
		return "M"
	}
}

// LineKind classifies a diff line.
type LineKind int

const (
	LineContext LineKind = iota
	LineAddition
	LineDeletion
	LineExpansion
)

// Prefix is the unified-diff marker for the kind.
func (k LineKind) Prefix() string {
	switch k {
	case LineAddition:
		return "+"
	case LineDeletion:
		return "-"
	case LineExpansion:
		return "~"
	default:
		return " "
	}
}

// LineRange is an inclusive range of new-side line numbers.
type LineRange struct {
	Start int
	End   int
}

// Len returns the number of lines in the range.
func (r LineRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// DiffLine is one line of a hunk.
type DiffLine struct {
	Content string
	Kind    LineKind
	OldLine *int
	NewLine *int

	// IsExpanded is set on a placeholder once its context has been requested,
	// and on the context lines that replaced it.
	IsExpanded bool

	// Gap and OldOffset are only meaningful for LineExpansion. Gap is the
	// hidden new-side range; OldOffset is added to a new line number to get
	// the matching old line number.
	Gap       LineRange
	OldOffset int
}

// Context returns a context line present on both sides.
func Context(content string, oldLine, newLine int) DiffLine {
	return DiffLine{Content: content, Kind: LineContext, OldLine: intPtr(oldLine), NewLine: intPtr(newLine)}
}

// Addition returns a line present only on the new side.
func Addition(content string, newLine int) DiffLine {
	return DiffLine{Content: content, Kind: LineAddition, NewLine: intPtr(newLine)}
}

// Deletion returns a line present only on the old side.
func Deletion(content string, oldLine int) DiffLine {
	return DiffLine{Content: content, Kind: LineDeletion, OldLine: intPtr(oldLine)}
}

// Expansion returns a placeholder standing in for the hidden new-side range gap.
func Expansion(gap LineRange, oldOffset int) DiffLine {
	return DiffLine{Kind: LineExpansion, Gap: gap, OldOffset: oldOffset}
}

// EffectiveLine is the new line number if present, else the old one.
func (l DiffLine) EffectiveLine() (int, bool) {
	if l.NewLine != nil {
		return *l.NewLine, true
	}
	if l.OldLine != nil {
		return *l.OldLine, true
	}
	return 0, false
}

// Valid reports whether the line numbers present match the line kind.
func (l DiffLine) Valid() bool {
	if l.Kind == LineExpansion {
		return true
	}
	return l.OldLine != nil || l.NewLine != nil
}

// Hunk is a contiguous block of a file's diff.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string
	Lines    []DiffLine
}

// Clone returns a deep copy of the hunk's line slice.
func (h Hunk) Clone() Hunk {
	out := h
	out.Lines = append([]DiffLine(nil), h.Lines...)
	return out
}

// FileDiff is the diff of a single file.
type FileDiff struct {
	Path      string
	OldPath   string
	Status    FileStatus
	Additions int
	Deletions int
	Binary    bool
	Hunks     []Hunk
}

// NewFileDiff returns an empty modified-file diff for path.
func NewFileDiff(p string) FileDiff {
	return FileDiff{Path: p, Status: StatusModified}
}

// RecalculateStats recounts additions and deletions from the hunks.
func (f *FileDiff) RecalculateStats() {
	f.Additions, f.Deletions = 0, 0
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAddition:
				f.Additions++
			case LineDeletion:
				f.Deletions++
			}
		}
	}
}

// DisplayName is the path, annotated with the old path for renames and copies.
func (f FileDiff) DisplayName() string {
	if (f.Status == StatusRenamed || f.Status == StatusCopied) && f.OldPath != "" && f.OldPath != f.Path {
		return f.OldPath + " → " + f.Path
	}
	return f.Path
}

// Name is the last path segment.
func (f FileDiff) Name() string {
	return path.Base(f.Path)
}

// CloneHunks returns a deep copy of the file's hunks.
func (f FileDiff) CloneHunks() []Hunk {
	out := make([]Hunk, len(f.Hunks))
	for i, h := range f.Hunks {
		out[i] = h.Clone()
	}
	return out
}

// PullRequestDiff is a loaded pull request.
type PullRequestDiff struct {
	Repo    string
	Number  int
	Title   string
	URL     string
	BaseSHA string
	HeadSHA string

	Files     []FileDiff
	Additions int
	Deletions int
}

// RecalculateTotals sums the file counts.
func (d *PullRequestDiff) RecalculateTotals() {
	d.Additions, d.Deletions = 0, 0
	for _, f := range d.Files {
		d.Additions += f.Additions
		d.Deletions += f.Deletions
	}
}

// File returns the file with the given path.
func (d *PullRequestDiff) File(p string) (*FileDiff, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Files {
		if d.Files[i].Path == p {
			return &d.Files[i], true
		}
	}
	return nil, false
}

// FileIndex returns the position of the file with the given path, or -1.
func (d *PullRequestDiff) FileIndex(p string) int {
	if d == nil {
		return -1
	}
	for i := range d.Files {
		if d.Files[i].Path == p {
			return i
		}
	}
	return -1
}

func intPtr(n int) *int {
	v := n
	return &v
}
