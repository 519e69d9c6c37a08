package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateStatsCountsAdditionsAndDeletions(t *testing.T) {
	f := NewFileDiff("src/main.rs")
	f.Hunks = []Hunk{{
		OldStart: 1, OldLines: 3, NewStart: 1, NewLines: 4,
		Lines: []DiffLine{
			Context("fn main() {", 1, 1),
			Addition(`    println!("Hello");`, 2),
			Deletion("    old();", 2),
			Expansion(LineRange{Start: 5, End: 9}, 0),
			Context("}", 3, 3),
		},
	}}
	f.RecalculateStats()

	assert.Equal(t, 1, f.Additions)
	assert.Equal(t, 1, f.Deletions)
}

func TestRecalculateTotalsSumsFiles(t *testing.T) {
	d := PullRequestDiff{Files: []FileDiff{
		{Path: "a", Additions: 10, Deletions: 5},
		{Path: "b", Additions: 3, Deletions: 1},
	}}
	d.RecalculateTotals()

	assert.Equal(t, 13, d.Additions)
	assert.Equal(t, 6, d.Deletions)
}

func TestEffectiveLinePrefersNewSide(t *testing.T) {
	n, ok := Context("x", 4, 7).EffectiveLine()
	require.True(t, ok)
	assert.Equal(t, 7, n)

	n, ok = Deletion("x", 4).EffectiveLine()
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = Expansion(LineRange{Start: 1, End: 3}, 0).EffectiveLine()
	assert.False(t, ok)
}

func TestDiffLineValid(t *testing.T) {
	assert.True(t, Addition("x", 1).Valid())
	assert.True(t, Expansion(LineRange{}, 0).Valid())
	assert.False(t, DiffLine{Kind: LineContext}.Valid())
}

func TestDisplayNameShowsRenameSource(t *testing.T) {
	f := FileDiff{Path: "new/name.go", OldPath: "old/name.go", Status: StatusRenamed}
	assert.Equal(t, "old/name.go → new/name.go", f.DisplayName())

	f.Status = StatusModified
	assert.Equal(t, "new/name.go", f.DisplayName())
}

func TestCloneHunksDoesNotShareLines(t *testing.T) {
	f := FileDiff{Hunks: []Hunk{{Lines: []DiffLine{Context("a", 1, 1)}}}}
	c := f.CloneHunks()
	c[0].Lines[0].Content = "changed"

	assert.Equal(t, "a", f.Hunks[0].Lines[0].Content)
}

func TestFileLookup(t *testing.T) {
	d := &PullRequestDiff{Files: []FileDiff{{Path: "a"}, {Path: "b"}}}

	f, ok := d.File("b")
	require.True(t, ok)
	assert.Equal(t, "b", f.Path)
	assert.Equal(t, 1, d.FileIndex("b"))
	assert.Equal(t, -1, d.FileIndex("zzz"))

	var nilDiff *PullRequestDiff
	_, ok = nilDiff.File("a")
	assert.False(t, ok)
}

func TestLineRangeLen(t *testing.T) {
	assert.Equal(t, 5, LineRange{Start: 3, End: 7}.Len())
	assert.Equal(t, 0, LineRange{Start: 7, End: 3}.Len())
}
