package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prreview/internal/model"
	"prreview/internal/util"
)

const trackedPatch = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -5,2 +5,3 @@ func main() {
 	x := 1
+	y := 2
 	_ = x
`

func fakeGit(t *testing.T, root string) *util.RecordingRunner {
	t.Helper()
	return &util.RecordingRunner{
		Respond: func(cmd util.RecordedCommand) (string, error) {
			line := cmd.Line()
			switch {
			case line == "git rev-parse --show-toplevel":
				return root + "\n", nil
			case strings.HasPrefix(line, "git rev-parse --verify"):
				return strings.TrimSuffix(cmd.Args[2], "^{commit}") + "-sha\n", nil
			case strings.HasPrefix(line, "git diff"):
				return trackedPatch, nil
			case strings.HasPrefix(line, "git status"):
				return "1 .M N... 100644 100644 100644 abc abc main.go\x00? notes/todo list.txt\x00? bin.dat\x00", nil
			case strings.HasPrefix(line, "git show"):
				return "a\nb\nc\nd\ne\nf\n", nil
			}
			return "", nil
		},
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in         string
		base, head string
		wantErr    bool
	}{
		{in: "", base: "", head: ""},
		{in: "main..feature", base: "main", head: "feature"},
		{in: "v1.2", base: "v1.2", head: "HEAD"},
		{in: "main..", wantErr: true},
		{in: "..feature", wantErr: true},
		{in: "main...feature", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, head, err := ParseRange(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.head, head)
		})
	}
}

func TestParsePorcelain(t *testing.T) {
	data := "1 M. N... 100644 100644 100644 a b src/a b.go\x00" +
		"2 R. N... 100644 100644 100644 a b R100 new.go\x00old.go\x00" +
		"u UU N... 100644 100644 100644 100644 a b c conflict.go\x00" +
		"? new dir/file.txt\x00" +
		"! ignored.log\x00"

	entries, err := parsePorcelainV2Z([]byte(data))
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, StatusEntry{Path: "src/a b.go", XY: "M."}, entries[0])
	assert.Equal(t, StatusEntry{Path: "new.go", XY: "R."}, entries[1])
	assert.Equal(t, StatusEntry{Path: "conflict.go", XY: "UU"}, entries[2])
	assert.True(t, entries[3].Untracked())
	assert.Equal(t, "new dir/file.txt", entries[3].Path)

	_, err = parsePorcelainV2Z([]byte("1 M.\x00"))
	require.Error(t, err)
	_, err = parsePorcelainV2Z([]byte("Z what\x00"))
	require.Error(t, err)
}

func TestWorkingTreeIncludesUntrackedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "todo list.txt"), []byte("one\ntwo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"), []byte{0x7f, 0, 1}, 0o644))

	src, err := New(context.Background(), fakeGit(t, root), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, "working tree", src.Title())

	d, err := src.LoadDiff(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Files, 3)
	assert.Equal(t, "main.go", d.Files[0].Path)
	assert.Equal(t, filepath.Base(root), d.Repo)

	bin := d.Files[1]
	assert.Equal(t, "bin.dat", bin.Path)
	assert.True(t, bin.Binary)
	assert.Empty(t, bin.Hunks)

	todo := d.Files[2]
	assert.Equal(t, model.StatusAdded, todo.Status)
	require.Len(t, todo.Hunks, 1)
	require.Len(t, todo.Hunks[0].Lines, 2)
	assert.Equal(t, "two", todo.Hunks[0].Lines[1].Content)
	assert.Equal(t, 2, *todo.Hunks[0].Lines[1].NewLine)
	assert.Equal(t, 3, d.Additions)
}

func TestRangeDiffResolvesCommits(t *testing.T) {
	r := fakeGit(t, t.TempDir())
	src, err := New(context.Background(), r, Options{Range: "main..topic", Logger: zerolog.Nop()})
	require.NoError(t, err)

	d, err := src.LoadDiff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main..topic", d.Title)
	assert.Equal(t, "main-sha", d.BaseSHA)
	assert.Equal(t, "topic-sha", d.HeadSHA)
	require.Len(t, d.Files, 1)

	var lines []string
	for _, c := range r.Calls() {
		lines = append(lines, c.Line())
	}
	assert.Contains(t, lines, "git diff --no-color --no-ext-diff -M -U3 main topic")
}

func TestFetchContextFromHeadCommitIsCached(t *testing.T) {
	r := fakeGit(t, t.TempDir())
	src, err := New(context.Background(), r, Options{Range: "main..topic", Logger: zerolog.Nop()})
	require.NoError(t, err)

	lines, err := src.FetchContext(context.Background(), "main.go", model.LineRange{Start: 2, End: 3}, 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[0].Content)

	_, err = src.FetchContext(context.Background(), "main.go", model.LineRange{Start: 4, End: 4}, 0)
	require.NoError(t, err)

	shows := 0
	for _, c := range r.Calls() {
		if c.Args[0] == "show" {
			shows++
			assert.Equal(t, "git show topic:main.go", c.Line())
		}
	}
	assert.Equal(t, 1, shows)
}

func TestFetchContextFromWorkingTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("p\nq\nr\n"), 0o644))
	src, err := New(context.Background(), fakeGit(t, root), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	lines, err := src.FetchContext(context.Background(), "main.go", model.LineRange{Start: 3, End: 9}, -1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "r", lines[0].Content)
	assert.Equal(t, 2, *lines[0].OldLine)

	_, err = src.FetchContext(context.Background(), "missing.go", model.LineRange{Start: 1, End: 1}, 0)
	require.Error(t, err)
}
