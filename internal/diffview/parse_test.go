package diffview

import (
	"testing"

	"prreview/internal/model"
)

func TestParseUnifiedDiffNumbersLines(t *testing.T) {
	raw := []byte(`diff --git a/sample.txt b/sample.txt
index 1111111..2222222 100644
--- a/sample.txt
+++ b/sample.txt
@@ -1,4 +1,5 @@
 keep
-oldA
-oldB
+newA
+newB
+newC
 tail
`)

	files, err := ParseUnifiedDiff(raw)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff returned error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.Path != "sample.txt" || f.Status != model.StatusModified {
		t.Fatalf("file = %q %v, want sample.txt modified", f.Path, f.Status)
	}
	if f.Additions != 3 || f.Deletions != 2 {
		t.Fatalf("stats = +%d/-%d, want +3/-2", f.Additions, f.Deletions)
	}
	if got, want := f.Hunks[0].Header, "@@ -1,4 +1,5 @@"; got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}

	lines := f.Hunks[0].Lines
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
	wantKinds := []model.LineKind{
		model.LineContext, model.LineDeletion, model.LineDeletion,
		model.LineAddition, model.LineAddition, model.LineAddition, model.LineContext,
	}
	for i, k := range wantKinds {
		if lines[i].Kind != k {
			t.Fatalf("line %d kind = %v, want %v", i, lines[i].Kind, k)
		}
	}

	assertLine(t, lines[0].OldLine, 1)
	assertLine(t, lines[0].NewLine, 1)
	assertLine(t, lines[2].OldLine, 3)
	if lines[2].NewLine != nil {
		t.Fatalf("deletion has new line %d", *lines[2].NewLine)
	}
	assertLine(t, lines[5].NewLine, 4)
	assertLine(t, lines[6].OldLine, 4)
	assertLine(t, lines[6].NewLine, 5)
}

func TestParseUnifiedDiffDetectsStatus(t *testing.T) {
	raw := []byte(`diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..3b18e13
--- /dev/null
+++ b/new.txt
@@ -0,0 +1,2 @@
+line1
+line2
diff --git a/gone.txt b/gone.txt
deleted file mode 100644
index 3b18e13..0000000
--- a/gone.txt
+++ /dev/null
@@ -1 +0,0 @@
-bye
diff --git a/old/name.go b/new/name.go
similarity index 90%
rename from old/name.go
rename to new/name.go
index 1111111..2222222 100644
--- a/old/name.go
+++ b/new/name.go
@@ -1,1 +1,1 @@
-package old
+package new
`)

	files, err := ParseUnifiedDiff(raw)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff returned error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}

	if files[0].Path != "new.txt" || files[0].Status != model.StatusAdded {
		t.Fatalf("file 0 = %q %v, want new.txt added", files[0].Path, files[0].Status)
	}
	if files[0].Hunks[0].Lines[0].OldLine != nil {
		t.Fatalf("added line has an old line number")
	}
	assertLine(t, files[0].Hunks[0].Lines[1].NewLine, 2)

	if files[1].Path != "gone.txt" || files[1].Status != model.StatusDeleted {
		t.Fatalf("file 1 = %q %v, want gone.txt deleted", files[1].Path, files[1].Status)
	}
	if files[1].Deletions != 1 {
		t.Fatalf("deleted file deletions = %d, want 1", files[1].Deletions)
	}

	if files[2].Status != model.StatusRenamed || files[2].OldPath != "old/name.go" || files[2].Path != "new/name.go" {
		t.Fatalf("file 2 = %+v, want rename old/name.go -> new/name.go", files[2])
	}
}

func TestParseUnifiedDiffInsertsGapPlaceholders(t *testing.T) {
	raw := []byte(`diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -10,3 +10,4 @@ func a() {
 one
+two
 three
 four
@@ -30,2 +31,2 @@ func b() {
-five
+FIVE
 six
`)

	files, err := ParseUnifiedDiff(raw)
	if err != nil {
		t.Fatalf("ParseUnifiedDiff returned error: %v", err)
	}
	hunks := files[0].Hunks
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}

	first := hunks[0].Lines[0]
	if first.Kind != model.LineExpansion {
		t.Fatalf("hunk 0 line 0 kind = %v, want expansion", first.Kind)
	}
	if first.Gap != (model.LineRange{Start: 1, End: 9}) || first.OldOffset != 0 {
		t.Fatalf("leading gap = %+v offset %d", first.Gap, first.OldOffset)
	}

	between := hunks[1].Lines[0]
	if between.Kind != model.LineExpansion {
		t.Fatalf("hunk 1 line 0 kind = %v, want expansion", between.Kind)
	}
	if between.Gap != (model.LineRange{Start: 14, End: 30}) || between.OldOffset != -1 {
		t.Fatalf("middle gap = %+v offset %d", between.Gap, between.OldOffset)
	}
	if files[0].Additions != 2 || files[0].Deletions != 1 {
		t.Fatalf("stats = +%d/-%d, want +2/-1", files[0].Additions, files[0].Deletions)
	}
}

func TestParseUnifiedDiffEmptyInput(t *testing.T) {
	files, err := ParseUnifiedDiff([]byte("  \n"))
	if err != nil {
		t.Fatalf("ParseUnifiedDiff returned error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
}

func TestFlattenHunksHeaderThenLines(t *testing.T) {
	hunks := []model.Hunk{{
		Header: "@@ -1,3 +1,3 @@",
		Lines: []model.DiffLine{
			model.Context("a", 1, 1),
			model.Addition("b", 2),
			model.Deletion("c", 2),
		},
	}}

	rows := FlattenHunks(hunks)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if !rows[0].IsHeader() {
		t.Fatalf("row 0 = %+v, want header", rows[0])
	}
	for i := 1; i < 4; i++ {
		if rows[i] != (Row{Hunk: 0, Line: i - 1}) {
			t.Fatalf("row %d = %+v, want line %d", i, rows[i], i-1)
		}
		line, ok := LineAt(hunks, rows[i])
		if !ok || line.Content != hunks[0].Lines[i-1].Content {
			t.Fatalf("row %d resolves to %q", i, line.Content)
		}
	}
	if _, ok := LineAt(hunks, rows[0]); ok {
		t.Fatalf("header row resolved to a line")
	}
	if got := HeaderAt(hunks, rows[2]); got != "@@ -1,3 +1,3 @@" {
		t.Fatalf("HeaderAt = %q", got)
	}
}

func TestFlattenHunksMultipleHunks(t *testing.T) {
	hunks := []model.Hunk{
		{Lines: []model.DiffLine{model.Context("a", 1, 1)}},
		{},
		{Lines: []model.DiffLine{model.Addition("b", 5), model.Addition("c", 6)}},
	}

	rows := FlattenHunks(hunks)
	want := []Row{{0, -1}, {0, 0}, {1, -1}, {2, -1}, {2, 0}, {2, 1}}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
	if _, ok := LineAt(hunks, Row{Hunk: 9, Line: 0}); ok {
		t.Fatalf("out of range hunk resolved")
	}
}

func assertLine(t *testing.T, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("line = nil, want %d", want)
	}
	if *got != want {
		t.Fatalf("line = %d, want %d", *got, want)
	}
}
