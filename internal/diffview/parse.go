package diffview

import (
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"prreview/internal/model"
)

const devNull = "/dev/null"

// ParseUnifiedDiff converts a git-style multi-file unified diff into file
// diffs. Gaps before and between hunks get expansion placeholders.
func ParseUnifiedDiff(raw []byte) ([]model.FileDiff, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	files := make([]model.FileDiff, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		f, err := convertFile(fd)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func convertFile(fd *sgdiff.FileDiff) (model.FileDiff, error) {
	oldPath := strings.TrimPrefix(strings.TrimSpace(fd.OrigName), "a/")
	newPath := strings.TrimPrefix(strings.TrimSpace(fd.NewName), "b/")

	f := model.NewFileDiff(newPath)
	switch {
	case hasExtended(fd, "new file mode") || fd.OrigName == devNull:
		f.Status = model.StatusAdded
	case hasExtended(fd, "deleted file mode") || fd.NewName == devNull:
		f.Status = model.StatusDeleted
		f.Path = oldPath
	case hasExtended(fd, "rename from "):
		f.Status = model.StatusRenamed
		f.OldPath = extendedValue(fd, "rename from ", oldPath)
	case hasExtended(fd, "copy from "):
		f.Status = model.StatusCopied
		f.OldPath = extendedValue(fd, "copy from ", oldPath)
	}
	if f.Path == "" || f.Path == devNull {
		f.Path = oldPath
	}
	f.Binary = hasExtended(fd, "Binary files") || hasExtended(fd, "GIT binary patch")

	for _, h := range fd.Hunks {
		hunk, err := convertHunk(h)
		if err != nil {
			return model.FileDiff{}, fmt.Errorf("%s: %w", f.Path, err)
		}
		f.Hunks = append(f.Hunks, hunk)
	}
	if f.Status != model.StatusAdded && f.Status != model.StatusDeleted {
		insertGapPlaceholders(f.Hunks)
	}
	f.RecalculateStats()
	return f, nil
}

func convertHunk(h *sgdiff.Hunk) (model.Hunk, error) {
	hunk := model.Hunk{
		OldStart: int(h.OrigStartLine),
		OldLines: int(h.OrigLines),
		NewStart: int(h.NewStartLine),
		NewLines: int(h.NewLines),
		Header:   formatHunkHeader(h),
	}

	oldLn := hunk.OldStart
	newLn := hunk.NewStart
	for _, line := range splitHunkBody(h.Body) {
		if line == "" {
			// Some tools strip the single space of an empty context line.
			hunk.Lines = append(hunk.Lines, model.Context("", oldLn, newLn))
			oldLn++
			newLn++
			continue
		}
		switch line[0] {
		case ' ':
			hunk.Lines = append(hunk.Lines, model.Context(line[1:], oldLn, newLn))
			oldLn++
			newLn++
		case '-':
			hunk.Lines = append(hunk.Lines, model.Deletion(line[1:], oldLn))
			oldLn++
		case '+':
			hunk.Lines = append(hunk.Lines, model.Addition(line[1:], newLn))
			newLn++
		case '\\':
			// "\ No newline at end of file"
		default:
			return model.Hunk{}, fmt.Errorf("unexpected hunk line prefix %q", line)
		}
	}
	return hunk, nil
}

// insertGapPlaceholders prepends an expansion line to every hunk preceded by
// hidden new-side lines.
func insertGapPlaceholders(hunks []model.Hunk) {
	prevEnd := 0
	for i := range hunks {
		h := &hunks[i]
		before := lastLineBefore(h.NewStart, h.NewLines)
		if before > prevEnd {
			gap := model.LineRange{Start: prevEnd + 1, End: before}
			offset := lastLineBefore(h.OldStart, h.OldLines) - before
			h.Lines = append([]model.DiffLine{model.Expansion(gap, offset)}, h.Lines...)
		}
		prevEnd = before + h.NewLines
	}
}

// lastLineBefore is the last line number preceding a hunk side. A side with
// zero lines names the line after which the change applies.
func lastLineBefore(start, count int) int {
	if count == 0 {
		return start
	}
	return start - 1
}

func hasExtended(fd *sgdiff.FileDiff, prefix string) bool {
	for _, ext := range fd.Extended {
		if strings.HasPrefix(ext, prefix) {
			return true
		}
	}
	return false
}

func extendedValue(fd *sgdiff.FileDiff, prefix, fallback string) string {
	for _, ext := range fd.Extended {
		if strings.HasPrefix(ext, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(ext, prefix))
		}
	}
	return fallback
}

func formatHunkHeader(h *sgdiff.Hunk) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

func splitHunkBody(body []byte) []string {
	lines := strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
