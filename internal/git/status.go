package git

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"prreview/internal/util"
)

// StatusEntry is one path from git status.
type StatusEntry struct {
	Path string
	XY   string
}

// Untracked reports whether git does not know the path yet.
func (e StatusEntry) Untracked() bool { return e.XY == "??" }

// Status lists changed and untracked paths in dir, sorted by path.
func Status(ctx context.Context, runner util.Runner, gitPath, dir string) ([]StatusEntry, error) {
	out, err := runner.Run(ctx, dir, gitPath, "status", "--porcelain=v2", "--untracked-files=all", "-z")
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	entries, err := parsePorcelainV2Z([]byte(out))
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// Fields preceding the path in each porcelain v2 record type.
const (
	ordinaryFields = 8
	renameFields   = 9
	unmergedFields = 10
)

func parsePorcelainV2Z(data []byte) ([]StatusEntry, error) {
	records := bytes.Split(data, []byte{0})
	entries := make([]StatusEntry, 0, len(records))

	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if rec == "" {
			continue
		}

		switch rec[0] {
		case '1':
			e, err := recordEntry(rec, ordinaryFields)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		case 'u':
			e, err := recordEntry(rec, unmergedFields)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		case '2':
			e, err := recordEntry(rec, renameFields)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
			// -z emits the original path as its own record.
			i++
		case '?':
			entries = append(entries, StatusEntry{Path: strings.TrimPrefix(rec, "? "), XY: "??"})
		case '!', '#':
			continue
		default:
			return nil, fmt.Errorf("unknown porcelain record: %q", rec)
		}
	}
	return entries, nil
}

// recordEntry splits off the n fields before the path, which may itself
// contain spaces.
func recordEntry(rec string, n int) (StatusEntry, error) {
	fields := strings.SplitN(rec, " ", n+1)
	if len(fields) != n+1 || fields[n] == "" {
		return StatusEntry{}, fmt.Errorf("unexpected porcelain record: %q", rec)
	}
	return StatusEntry{Path: fields[n], XY: fields[1]}, nil
}
