package diffs

import (
	"strconv"
	"strings"

	"github.com/VariantSync/mpatch/modules/errs"
)

// Parse parses the full text of a unified-diff patch file into a
// VersionDiff. Parsing fails if content contains no "diff " header at
// all, matching the original tool's refusal to treat an empty patch
// file as a trivially successful, empty result.
func Parse(content string) (*VersionDiff, error) {
	var fileDiffLines []string
	var fileDiffs []*FileDiff

	// A final newline terminates the last line; it does not start an
	// empty one.
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if strings.HasPrefix(line, "diff ") {
			if len(fileDiffLines) > 0 {
				fd, err := parseFileDiff(fileDiffLines)
				if err != nil {
					return nil, err
				}
				fileDiffs = append(fileDiffs, fd)
			}
			fileDiffLines = nil
		}
		fileDiffLines = append(fileDiffLines, line)
	}
	if len(fileDiffLines) > 0 && hasNonEmpty(fileDiffLines) {
		fd, err := parseFileDiff(fileDiffLines)
		if err != nil {
			return nil, err
		}
		fileDiffs = append(fileDiffs, fd)
	}

	if len(fileDiffs) == 0 {
		return nil, errs.Errorf(errs.DiffParse, "the given diff is empty")
	}
	return &VersionDiff{FileDiffs: fileDiffs}, nil
}

func hasNonEmpty(lines []string) bool {
	for _, l := range lines {
		if l != "" {
			return true
		}
	}
	return false
}

func parseFileDiff(lines []string) (*FileDiff, error) {
	if len(lines) < 3 {
		return nil, errs.Errorf(errs.DiffParse, "incomplete file diff header")
	}
	command := lines[0]
	if !strings.HasPrefix(command, "diff ") {
		return nil, errs.Errorf(errs.DiffParse, "invalid file diff start: %s", command)
	}
	sourceHeader, err := parseSourceHeader(lines[1])
	if err != nil {
		return nil, err
	}
	targetHeader, err := parseTargetHeader(lines[2])
	if err != nil {
		return nil, err
	}

	var hunkLines []string
	var hunks []*Hunk
	for _, line := range lines[3:] {
		if strings.HasPrefix(line, "@@ ") {
			if len(hunkLines) > 0 {
				h, err := parseHunk(hunkLines)
				if err != nil {
					return nil, err
				}
				hunks = append(hunks, h)
			}
			hunkLines = nil
		}
		hunkLines = append(hunkLines, line)
	}
	if len(hunkLines) > 0 {
		h, err := parseHunk(hunkLines)
		if err != nil {
			return nil, err
		}
		hunks = append(hunks, h)
	}

	return &FileDiff{
		Command:    DiffCommand(command),
		SourceFile: sourceHeader,
		TargetFile: targetHeader,
		Hunks:      hunks,
	}, nil
}

func parseFileHeaderLine(line, prefix string) (string, string, error) {
	if !strings.HasPrefix(line, prefix) {
		return "", "", errs.Errorf(errs.DiffParse, "invalid format: does not start with %q", prefix)
	}
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return "", "", errs.Errorf(errs.DiffParse, "invalid format: missing path or timestamp")
	}
	path := parts[1]
	// The timestamp is everything after the path, kept verbatim.
	rest := strings.TrimLeft(line[len(prefix):], " \t")
	timestamp := strings.TrimLeft(rest[len(path):], " \t")
	return path, timestamp, nil
}

func parseSourceHeader(line string) (SourceFileHeader, error) {
	path, ts, err := parseFileHeaderLine(line, "--- ")
	if err != nil {
		return SourceFileHeader{}, err
	}
	return SourceFileHeader{Path: path, Timestamp: ts}, nil
}

func parseTargetHeader(line string) (TargetFileHeader, error) {
	path, ts, err := parseFileHeaderLine(line, "+++ ")
	if err != nil {
		return TargetFileHeader{}, err
	}
	return TargetFileHeader{Path: path, Timestamp: ts}, nil
}

func parseHunk(lines []string) (*Hunk, error) {
	sourceLoc, targetLoc, err := parseLocationLine(lines[0])
	if err != nil {
		return nil, err
	}

	sourceID := sourceLoc.Start
	targetID := targetLoc.Start
	var hunkLines []HunkLine
	for _, raw := range lines[1:] {
		kind, err := determineLineKind(raw)
		if err != nil {
			return nil, err
		}
		var sourceLine, targetLine LineLocation
		switch kind {
		case Context:
			sourceLine = Real(sourceID)
			sourceID++
			targetLine = Real(targetID)
			targetID++
		case Add:
			sourceLine = Change(targetID)
			targetLine = Real(targetID)
			targetID++
		case Remove:
			sourceLine = Real(sourceID)
			sourceID++
			targetLine = Change(targetID)
		case EOFMarker:
			sourceLine = None()
			targetLine = None()
		}
		hunkLines = append(hunkLines, HunkLine{
			Raw:        raw,
			Kind:       kind,
			SourceLine: sourceLine,
			TargetLine: targetLine,
		})
	}

	return &Hunk{
		SourceLocation: sourceLoc,
		TargetLocation: targetLoc,
		Lines:          hunkLines,
	}, nil
}

func parseLocationLine(line string) (HunkLocation, HunkLocation, error) {
	if !strings.HasPrefix(line, "@@ ") || !strings.HasSuffix(line, " @@") {
		return HunkLocation{}, HunkLocation{}, errs.Errorf(errs.DiffParse, "invalid hunk location: %s", line)
	}
	fields := strings.Fields(line)
	// fields[0] == "@@", last field == "@@"; the two location tokens
	// are fields[1] and fields[2].
	if len(fields) < 4 {
		return HunkLocation{}, HunkLocation{}, errs.Errorf(errs.DiffParse, "invalid hunk location: %s", line)
	}
	source, err := parseHunkLocation(fields[1])
	if err != nil {
		return HunkLocation{}, HunkLocation{}, err
	}
	target, err := parseHunkLocation(fields[2])
	if err != nil {
		return HunkLocation{}, HunkLocation{}, err
	}
	return source, target, nil
}

// parseHunkLocation parses a single "-N[,M]" or "+N[,M]" token. When M
// is omitted, it defaults to N itself, not the literal constant 1 --
// the two coincide only when N==1.
func parseHunkLocation(value string) (HunkLocation, error) {
	if len(value) == 0 || (value[0] != '-' && value[0] != '+') {
		return HunkLocation{}, errs.Errorf(errs.DiffParse, "invalid hunk location: %s", value)
	}
	var numbers []int
	for _, part := range strings.Split(value[1:], ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return HunkLocation{}, errs.Errorf(errs.DiffParse, "invalid hunk location: %s", value)
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 1 {
		numbers = append(numbers, numbers[0])
	}
	if len(numbers) != 2 {
		return HunkLocation{}, errs.Errorf(errs.DiffParse, "invalid hunk location: %s", value)
	}
	return HunkLocation{Start: numbers[0], Length: numbers[1]}, nil
}

func determineLineKind(line string) (LineKind, error) {
	if line == `\ No newline at end of file` {
		return EOFMarker, nil
	}
	if len(line) == 0 {
		return 0, errs.Errorf(errs.DiffParse, "invalid hunk line: %q", line)
	}
	switch line[0] {
	case '+':
		return Add, nil
	case '-':
		return Remove, nil
	case ' ':
		return Context, nil
	default:
		return 0, errs.Errorf(errs.DiffParse, "invalid hunk line: %q", line)
	}
}
