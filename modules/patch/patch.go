// Package patch turns a parsed file diff into a set of line-level
// Changes, aligns those changes against a present-day target file via
// a matching.Matching, filters out low-confidence changes, and
// applies what remains to produce a patched file or a set of rejects.
package patch

import (
	"fmt"

	"github.com/VariantSync/mpatch/modules/diffs"
)

// LineChangeType is whether a Change adds or removes a line.
type LineChangeType int

const (
	Add LineChangeType = iota
	Remove
)

func (t LineChangeType) String() string {
	if t == Add {
		return "Add"
	}
	return "Remove"
}

// rank orders Remove before Add when two changes land on the same
// target line, matching the sort contract changes must obey before
// being applied.
func (t LineChangeType) rank() int {
	if t == Remove {
		return 0
	}
	return 1
}

// FileChangeType is the kind of operation a FilePatch performs on its
// target file as a whole.
type FileChangeType int

const (
	Create FileChangeType = iota
	RemoveFile
	Modify
)

func (t FileChangeType) String() string {
	switch t {
	case Create:
		return "Create"
	case RemoveFile:
		return "Remove"
	case Modify:
		return "Modify"
	default:
		return "Unknown"
	}
}

// Change is a single line addition or removal, anchored to a line
// number that is re-interpreted at each stage of the pipeline: it
// starts out as a position in the source file (FromFileDiff), and
// becomes a position in the target file once ToTarget has run.
type Change struct {
	Line       string
	ChangeType LineChangeType
	LineNumber int
	ChangeID   int
}

func (c Change) String() string {
	marker := "+"
	if c.ChangeType == Remove {
		marker = "-"
	}
	return fmt.Sprintf("%s%s\n", marker, c.Line)
}

// Less implements the three-level ordering changes must be sorted by
// before being applied: line number ascending, Remove before Add on a
// tie, change id ascending on a further tie.
func Less(a, b Change) bool {
	if a.LineNumber != b.LineNumber {
		return a.LineNumber < b.LineNumber
	}
	if a.ChangeType.rank() != b.ChangeType.rank() {
		return a.ChangeType.rank() < b.ChangeType.rank()
	}
	return a.ChangeID < b.ChangeID
}

// FilePatch is the set of line changes extracted from a single
// diffs.FileDiff, not yet aligned to any particular target file.
type FilePatch struct {
	Changes    []Change
	ChangeType FileChangeType
}

// FromFileDiff builds a FilePatch from a parsed file diff. The file
// change type is determined from the first hunk's locations: a hunk
// whose source starts at line 0 means the file is being created; one
// whose target starts at 0 means the file is being removed; anything
// else is a modification.
func FromFileDiff(fd *diffs.FileDiff) (*FilePatch, error) {
	if len(fd.Hunks) == 0 {
		return nil, fmt.Errorf("no hunk in diff")
	}
	first := fd.Hunks[0]
	var changeType FileChangeType
	switch {
	case first.SourceLocation.Start == 0:
		changeType = Create
	case first.TargetLocation.Start == 0:
		changeType = RemoveFile
	default:
		changeType = Modify
	}

	var changes []Change
	changeID := 0
	for _, line := range fd.ChangedLines() {
		var lineNumber int
		var lineChangeType LineChangeType
		switch line.Kind {
		case diffs.Add:
			lineChangeType = Add
			// Added lines do not exist in the source file yet; they
			// only ever carry a change (anchor) location.
			lineNumber = line.SourceLine.ChangeValue()
		case diffs.Remove:
			lineChangeType = Remove
			// Removed lines must exist in the source file and so
			// always carry a real location.
			lineNumber = line.SourceLine.RealValue()
		default:
			return nil, fmt.Errorf("a change must always be an Add or Remove")
		}
		changes = append(changes, Change{
			Line:       line.Content(),
			ChangeType: lineChangeType,
			LineNumber: lineNumber,
			ChangeID:   changeID,
		})
		changeID++
	}

	return &FilePatch{Changes: changes, ChangeType: changeType}, nil
}
