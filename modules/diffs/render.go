package diffs

import "fmt"

func (k LineKind) String() string {
	switch k {
	case Context:
		return "Context"
	case Add:
		return "Add"
	case Remove:
		return "Remove"
	case EOFMarker:
		return "EOF"
	default:
		return "Unknown"
	}
}

func (l HunkLine) String() string {
	return l.Raw
}

// String renders the location using the GNU diff abbreviation: when
// start and length are both 1, only "1" is written; otherwise
// "start,length" is written in full, including the "0,0" location
// that marks an absent file (creation or deletion).
func (h HunkLocation) String() string {
	if h.Start == 1 && h.Length == 1 {
		return "1"
	}
	return fmt.Sprintf("%d,%d", h.Start, h.Length)
}

func (h *Hunk) String() string {
	s := fmt.Sprintf("@@ -%s +%s @@", h.SourceLocation, h.TargetLocation)
	for _, line := range h.Lines {
		s += "\n" + line.String()
	}
	return s
}

func (d DiffCommand) String() string { return string(d) }

// Header renders just the diff-command and source/target header lines,
// without any hunk body -- the three-line block identifying a FileDiff
// on its own, independent of how much of it changed.
func (f *FileDiff) Header() string {
	s := f.Command.String()
	s += fmt.Sprintf("\n--- %s\t%s", f.SourceFile.Path, f.SourceFile.Timestamp)
	s += fmt.Sprintf("\n+++ %s\t%s", f.TargetFile.Path, f.TargetFile.Timestamp)
	return s
}

func (f *FileDiff) String() string {
	s := f.Header()
	for _, h := range f.Hunks {
		s += "\n" + h.String()
	}
	return s
}

func (v *VersionDiff) String() string {
	s := ""
	for i, fd := range v.FileDiffs {
		if i > 0 {
			s += "\n"
		}
		s += fd.String()
	}
	return s
}
