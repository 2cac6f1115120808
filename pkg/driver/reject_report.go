package driver

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/VariantSync/mpatch/modules/errs"
	"github.com/VariantSync/mpatch/modules/patch"
)

// colorizeChangeType renders a FileChangeType the way the driver's
// one-line-per-file summary is printed, colored by type when color is
// enabled: green for Create, red for Remove, yellow for Modify.
func colorizeChangeType(color bool, t patch.FileChangeType) string {
	if !color {
		return t.String()
	}
	var style string
	switch t {
	case patch.Create:
		style = "green"
	case patch.RemoveFile:
		style = "red"
	default:
		style = "yellow"
	}
	return ansi.Color(t.String(), style)
}

// WriteRejects writes every rejected change recorded in summary to
// path: one block per rejected FileDiff, starting with its header
// (diff-command plus source/target header lines, no hunk body),
// followed by one "<change_id>: <+|-><content>" line per reject. The
// file is created with create-new (O_EXCL) semantics on first use -- it
// must not already exist -- rather than being truncated and
// overwritten.
func WriteRejects(path string, summary *Summary) error {
	var blocks []RejectedFile
	for _, r := range summary.Results {
		blocks = append(blocks, r.Rejected...)
	}
	if len(blocks) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.FromIOError(err)
	}
	defer f.Close()

	for _, block := range blocks {
		if _, err := fmt.Fprintf(f, "%s\n", block.Diff.Header()); err != nil {
			return errs.FromIOError(err)
		}
		for _, c := range block.Changes {
			marker := "+"
			if c.ChangeType == patch.Remove {
				marker = "-"
			}
			if _, err := fmt.Fprintf(f, "%d: %s%s\n", c.ChangeID, marker, c.Line); err != nil {
				return errs.FromIOError(err)
			}
		}
	}
	return f.Sync()
}

// PrintRejects writes a human-readable rendering of summary's rejects
// to stderr, colorized when color is true -- used when the caller did
// not supply --rejectsfile. When stderr is
// itself a terminal, each reject's content is truncated to fit its
// width rather than wrapping mid-line.
func PrintRejects(summary *Summary, color bool) {
	width, haveWidth := terminalWidth()
	for _, r := range summary.Results {
		for _, block := range r.Rejected {
			header := fmt.Sprintf("rejects for %s", block.Diff.TargetFile.Path)
			if color {
				header = ansi.Color(header, "red+b")
			}
			fmt.Fprintln(os.Stderr, header)
			idWidth := changeIDColumnWidth(block.Changes)
			for _, c := range block.Changes {
				marker := "+"
				if c.ChangeType == patch.Remove {
					marker = "-"
				}
				id := fmt.Sprintf("%d:", c.ChangeID)
				content := c.Line
				if haveWidth {
					prefix := 2 + idWidth + 1 + 1
					if max := width - prefix; max > 1 {
						content = truncateToWidth(content, max)
					}
				}
				fmt.Fprintf(os.Stderr, "  %s%s %s%s\n", id, pad(id, idWidth), marker, content)
			}
		}
	}
}

// terminalWidth reports stderr's current column width, when stderr is
// a terminal that reports one.
func terminalWidth() (int, bool) {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 0, false
	}
	return w, true
}

// truncateToWidth shortens s to at most max display columns (cutting
// only between grapheme clusters, with wide characters counting as
// two columns), appending an ellipsis when it had to cut content
// short.
func truncateToWidth(s string, max int) string {
	if uniseg.StringWidth(s) <= max {
		return s
	}
	var b strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		piece := gr.Str()
		w := uniseg.StringWidth(piece)
		if width+w > max-1 {
			break
		}
		b.WriteString(piece)
		width += w
	}
	b.WriteRune('…')
	return b.String()
}

// changeIDColumnWidth finds the display width of the widest "<id>:"
// label among changes, so the reject listing's content column lines
// up.
func changeIDColumnWidth(changes []patch.Change) int {
	width := 0
	for _, c := range changes {
		label := fmt.Sprintf("%d:", c.ChangeID)
		if w := uniseg.StringWidth(label); w > width {
			width = w
		}
	}
	return width
}

func pad(s string, width int) string {
	if w := uniseg.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w)
	}
	return ""
}
