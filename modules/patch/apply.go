package patch

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/VariantSync/mpatch/modules/errs"
	"github.com/VariantSync/mpatch/modules/fileartifact"
)

// PatchOutcome is the result of applying an AlignedPatch: the
// resulting file content (unwritten if dryrun was set) and whatever
// changes could not be applied.
type PatchOutcome struct {
	PatchedFile     *fileartifact.FileArtifact
	RejectedChanges []Change
	ChangeType      FileChangeType
}

// Apply consumes p and applies it to its target file, honoring the
// file-existence precondition for p's ChangeType: Create requires the
// target to be absent, Modify and Remove require it to be present. A
// precondition violation rejects every change -- both the surviving
// ones and whatever was already rejected during filtering or
// alignment -- re-sorted by line number alone, and returns the target
// completely unmodified.
func Apply(p *AlignedPatch, dryrun bool) (*PatchOutcome, error) {
	targetExists := p.Target.Exists()
	violatesPrecondition := targetExists
	if p.ChangeType != Create {
		violatesPrecondition = !targetExists
	}
	if violatesPrecondition {
		rejectAll(p)
		return &PatchOutcome{
			PatchedFile:     p.Target,
			RejectedChanges: p.RejectedChanges,
			ChangeType:      p.ChangeType,
		}, nil
	}

	switch p.ChangeType {
	case Create:
		return applyCreate(p, dryrun)
	case RemoveFile:
		return applyRemove(p, dryrun)
	default:
		return applyModify(p, dryrun)
	}
}

func rejectAll(p *AlignedPatch) {
	rejects := append(append([]Change(nil), p.Changes...), p.RejectedChanges...)
	sort.Slice(rejects, func(i, j int) bool { return rejects[i].LineNumber < rejects[j].LineNumber })
	p.Changes = nil
	p.RejectedChanges = rejects
}

// applyModify walks the target's existing lines in order, consuming
// aligned changes as it goes: an Add whose line number has been
// reached (<=) is spliced in before the line currently being
// processed; a Remove whose line number exactly matches the line
// currently being processed is dropped instead of copied forward.
// A Remove that is never reached because it was anchored past the
// target's last line is a fatal PatchError -- distinct from an
// ordinary rejected change -- since it means the alignment or
// upstream parsing produced an anchor applyModify cannot honor.
func applyModify(p *AlignedPatch, dryrun bool) (*PatchOutcome, error) {
	lines := p.Target.Lines()
	changes := p.Changes
	idx := 0

	targetLineNumber := 1
	var patched []string
linesLoop:
	for _, line := range lines {
		for idx < len(changes) {
			c := changes[idx]
			var proceed bool
			switch c.ChangeType {
			case Add:
				// Adds are anchored to the context line above, i.e.
				// at or below the line currently being processed.
				proceed = c.LineNumber <= targetLineNumber
			case Remove:
				// Removes are anchored to the exact line being removed.
				proceed = c.LineNumber == targetLineNumber
			}
			if !proceed {
				break
			}
			idx++
			if c.ChangeType == Add {
				patched = append(patched, c.Line)
				continue
			}
			targetLineNumber++
			continue linesLoop
		}
		patched = append(patched, line)
		targetLineNumber++
	}

	for _, c := range changes[idx:] {
		if c.ChangeType == Add {
			patched = append(patched, c.Line)
			continue
		}
		return nil, errs.Errorf(errs.Patch, "there were unprocessed changes in the patch: remove anchored at line %d", c.LineNumber)
	}

	patchedFile := fileartifact.FromLines(p.Target.Path(), patched)
	if !dryrun {
		if err := patchedFile.Write(); err != nil {
			return nil, err
		}
	}
	return &PatchOutcome{PatchedFile: patchedFile, RejectedChanges: p.RejectedChanges, ChangeType: p.ChangeType}, nil
}

func applyCreate(p *AlignedPatch, dryrun bool) (*PatchOutcome, error) {
	path := p.Target.Path()
	lines := make([]string, 0, len(p.Changes))
	for _, c := range p.Changes {
		lines = append(lines, c.Line)
	}

	if !dryrun {
		if parent := filepath.Dir(path); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, errs.FromIOError(err)
			}
		}
	}

	patchedFile := fileartifact.FromLines(path, lines)
	if !dryrun {
		if err := patchedFile.WriteNew(); err != nil {
			return nil, err
		}
	}
	return &PatchOutcome{PatchedFile: patchedFile, RejectedChanges: p.RejectedChanges, ChangeType: p.ChangeType}, nil
}

func applyRemove(p *AlignedPatch, dryrun bool) (*PatchOutcome, error) {
	path := p.Target.Path()
	if !dryrun {
		if err := os.Remove(path); err != nil {
			return nil, errs.FromIOError(err)
		}
	}
	return &PatchOutcome{
		PatchedFile:     fileartifact.FromLines(path, nil),
		RejectedChanges: p.RejectedChanges,
		ChangeType:      p.ChangeType,
	}, nil
}
