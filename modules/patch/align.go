package patch

import (
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/matching"
)

// AlignedPatch is a FilePatch whose changes have each been mapped to a
// concrete line number in a specific target file.
type AlignedPatch struct {
	Changes         []Change
	RejectedChanges []Change
	Target          *fileartifact.FileArtifact
	ChangeType      FileChangeType
}

// ToTarget consumes p and aligns its changes against targetMatching.
// Files being created are aligned by definition (their changes are
// already anchored to a position in a file that does not exist yet).
// Removes are anchored to the exact source line that was removed, via
// a strict (non-fuzzy) lookup, and rejected outright if that line no
// longer has a match in the target. Adds are anchored via the fuzzy
// anchor-above lookup and are never rejected by alignment alone --
// only by an explicit Filter afterward.
func ToTarget(p *FilePatch, targetMatching *matching.Matching) *AlignedPatch {
	target := targetMatching.Target()

	if p.ChangeType == Create {
		return &AlignedPatch{
			Changes:    p.Changes,
			Target:     target,
			ChangeType: p.ChangeType,
		}
	}

	changes := make([]Change, 0, len(p.Changes))
	var rejected []Change
	for _, change := range p.Changes {
		var targetLine int
		var ok bool
		switch change.ChangeType {
		case Add:
			targetLine, ok, _ = targetMatching.TargetIndexFuzzy(change.LineNumber)
			if !ok {
				// Adds without any anchor above them are prepended at
				// the very start of the file.
				targetLine, ok = 0, true
			}
		case Remove:
			targetLine, ok = targetMatching.TargetIndex(change.LineNumber)
		}
		if ok {
			change.LineNumber = targetLine
			changes = append(changes, change)
		} else {
			rejected = append(rejected, change)
		}
	}

	return &AlignedPatch{
		Changes:         sortChanges(changes),
		RejectedChanges: rejected,
		Target:          target,
		ChangeType:      p.ChangeType,
	}
}

// ToMultipleTargets aligns a clone of p's changes against each of
// targetMatchings in turn, for patching the same source change across
// several drifted copies of a file.
func ToMultipleTargets(p *FilePatch, targetMatchings []*matching.Matching) []*AlignedPatch {
	out := make([]*AlignedPatch, 0, len(targetMatchings))
	for _, m := range targetMatchings {
		clone := &FilePatch{Changes: append([]Change(nil), p.Changes...), ChangeType: p.ChangeType}
		out = append(out, ToTarget(clone, m))
	}
	return out
}

// sortChanges orders changes by the (line, type, id) contract using a
// binary heap, the same ordering primitive used elsewhere in this
// codebase's history-walking code for committer-timestamp order.
func sortChanges(changes []Change) []Change {
	heap := binaryheap.NewWith(func(a, b interface{}) int {
		ca, cb := a.(Change), b.(Change)
		switch {
		case Less(ca, cb):
			return -1
		case Less(cb, ca):
			return 1
		default:
			return 0
		}
	})
	for _, c := range changes {
		heap.Push(c)
	}
	sorted := make([]Change, 0, len(changes))
	for {
		v, ok := heap.Pop()
		if !ok {
			break
		}
		sorted = append(sorted, v.(Change))
	}
	return sorted
}
