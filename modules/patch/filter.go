package patch

import "github.com/VariantSync/mpatch/modules/matching"

// Filter decides, before alignment, whether a Change's eventual
// anchor is trustworthy enough to keep. Filters run on the raw
// FilePatch extracted straight from a diff -- Change.LineNumber still
// refers to the source-relative anchor used by alignment's fuzzy
// lookup, not a target line number. Surviving changes proceed to
// ToTarget; rejected ones are folded into the final AlignedPatch's
// RejectedChanges by the driver.
type Filter interface {
	Apply(p *FilePatch, m *matching.Matching) (kept *FilePatch, rejected []Change)
}

func applyFilter(p *FilePatch, m *matching.Matching, keep func(c Change, m *matching.Matching) bool) (*FilePatch, []Change) {
	kept := make([]Change, 0, len(p.Changes))
	var rejected []Change
	for _, c := range p.Changes {
		if keep(c, m) {
			kept = append(kept, c)
		} else {
			rejected = append(rejected, c)
		}
	}
	return &FilePatch{Changes: kept, ChangeType: p.ChangeType}, rejected
}

// DistanceFilter rejects an Add whose fuzzy anchor would have to skip
// at least Distance source lines to find a context line with a match
// in the target. Removes are always kept, since alignment itself
// already rejects any Remove that cannot be anchored exactly.
type DistanceFilter struct {
	Distance int
}

func (f DistanceFilter) Apply(p *FilePatch, m *matching.Matching) (*FilePatch, []Change) {
	return applyFilter(p, m, func(c Change, m *matching.Matching) bool {
		if c.ChangeType == Remove {
			return true
		}
		_, _, offset := m.TargetIndexFuzzy(c.LineNumber)
		return offset < f.Distance
	})
}

// InsideMatchFilter keeps an Add iff its anchor line and the K source
// lines immediately above and below it are all matched in the target,
// i.e. the surrounding context the Add relies on is itself stable.
// Lines of that window that fall outside the source file are not
// checked.
// A Remove is kept iff its own source line has a concrete match in
// the target.
type InsideMatchFilter struct {
	K int
}

func (f InsideMatchFilter) Apply(p *FilePatch, m *matching.Matching) (*FilePatch, []Change) {
	return applyFilter(p, m, func(c Change, m *matching.Matching) bool {
		if c.ChangeType == Remove {
			_, ok := m.TargetIndex(c.LineNumber)
			return ok
		}
		sourceLen := m.Source().Len()
		for offset := -f.K; offset <= f.K; offset++ {
			line := c.LineNumber + offset
			if line < 1 || line > sourceLen {
				continue
			}
			if _, ok := m.TargetIndex(line); !ok {
				return false
			}
		}
		return true
	})
}
