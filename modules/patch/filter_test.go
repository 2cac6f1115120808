package patch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/matching"
)

func buildMatching(t *testing.T, source, target []string) *matching.Matching {
	t.Helper()
	return matching.NewLCSMatcher().MatchFiles(
		fileartifact.FromLines("source", source),
		fileartifact.FromLines("target", target),
	)
}

func TestDistanceFilterRejectsFarAnchors(t *testing.T) {
	m := buildMatching(t, []string{"a", "b", "c", "d"}, []string{"a", "d"})
	patch := &FilePatch{
		Changes: []Change{{Line: "x", ChangeType: Add, LineNumber: 3, ChangeID: 0}},
	}
	kept, rejected := DistanceFilter{Distance: 2}.Apply(patch, m)
	require.Empty(t, kept.Changes)
	require.Len(t, rejected, 1)
}

func TestDistanceFilterKeepsCloseAnchors(t *testing.T) {
	m := buildMatching(t, []string{"a", "b", "c", "d"}, []string{"a", "b", "d"})
	patch := &FilePatch{
		Changes: []Change{{Line: "x", ChangeType: Add, LineNumber: 3, ChangeID: 0}},
	}
	kept, rejected := DistanceFilter{Distance: 5}.Apply(patch, m)
	require.Len(t, kept.Changes, 1)
	require.Empty(t, rejected)
}

func TestDistanceFilterAlwaysKeepsRemoves(t *testing.T) {
	m := buildMatching(t, []string{"a"}, []string{})
	patch := &FilePatch{
		Changes: []Change{{Line: "a", ChangeType: Remove, LineNumber: 1, ChangeID: 0}},
	}
	kept, rejected := DistanceFilter{Distance: 0}.Apply(patch, m)
	require.Len(t, kept.Changes, 1)
	require.Empty(t, rejected)
}

func TestInsideMatchFilterRejectsUnstableContext(t *testing.T) {
	m := buildMatching(t, []string{"a", "changed", "c"}, []string{"a", "different", "c"})
	patch := &FilePatch{
		Changes: []Change{{Line: "x", ChangeType: Add, LineNumber: 2, ChangeID: 0}},
	}
	kept, rejected := InsideMatchFilter{K: 1}.Apply(patch, m)
	require.Empty(t, kept.Changes)
	require.Len(t, rejected, 1)
}
