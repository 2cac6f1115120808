package matching

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VariantSync/mpatch/modules/fileartifact"
)

func TestSimpleMatching(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"SAME LINE", "ANOTHER LINE", ""})
	target := fileartifact.FromLines("b", []string{"SAME LINE", "ANOTHER LINE", ""})

	m := NewLCSMatcher().MatchFiles(source, target)
	require.Same(t, source, m.Source())
	require.Same(t, target, m.Target())

	t1, ok := m.TargetIndex(1)
	require.True(t, ok)
	require.Equal(t, 1, t1)

	t2, ok := m.TargetIndex(2)
	require.True(t, ok)
	require.Equal(t, 2, t2)
}

func TestMatchingIsSymmetric(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"one", "two", "three"})
	target := fileartifact.FromLines("b", []string{"zero", "one", "two", "three"})

	m := NewLCSMatcher().MatchFiles(source, target)
	for sourceLine := 1; sourceLine <= source.Len(); sourceLine++ {
		targetLine, ok := m.TargetIndex(sourceLine)
		if !ok {
			continue
		}
		back, ok := m.SourceIndex(targetLine)
		require.True(t, ok)
		require.Equal(t, sourceLine, back)
	}
}

func TestSelfMatchingIsIdentity(t *testing.T) {
	content := []string{"alpha", "beta", "gamma", "delta"}
	file := fileartifact.FromLines("a", content)

	m := NewLCSMatcher().MatchFiles(file, file)
	for i := 1; i <= len(content); i++ {
		target, ok := m.TargetIndex(i)
		require.True(t, ok)
		require.Equal(t, i, target)
	}
}

func TestNoMatchForChangedLine(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"same", "different-source"})
	target := fileartifact.FromLines("b", []string{"same", "different-target"})

	m := NewLCSMatcher().MatchFiles(source, target)
	_, ok := m.TargetIndex(2)
	require.False(t, ok)
}

func TestTargetIndexFuzzyFindsAnchorAbove(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"ctx1", "removed", "ctx2"})
	target := fileartifact.FromLines("b", []string{"ctx1", "ctx2"})

	m := NewLCSMatcher().MatchFiles(source, target)
	target1, ok, offset := m.TargetIndexFuzzy(2)
	require.True(t, ok)
	require.Equal(t, 1, offset)
	require.Equal(t, 2, target1)
}

func TestTargetIndexFuzzyPrependsAtStart(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"gone1", "gone2"})
	target := fileartifact.FromLines("b", []string{"brand new"})

	m := NewLCSMatcher().MatchFiles(source, target)
	_, ok, _ := m.TargetIndexFuzzy(1)
	require.False(t, ok)
}

func TestTrailingNewlineBothMatch(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"one"})
	target := fileartifact.FromLines("b", []string{"one"})
	m := NewLCSMatcher().MatchFiles(source, target)
	target2, ok := m.TargetIndex(2)
	require.True(t, ok)
	require.Equal(t, 2, target2)
}

func TestTrailingNewlineSourceOnly(t *testing.T) {
	source := fileartifact.FromLines("a", []string{"one"})
	target, err := fileartifact.Read(writeTempFile(t, "one"))
	require.NoError(t, err)
	require.False(t, target.HasTrailingNewline())

	m := NewLCSMatcher().MatchFiles(source, target)
	_, ok := m.TargetIndex(2)
	require.False(t, ok)
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := t.TempDir() + "/f.txt"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
