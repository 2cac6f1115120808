package diffs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const simpleDiff = `diff -u a/main.c b/main.c
--- a/main.c	2024-01-01 00:00:00
+++ b/main.c	2024-01-02 00:00:00
@@ -3,3 +3,3 @@
 context before
-REMOVED
+ADDED
 context after
`

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

func TestParseSimpleDiff(t *testing.T) {
	v, err := Parse(simpleDiff)
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	fd := v.FileDiffs[0]
	require.Equal(t, "a/main.c", fd.SourceFile.Path)
	require.Equal(t, "b/main.c", fd.TargetFile.Path)
	require.Len(t, fd.Hunks, 1)
	hunk := fd.Hunks[0]
	require.Equal(t, HunkLocation{Start: 3, Length: 3}, hunk.SourceLocation)
	require.Equal(t, HunkLocation{Start: 3, Length: 3}, hunk.TargetLocation)

	changes := fd.ChangedLines()
	require.Len(t, changes, 2)
	require.Equal(t, Remove, changes[0].Kind)
	require.Equal(t, 4, changes[0].SourceLine.RealValue())
	require.Equal(t, Add, changes[1].Kind)
	require.Equal(t, 4, changes[1].SourceLine.ChangeValue())
}

func TestHunkLocationAbbreviation(t *testing.T) {
	require.Equal(t, "1", HunkLocation{Start: 1, Length: 1}.String())
	require.Equal(t, "0,0", HunkLocation{Start: 0, Length: 0}.String())
	require.Equal(t, "3,3", HunkLocation{Start: 3, Length: 3}.String())
}

func TestHunkLocationDefaultLength(t *testing.T) {
	loc, err := parseHunkLocation("-42")
	require.NoError(t, err)
	require.Equal(t, HunkLocation{Start: 42, Length: 42}, loc)
}

func TestRoundTrip(t *testing.T) {
	v, err := Parse(simpleDiff)
	require.NoError(t, err)
	rendered := v.String()
	v2, err := Parse(rendered)
	require.NoError(t, err)
	require.Equal(t, v.String(), v2.String())
}

func TestDetermineLineKindRejectsInvalid(t *testing.T) {
	_, err := determineLineKind("not a valid format")
	require.Error(t, err)
}

func TestDetermineLineKindEOF(t *testing.T) {
	kind, err := determineLineKind(`\ No newline at end of file`)
	require.NoError(t, err)
	require.Equal(t, EOFMarker, kind)
}
