package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VariantSync/mpatch/modules/fileartifact"
)

func TestApplyAddLinesAtEnd(t *testing.T) {
	artifact := fileartifact.FromLines("unused", []string{"first line"})
	changes := []Change{
		{Line: "second line", ChangeType: Add, LineNumber: 2, ChangeID: 0},
		{Line: "third line", ChangeType: Add, LineNumber: 2, ChangeID: 1},
	}
	aligned := &AlignedPatch{Changes: changes, Target: artifact, ChangeType: Modify}

	// Force the precondition check to see the target as "present".
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("first line"), 0o644))
	aligned.Target = fileartifact.FromLines(path, []string{"first line"})

	outcome, err := Apply(aligned, true)
	require.NoError(t, err)
	require.Empty(t, outcome.RejectedChanges)
	require.Equal(t, []string{"first line", "second line", "third line"}, outcome.PatchedFile.Lines())
}

func TestApplyRemoveAfterEndIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("first line"), 0o644))

	aligned := &AlignedPatch{
		Changes:    []Change{{Line: "second line", ChangeType: Remove, LineNumber: 2, ChangeID: 0}},
		Target:     fileartifact.FromLines(path, []string{"first line"}),
		ChangeType: Modify,
	}
	_, err := Apply(aligned, true)
	require.Error(t, err)
}

func TestApplyCreateWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "new.txt")
	aligned := &AlignedPatch{
		Changes:    []Change{{Line: "hello", ChangeType: Add, LineNumber: 1, ChangeID: 0}},
		Target:     fileartifact.New(path),
		ChangeType: Create,
	}
	outcome, err := Apply(aligned, false)
	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, outcome.PatchedFile.Lines())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(content))
}

func TestApplyCreateRejectsWhenTargetExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(path, []byte("already here"), 0o644))

	aligned := &AlignedPatch{
		Changes:    []Change{{Line: "hello", ChangeType: Add, LineNumber: 1, ChangeID: 0}},
		Target:     fileartifact.FromLines(path, []string{"already here"}),
		ChangeType: Create,
	}
	outcome, err := Apply(aligned, true)
	require.NoError(t, err)
	require.Len(t, outcome.RejectedChanges, 1)
}

func TestApplyRemoveDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("bye"), 0o644))

	aligned := &AlignedPatch{
		Target:     fileartifact.FromLines(path, []string{"bye"}),
		ChangeType: RemoveFile,
	}
	_, err := Apply(aligned, false)
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
