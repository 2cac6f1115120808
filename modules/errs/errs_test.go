package errs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorPrinting(t *testing.T) {
	err := New("error to print", IO)
	require.Equal(t, "IOError: error to print", err.Error())
}

func TestKindPrinting(t *testing.T) {
	require.Equal(t, "DiffParseError", DiffParse.String())
	require.Equal(t, "IOError", IO.String())
	require.Equal(t, "PatchError", Patch.String())
}

func TestFromIOErrorNil(t *testing.T) {
	require.Nil(t, FromIOError(nil))
}
