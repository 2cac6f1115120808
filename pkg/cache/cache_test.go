package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/matching"
)

type countingMatcher struct {
	calls int
}

func (c *countingMatcher) MatchFiles(source, target *fileartifact.FileArtifact) *matching.Matching {
	c.calls++
	return matching.NewLCSMatcher().MatchFiles(source, target)
}

func TestMatchCacheMemoizesByContent(t *testing.T) {
	counter := &countingMatcher{}
	mc, err := New(counter, 1000, 4)
	require.NoError(t, err)
	defer mc.Close()

	source := fileartifact.FromLines("a", []string{"one", "two"})
	target := fileartifact.FromLines("b", []string{"one", "two"})

	m1, err := mc.MatchFiles(context.Background(), source, target)
	require.NoError(t, err)
	require.Equal(t, 1, counter.calls)

	m2, err := mc.MatchFiles(context.Background(), source, target)
	require.NoError(t, err)
	require.Equal(t, 1, counter.calls, "second lookup with identical content must hit the cache")
	require.Same(t, m1, m2)
}

func TestMatchCacheMissesOnContentChange(t *testing.T) {
	counter := &countingMatcher{}
	mc, err := New(counter, 1000, 4)
	require.NoError(t, err)
	defer mc.Close()

	a := fileartifact.FromLines("a", []string{"one"})
	b := fileartifact.FromLines("b", []string{"one"})
	c := fileartifact.FromLines("b", []string{"two"})

	_, err = mc.MatchFiles(context.Background(), a, b)
	require.NoError(t, err)
	_, err = mc.MatchFiles(context.Background(), a, c)
	require.NoError(t, err)
	require.Equal(t, 2, counter.calls)
}

func TestMatchCacheRejectsCancelledContext(t *testing.T) {
	mc, err := New(matching.NewLCSMatcher(), 1000, 4)
	require.NoError(t, err)
	defer mc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = mc.MatchFiles(ctx, fileartifact.New("a"), fileartifact.New("b"))
	require.Error(t, err)
}
