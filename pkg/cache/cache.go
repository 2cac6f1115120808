// Package cache memoizes the LCS matching computed between a source
// file and a target file, keyed by the paths and content of both. A
// large tree patch can revisit the same unchanged file pair across
// file-diffs that touch it more than once; caching avoids recomputing
// the O(ND) Myers alignment each time. A cache lives for a single
// driver run.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"

	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/matching"
)

// MatchCache memoizes Matching computations. The zero value is not
// usable; build one with New.
type MatchCache struct {
	cache *ristretto.Cache[string, *matching.Matching]
	group singleflight.Group
	m     matching.Matcher
}

// New builds a MatchCache backed by a ristretto cache sized for
// numCounters tracked keys and maxCostMiB mebibytes of matchings, using
// m to compute cache misses. Each matching is costed by the byte size
// of its two files' content.
func New(m matching.Matcher, numCounters, maxCostMiB int64) (*MatchCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *matching.Matching]{
		NumCounters: numCounters,
		MaxCost:     maxCostMiB << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize match cache: %w", err)
	}
	return &MatchCache{cache: c, m: m}, nil
}

// key hashes both files' paths, content and trailing-newline state
// into a single cache key so that an on-disk edit between two driver
// passes invalidates the cached matching rather than serving a stale
// one. The trailing-newline bit must be part of the key: it is not
// reflected in String(), but the LCS matcher treats it as an invisible
// final line, so two files with identical lines and different
// trailing-newline state must not collide on the same cache entry.
func key(source, target *fileartifact.FileArtifact) string {
	h := blake3.New()
	_, _ = h.Write([]byte(source.Path()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(source.String()))
	_, _ = h.Write([]byte{0, boolByte(source.HasTrailingNewline())})
	_, _ = h.Write([]byte(target.Path()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(target.String()))
	_, _ = h.Write([]byte{0, boolByte(target.HasTrailingNewline())})
	return fmt.Sprintf("%x", h.Sum(nil))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// MatchFiles returns the Matching for (source, target), computing and
// caching it on a miss. Concurrent callers requesting the same pair
// collapse onto a single computation via singleflight.
func (c *MatchCache) MatchFiles(ctx context.Context, source, target *fileartifact.FileArtifact) (*matching.Matching, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key(source, target)
	if m, ok := c.cache.Get(k); ok {
		return m, nil
	}
	v, err, _ := c.group.Do(k, func() (any, error) {
		if m, ok := c.cache.Get(k); ok {
			return m, nil
		}
		m := c.m.MatchFiles(source, target)
		cost := int64(len(source.String())+len(target.String())) + 1
		c.cache.Set(k, m, cost)
		// Ristretto admits writes through a buffered channel; Wait
		// drains it so the value this same call just computed is
		// visible to the very next Get instead of racing the
		// background writer on a second cache miss.
		c.cache.Wait()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*matching.Matching), nil
}

// Close releases the cache's background resources. It must be called
// once the driver run is finished.
func (c *MatchCache) Close() {
	c.cache.Close()
}
