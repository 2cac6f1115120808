package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VariantSync/mpatch/internal/config"
	"github.com/VariantSync/mpatch/modules/patch"
)

func TestBuildFilterUsesFlagOverCfg(t *testing.T) {
	cli := &CLI{Filter: "match", Threshold: 4}
	cfg := &config.Config{Filter: config.FilterDistance, Threshold: 1}
	f := cli.buildFilter(cfg)
	require.Equal(t, patch.InsideMatchFilter{K: 4}, f)
}

func TestBuildFilterFallsBackToConfig(t *testing.T) {
	cli := &CLI{}
	cfg := &config.Config{Filter: config.FilterDistance, Threshold: 7}
	f := cli.buildFilter(cfg)
	require.Equal(t, patch.DistanceFilter{Distance: 7}, f)
}

func TestBuildFilterNoneWhenUnset(t *testing.T) {
	cli := &CLI{}
	cfg := &config.Config{Filter: "", Threshold: 0}
	require.Nil(t, cli.buildFilter(cfg))
}
