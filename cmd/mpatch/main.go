// Command mpatch re-aligns and applies a unified-format textual diff
// against a target source tree whose files have diverged from the
// source tree the diff was computed against.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/VariantSync/mpatch/internal/config"
	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/patch"
	"github.com/VariantSync/mpatch/pkg/driver"
)

// CLI is mpatch's single top-level command. There are no
// subcommands -- every run parses one patch file and applies it to one
// target tree, so the flag surface is flat, the same way a leaf
// command like cmd/zeta-mc keeps a single flat options struct instead
// of kong's nested-command style used by the multi-verb cmd/zeta.
type CLI struct {
	SourceDir   string `name:"sourcedir" help:"Root of the pre-patch source tree." type:"existingdir" required:""`
	TargetDir   string `name:"targetdir" help:"Root of the tree to be patched." default:"."`
	PatchFile   string `name:"patchfile" help:"Path to the unified diff to apply." type:"existingfile" required:""`
	RejectsFile string `name:"rejectsfile" help:"Path to write rejected changes to; printed to stderr if omitted."`
	Strip       int    `name:"strip" help:"Strip the given number of leading path components from diff headers." default:"0"`
	DryRun      bool   `name:"dryrun" help:"Compute the patch without writing any changes to disk."`
	Filter      string `name:"filter" help:"Rejection filter: distance or match." enum:"distance,match" default:""`
	Threshold   int    `name:"threshold" help:"Numeric threshold for the selected --filter." default:"0"`
	Quiet       bool   `name:"quiet" help:"Suppress the per-file progress bar and summary lines."`
	Verbose     bool   `name:"verbose" help:"Enable debug-level logging."`
}

func (c *CLI) buildFilter(cfg *config.Config) patch.Filter {
	kind := c.Filter
	threshold := cfg.Threshold
	if kind == "" {
		kind = string(cfg.Filter)
	}
	if c.Threshold != 0 {
		threshold = c.Threshold
	}
	switch config.FilterKind(kind) {
	case config.FilterMatch:
		return patch.InsideMatchFilter{K: threshold}
	case config.FilterDistance:
		return patch.DistanceFilter{Distance: threshold}
	default:
		return nil
	}
}

func (c *CLI) Run() error {
	if c.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading .mpatch.toml: %w", err)
	}

	patchArtifact, err := fileartifact.Read(c.PatchFile)
	if err != nil {
		return err
	}

	strip := c.Strip
	if strip == 0 {
		strip = cfg.Strip
	}

	opts := driver.Options{
		SourceDir:   c.SourceDir,
		TargetDir:   c.TargetDir,
		PatchText:   patchArtifact.String(),
		RejectsFile: c.RejectsFile,
		Strip:       strip,
		DryRun:      c.DryRun,
		Quiet:       c.Quiet,
		Color:       cfg.Color && isatty.IsTerminal(os.Stderr.Fd()),
		Filter:      c.buildFilter(cfg),
	}

	summary, err := driver.Run(context.Background(), opts)
	if err != nil {
		return err
	}
	if opts.RejectsFile == "" {
		driver.PrintRejects(summary, opts.Color)
	}
	return nil
}

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Name("mpatch"),
		kong.Description("Re-align and apply a unified diff against a drifted target tree."),
		kong.UsageOnError(),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run())
}
