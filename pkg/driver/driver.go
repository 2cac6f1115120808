// Package driver is the thin top-level orchestration: for every
// FileDiff in a parsed VersionDiff it resolves source/target paths,
// reads both files (tolerating an absent one), computes a matching,
// derives and filters a patch, aligns it, applies it, and reports the
// outcome -- continuing to the next file-diff on a rejection, but
// aborting the whole run on a parse or I/O error.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/VariantSync/mpatch/modules/diffs"
	"github.com/VariantSync/mpatch/modules/errs"
	"github.com/VariantSync/mpatch/modules/fileartifact"
	"github.com/VariantSync/mpatch/modules/matching"
	"github.com/VariantSync/mpatch/modules/patch"
	"github.com/VariantSync/mpatch/pkg/cache"
)

// Options configures a single driver Run.
type Options struct {
	SourceDir   string
	TargetDir   string
	PatchText   string
	RejectsFile string
	Strip       int
	DryRun      bool
	Quiet       bool
	Color       bool
	Filter      patch.Filter
}

// FileResult is the per-file-diff outcome reported by Run.
type FileResult struct {
	ChangeType patch.FileChangeType
	TargetPath string
	Rejected   []RejectedFile
}

// RejectedFile pairs a FileDiff's rejected changes with the header
// needed to render them in the rejects-file format.
type RejectedFile struct {
	Diff    *diffs.FileDiff
	Changes []patch.Change
}

// Summary is the aggregate result of an entire driver Run.
type Summary struct {
	Results []FileResult
}

// Run parses opts.PatchText, applies every contained FileDiff in
// order, and returns a Summary. A diff-parse error is always fatal. An
// I/O error reading or writing one target file is fatal to the whole
// run. Rejections are never fatal; they accumulate into the returned
// Summary and, if opts.RejectsFile is set, are written out via
// WriteRejects.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	version, err := diffs.Parse(opts.PatchText)
	if err != nil {
		return nil, err
	}

	mcache, err := cache.New(matching.NewLCSMatcher(), 1e4, 16)
	if err != nil {
		return nil, err
	}
	defer mcache.Close()

	var bar *mpb.Bar
	var p *mpb.Progress
	if !opts.Quiet {
		p = mpb.New(mpb.WithOutput(os.Stderr), mpb.WithAutoRefresh())
		bar = p.New(int64(version.Len()),
			mpb.BarStyle().Filler("#").Padding(" "),
			mpb.PrependDecorators(decor.Name("apply ", decor.WC{W: 6})),
			mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
		)
	}

	summary := &Summary{}
	for _, fd := range version.FileDiffs {
		result, err := applyOne(ctx, mcache, opts, fd)
		if err != nil {
			if bar != nil {
				bar.Abort(false)
				p.Wait()
			}
			return nil, err
		}
		summary.Results = append(summary.Results, *result)
		if bar != nil {
			bar.Increment()
		}
	}
	if p != nil {
		p.Wait()
	}

	if opts.RejectsFile != "" {
		if err := WriteRejects(opts.RejectsFile, summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func applyOne(ctx context.Context, mcache *cache.MatchCache, opts Options, fd *diffs.FileDiff) (*FileResult, error) {
	sourcePath := filepath.Join(opts.SourceDir, fileartifact.StripPath(fd.SourceFile.Path, opts.Strip))
	targetPath := filepath.Join(opts.TargetDir, fileartifact.StripPath(fd.TargetFile.Path, opts.Strip))

	sourceArtifact, err := fileartifact.ReadOrCreateEmpty(sourcePath)
	if err != nil {
		return nil, err
	}
	targetArtifact, err := fileartifact.ReadOrCreateEmpty(targetPath)
	if err != nil {
		return nil, err
	}

	fp, err := patch.FromFileDiff(fd)
	if err != nil {
		return nil, errs.Errorf(errs.DiffParse, "%s: %v", fd.TargetFile.Path, err)
	}

	m, err := mcache.MatchFiles(ctx, sourceArtifact, targetArtifact)
	if err != nil {
		return nil, err
	}

	var filterRejected []patch.Change
	if opts.Filter != nil && fp.ChangeType != patch.Create {
		fp, filterRejected = opts.Filter.Apply(fp, m)
	}

	aligned := patch.ToTarget(fp, m)
	aligned.RejectedChanges = append(aligned.RejectedChanges, filterRejected...)

	outcome, err := patch.Apply(aligned, opts.DryRun)
	if err != nil {
		return nil, err
	}

	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n", colorizeChangeType(opts.Color, outcome.ChangeType), targetPath)
	}

	return &FileResult{
		ChangeType: outcome.ChangeType,
		TargetPath: targetPath,
		Rejected:   nonEmptyRejects(fd, outcome.RejectedChanges),
	}, nil
}

func nonEmptyRejects(fd *diffs.FileDiff, changes []patch.Change) []RejectedFile {
	if len(changes) == 0 {
		return nil
	}
	return []RejectedFile{{Diff: fd, Changes: changes}}
}
