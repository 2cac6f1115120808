// Package matching computes a bidirectional line-level correspondence
// between two file artifacts and offers the fuzzy anchor-above lookup
// the aligner uses to re-anchor additions in a drifted target file.
package matching

import "github.com/VariantSync/mpatch/modules/fileartifact"

// Matcher determines the line matching between two file artifacts. An
// implementation is free to use any matching strategy (content
// equality, LCS, token-level diffing); LCSMatcher is the one shipped
// here.
type Matcher interface {
	MatchFiles(source, target *fileartifact.FileArtifact) *Matching
}

// Matching holds, for every line of the source and target files it
// was built from, the line number of its counterpart in the other
// file, or no match at all. Line numbers are stored 0-based and
// exposed 1-based by TargetIndex and SourceIndex. It owns both FileArtifacts so that
// a Matching can never be invalidated by code mutating the in-memory
// representations it was computed from.
type Matching struct {
	source         *fileartifact.FileArtifact
	target         *fileartifact.FileArtifact
	sourceToTarget []int // 0-based target line, or -1 for no match; index is 0-based source line
	targetToSource []int // 0-based source line, or -1 for no match; index is 0-based target line
}

// New builds a Matching from the given files and match vectors. Each
// entry of sourceToTarget/targetToSource must be either a 0-based line
// number in the other file, or -1 if the line has no match.
func New(source, target *fileartifact.FileArtifact, sourceToTarget, targetToSource []int) *Matching {
	return &Matching{source: source, target: target, sourceToTarget: sourceToTarget, targetToSource: targetToSource}
}

// Source returns the matched source file.
func (m *Matching) Source() *fileartifact.FileArtifact { return m.source }

// Target returns the matched target file.
func (m *Matching) Target() *fileartifact.FileArtifact { return m.target }

// TargetIndex returns the 1-based target line matched to the 1-based
// source line sourceIndex, and whether a match exists at all
// (sourceIndex is out of range or has no counterpart).
func (m *Matching) TargetIndex(sourceIndex int) (target int, ok bool) {
	if sourceIndex < 1 || sourceIndex > len(m.sourceToTarget) {
		return 0, false
	}
	v := m.sourceToTarget[sourceIndex-1]
	if v < 0 {
		return 0, false
	}
	return v + 1, true
}

// SourceIndex returns the 1-based source line matched to the 1-based
// target line targetIndex, and whether a match exists at all.
func (m *Matching) SourceIndex(targetIndex int) (source int, ok bool) {
	if targetIndex < 1 || targetIndex > len(m.targetToSource) {
		return 0, false
	}
	v := m.targetToSource[targetIndex-1]
	if v < 0 {
		return 0, false
	}
	return v + 1, true
}

// TargetIndexFuzzy walks upward from lineNumber (a 1-based source
// line) until it finds a source line with a match in the target file,
// and returns the 1-based target line to anchor on alongside the
// number of source lines it had to skip to get there.
//
// If lineNumber itself has a match, that match is returned with an
// offset of 0. If a match is found above lineNumber, the result is the
// matched target line plus one -- the change is anchored to be
// inserted immediately after that line, not to replace it. If no
// matched line is found all the way down to line 1, the result
// indicates the change should be prepended at the very start of the
// target file.
func (m *Matching) TargetIndexFuzzy(lineNumber int) (target int, ok bool, offset int) {
	line := lineNumber
	insertAfter := false
	for line > 0 {
		if t, found := m.TargetIndex(line); found {
			if insertAfter {
				return t + 1, true, offset
			}
			return t, true, offset
		}
		line--
		offset++
		insertAfter = true
	}
	return 0, false, offset
}
