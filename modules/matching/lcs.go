package matching

import "github.com/VariantSync/mpatch/modules/fileartifact"

// change is one non-equal segment of a Myers alignment: lines
// [p1, p1+del) of the source and [p2, p2+ins) of the target do not
// correspond to one another; everything strictly between the end of
// the previous change and the start of this one is an equal run.
type change struct {
	p1, p2, del, ins int
}

// LCSMatcher computes a line matching via the Myers O(ND) shortest
// edit script between two files' lines, reporting line
// correspondences rather than a renderable change list.
type LCSMatcher struct{}

// NewLCSMatcher returns a ready-to-use LCSMatcher.
func NewLCSMatcher() *LCSMatcher { return &LCSMatcher{} }

// MatchFiles implements Matcher.
func (LCSMatcher) MatchFiles(source, target *fileartifact.FileArtifact) *Matching {
	seq1, seq2 := source.Lines(), target.Lines()
	changes := myersDiff(seq1, seq2)

	sourceToTarget := make([]int, len(seq1))
	targetToSource := make([]int, len(seq2))
	for i := range sourceToTarget {
		sourceToTarget[i] = -1
	}
	for i := range targetToSource {
		targetToSource[i] = -1
	}

	p1, p2 := 0, 0
	for _, c := range changes {
		for i := 0; i < c.p1-p1; i++ {
			sourceToTarget[p1+i] = p2 + i
			targetToSource[p2+i] = p1 + i
		}
		p1 = c.p1 + c.del
		p2 = c.p2 + c.ins
	}
	for p1 < len(seq1) && p2 < len(seq2) {
		sourceToTarget[p1] = p2
		targetToSource[p2] = p1
		p1++
		p2++
	}

	sourceToTarget, targetToSource = appendVirtualTrailingLine(sourceToTarget, targetToSource, source, target)

	return New(source, target, sourceToTarget, targetToSource)
}

// appendVirtualTrailingLine models the invisible empty line implied by
// a trailing newline at end of file. Two files that both end with a
// newline have their virtual trailing lines matched to one another;
// a file that ends with a newline while its counterpart does not is
// given an extra, unmatched virtual line of its own. A completely
// empty file contributes no virtual line at all, matching the
// original tool's four-way case split.
func appendVirtualTrailingLine(sourceToTarget, targetToSource []int, source, target *fileartifact.FileArtifact) ([]int, []int) {
	sourceHasLines := source.Len() > 0
	targetHasLines := target.Len() > 0
	switch {
	case sourceHasLines && targetHasLines:
		switch {
		case source.HasTrailingNewline() && target.HasTrailingNewline():
			sourceToTarget = append(sourceToTarget, target.Len())
			targetToSource = append(targetToSource, source.Len())
		case source.HasTrailingNewline():
			sourceToTarget = append(sourceToTarget, -1)
		case target.HasTrailingNewline():
			targetToSource = append(targetToSource, -1)
		}
	case sourceHasLines && !targetHasLines:
		if source.HasTrailingNewline() {
			sourceToTarget = append(sourceToTarget, -1)
		}
	case !sourceHasLines && targetHasLines:
		if target.HasTrailingNewline() {
			targetToSource = append(targetToSource, -1)
		}
	}
	return sourceToTarget, targetToSource
}

// myersDiff computes the minimal list of non-equal segments between
// seq1 and seq2 using the classic O(ND) algorithm: it tracks, for each
// diagonal k = x-y, the furthest-reaching x reachable using d
// non-diagonal steps, backtracking through snakes once the sequences
// fully align.
func myersDiff(seq1, seq2 []string) []change {
	if len(seq1) == 0 && len(seq2) == 0 {
		return nil
	}
	if len(seq1) == 0 {
		return []change{{p1: 0, p2: 0, del: 0, ins: len(seq2)}}
	}
	if len(seq2) == 0 {
		return []change{{p1: 0, p2: 0, del: len(seq1), ins: 0}}
	}

	getXAfterSnake := func(x, y int) int {
		for x < len(seq1) && y < len(seq2) && seq1[x] == seq2[y] {
			x++
			y++
		}
		return x
	}

	v := newFastIntArray()
	v.set(0, getXAfterSnake(0, 0))
	paths := &fastSnakeArray{positive: make(map[int]*snakePath), negative: make(map[int]*snakePath)}
	if v.get(0) == 0 {
		paths.set(0, nil)
	} else {
		paths.set(0, &snakePath{x: 0, y: 0, length: v.get(0)})
	}

	d := 0
	k := 0
outer:
	for {
		d++
		lowerBound := -min(d, len(seq2)+(d%2))
		upperBound := min(d, len(seq1)+(d%2))
		for k = lowerBound; k <= upperBound; k += 2 {
			top, left := -1, -1
			if k != upperBound {
				top = v.get(k + 1)
			}
			if k != lowerBound {
				left = v.get(k-1) + 1
			}
			x := min(max(top, left), len(seq1))
			y := x - k
			if x > len(seq1) || y > len(seq2) {
				continue
			}
			newX := getXAfterSnake(x, y)
			v.set(k, newX)
			var prev *snakePath
			if x == top {
				prev = paths.get(k + 1)
			} else {
				prev = paths.get(k - 1)
			}
			if newX != x {
				paths.set(k, &snakePath{pre: prev, x: x, y: y, length: newX - x})
			} else {
				paths.set(k, prev)
			}
			if v.get(k) == len(seq1) && v.get(k)-k == len(seq2) {
				break outer
			}
		}
	}

	path := paths.get(k)
	lastX, lastY := len(seq1), len(seq2)
	var changes []change
	for {
		var endX, endY int
		if path != nil {
			endX = path.x + path.length
			endY = path.y + path.length
		}
		if endX != lastX || endY != lastY {
			changes = append(changes, change{p1: endX, p2: endY, del: lastX - endX, ins: lastY - endY})
		}
		if path == nil {
			break
		}
		lastX, lastY = path.x, path.y
		path = path.pre
	}
	for i, j := 0, len(changes)-1; i < j; i, j = i+1, j-1 {
		changes[i], changes[j] = changes[j], changes[i]
	}
	return changes
}

type snakePath struct {
	pre          *snakePath
	x, y, length int
}

// fastIntArray offers O(1) get/set for indices in
// (-infinity, +infinity) by keeping separate growable slices for
// non-negative and negative indices, mirroring the dual-array trick
// needed because Myers diagonals run from -d to +d.
type fastIntArray struct {
	positive []int
	negative []int
}

func newFastIntArray() *fastIntArray {
	return &fastIntArray{positive: make([]int, 10), negative: make([]int, 10)}
}

func (a *fastIntArray) get(i int) int {
	if i < 0 {
		i = -i - 1
		if i >= len(a.negative) {
			return 0
		}
		return a.negative[i]
	}
	if i >= len(a.positive) {
		return 0
	}
	return a.positive[i]
}

func (a *fastIntArray) set(i, v int) {
	if i < 0 {
		i = -i - 1
		if i >= len(a.negative) {
			grown := make([]int, len(a.negative)*2+1)
			copy(grown, a.negative)
			a.negative = grown
		}
		a.negative[i] = v
		return
	}
	if i >= len(a.positive) {
		grown := make([]int, len(a.positive)*2+1)
		copy(grown, a.positive)
		a.positive = grown
	}
	a.positive[i] = v
}

type fastSnakeArray struct {
	positive map[int]*snakePath
	negative map[int]*snakePath
}

func (a *fastSnakeArray) get(i int) *snakePath {
	if i < 0 {
		return a.negative[-i-1]
	}
	return a.positive[i]
}

func (a *fastSnakeArray) set(i int, v *snakePath) {
	if i < 0 {
		a.negative[-i-1] = v
		return
	}
	a.positive[i] = v
}
