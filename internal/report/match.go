package report

import (
	"math"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"records-backend/internal/blocks"
)

// Scanned forms never carry labels verbatim, so field lookup goes through a
// bigram similarity match against the labels actually present on the page.
// Same metric the upstream form parser used; labels are matched exactly as
// OCR produced them, case and punctuation included.
var diceMetric = &metrics.SorensenDice{CaseSensitive: true, NgramSize: 2}

// Candidate is one value found under a label, with the label block's anchor.
type Candidate struct {
	Value  string
	Anchor blocks.Point
}

// FieldIndex maps the raw labels of one page to their candidate values, both
// kept in block-iteration order.
type FieldIndex struct {
	labels  []string
	byLabel map[string][]Candidate
}

// NewFieldIndex builds the label index from one page's block graph.
func NewFieldIndex(list []blocks.Block) *FieldIndex {
	fi := &FieldIndex{byLabel: make(map[string][]Candidate)}
	g := blocks.Partition(list)
	for _, p := range g.Pairs() {
		if _, seen := fi.byLabel[p.Label]; !seen {
			fi.labels = append(fi.labels, p.Label)
		}
		fi.byLabel[p.Label] = append(fi.byLabel[p.Label], Candidate{Value: p.Value, Anchor: p.Anchor})
	}
	return fi
}

// bestLabel returns the raw label most similar to field. Ties keep the
// first-encountered label. ok is false only when the page has no labels.
func (fi *FieldIndex) bestLabel(field string) (string, bool) {
	if len(fi.labels) == 0 {
		return "", false
	}
	best := fi.labels[0]
	bestScore := strutil.Similarity(field, best, diceMetric)
	for _, label := range fi.labels[1:] {
		if score := strutil.Similarity(field, label, diceMetric); score > bestScore {
			best, bestScore = label, score
		}
	}
	return best, true
}

// Value resolves field against the page labels and returns the
// first-encountered candidate value, or "" when the page has no labels.
func (fi *FieldIndex) Value(field string) string {
	return fi.pick(field, nil, 0)
}

// ValueNear resolves field, re-sorts its candidates by ascending distance to
// ref, and returns the candidate at position. Out-of-range positions yield "".
func (fi *FieldIndex) ValueNear(field string, ref blocks.Point, position int) string {
	return fi.pick(field, &ref, position)
}

// Anchor returns the anchor point of the first candidate for the label best
// matching field. Used to derive per-page reference points.
func (fi *FieldIndex) Anchor(field string) (blocks.Point, bool) {
	label, ok := fi.bestLabel(field)
	if !ok {
		return blocks.Point{}, false
	}
	cands := fi.byLabel[label]
	if len(cands) == 0 {
		return blocks.Point{}, false
	}
	return cands[0].Anchor, true
}

func (fi *FieldIndex) pick(field string, ref *blocks.Point, position int) string {
	label, ok := fi.bestLabel(field)
	if !ok {
		return ""
	}
	cands := fi.byLabel[label]
	if ref != nil {
		sorted := make([]Candidate, len(cands))
		copy(sorted, cands)
		sort.SliceStable(sorted, func(i, j int) bool {
			return distance(*ref, sorted[i].Anchor) < distance(*ref, sorted[j].Anchor)
		})
		cands = sorted
	}
	if position < 0 || position >= len(cands) {
		return ""
	}
	return cands[position].Value
}

func distance(a, b blocks.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
