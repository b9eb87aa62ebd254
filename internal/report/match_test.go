package report

import (
	"fmt"
	"testing"

	"records-backend/internal/blocks"
)

// pagePair builds the four blocks of one labeled pair: the key and value
// KEY_VALUE_SET blocks plus a WORD child each.
func pagePair(n int, label, value string, box blocks.BoundingBox) []blocks.Block {
	kw := fmt.Sprintf("kw%d", n)
	vw := fmt.Sprintf("vw%d", n)
	k := fmt.Sprintf("k%d", n)
	v := fmt.Sprintf("v%d", n)
	return []blocks.Block{
		{ID: kw, Type: blocks.TypeWord, Text: label},
		{ID: vw, Type: blocks.TypeWord, Text: value},
		{
			ID:          k,
			Type:        blocks.TypeKeyValueSet,
			EntityTypes: []string{blocks.EntityKey},
			Box:         box,
			Relationships: []blocks.Relationship{
				{Type: blocks.RelationChild, IDs: []string{kw}},
				{Type: blocks.RelationValue, IDs: []string{v}},
			},
		},
		{
			ID:            v,
			Type:          blocks.TypeKeyValueSet,
			EntityTypes:   []string{"VALUE"},
			Relationships: []blocks.Relationship{{Type: blocks.RelationChild, IDs: []string{vw}}},
		},
	}
}

func boxAt(x, y float64) blocks.BoundingBox {
	return blocks.BoundingBox{Left: x, Top: y}
}

func TestValueMatchesClosestLabel(t *testing.T) {
	var list []blocks.Block
	list = append(list, pagePair(1, "Date", "01/15/2020", boxAt(0.1, 0.1))...)
	list = append(list, pagePair(2, "Location", "Newark", boxAt(0.1, 0.2))...)

	fi := NewFieldIndex(list)

	if got := fi.Value("Dale"); got != "01/15/2020" {
		t.Fatalf("expected fuzzy match on Date, got %q", got)
	}
	if got := fi.Value("Locatlon"); got != "Newark" {
		t.Fatalf("expected fuzzy match on Location, got %q", got)
	}
}

func TestValueEmptyPage(t *testing.T) {
	fi := NewFieldIndex(nil)
	if got := fi.Value("Date"); got != "" {
		t.Fatalf("expected empty value on empty page, got %q", got)
	}
	if _, ok := fi.Anchor("Date"); ok {
		t.Fatalf("expected no anchor on empty page")
	}
}

func TestValueNearSortsByDistance(t *testing.T) {
	// Two "Race" pairs: the officer one near the badge, the subject one
	// lower on the page.
	var list []blocks.Block
	list = append(list, pagePair(1, "Badge#", "1042", boxAt(0.5, 0.1))...)
	list = append(list, pagePair(2, "Race", "W", boxAt(0.5, 0.15))...)
	list = append(list, pagePair(3, "Race", "B", boxAt(0.5, 0.6))...)

	fi := NewFieldIndex(list)

	badge, ok := fi.Anchor("Badge#")
	if !ok {
		t.Fatalf("expected badge anchor")
	}

	if got := fi.ValueNear("Race", badge, 0); got != "W" {
		t.Fatalf("expected nearest Race to be W, got %q", got)
	}
	if got := fi.ValueNear("Race", badge, 1); got != "B" {
		t.Fatalf("expected second Race to be B, got %q", got)
	}
}

func TestValueNearOutOfRange(t *testing.T) {
	list := pagePair(1, "Race", "W", boxAt(0.5, 0.15))
	fi := NewFieldIndex(list)

	if got := fi.ValueNear("Race", blocks.Point{}, 1); got != "" {
		t.Fatalf("expected empty value for out-of-range position, got %q", got)
	}
	if got := fi.ValueNear("Race", blocks.Point{}, -1); got != "" {
		t.Fatalf("expected empty value for negative position, got %q", got)
	}
}

func TestValueNearDoesNotMutateOrder(t *testing.T) {
	ref := blocks.Point{X: 0.5, Y: 0.6}
	var list []blocks.Block
	list = append(list, pagePair(1, "Race", "W", boxAt(0.5, 0.15))...)
	list = append(list, pagePair(2, "Race", "B", boxAt(0.5, 0.6))...)

	fi := NewFieldIndex(list)

	if got := fi.ValueNear("Race", ref, 0); got != "B" {
		t.Fatalf("expected B nearest to ref, got %q", got)
	}
	// The sorted view must not disturb the underlying encounter order.
	if got := fi.Value("Race"); got != "W" {
		t.Fatalf("expected first-encountered W, got %q", got)
	}
}

func TestBestLabelTieKeepsFirstEncountered(t *testing.T) {
	var list []blocks.Block
	list = append(list, pagePair(1, "Alpha", "first", boxAt(0.1, 0.1))...)
	list = append(list, pagePair(2, "Beta", "second", boxAt(0.1, 0.2))...)

	fi := NewFieldIndex(list)

	// "zzz" shares no bigram with either label; both score zero and the
	// first label wins.
	if got := fi.Value("zzz"); got != "first" {
		t.Fatalf("expected first-encountered label on tie, got %q", got)
	}
}
