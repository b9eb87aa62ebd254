package blocks

import (
	"testing"
)

func word(id, text string) Block {
	return Block{ID: id, Type: TypeWord, Text: text}
}

func keyBlock(id string, childIDs, valueIDs []string, box BoundingBox) Block {
	return Block{
		ID:          id,
		Type:        TypeKeyValueSet,
		EntityTypes: []string{EntityKey},
		Box:         box,
		Relationships: []Relationship{
			{Type: RelationChild, IDs: childIDs},
			{Type: RelationValue, IDs: valueIDs},
		},
	}
}

func valueBlock(id string, childIDs []string) Block {
	return Block{
		ID:            id,
		Type:          TypeKeyValueSet,
		EntityTypes:   []string{"VALUE"},
		Relationships: []Relationship{{Type: RelationChild, IDs: childIDs}},
	}
}

func TestPartitionSplitsKeysAndValues(t *testing.T) {
	list := []Block{
		word("w1", "Name"),
		keyBlock("k1", []string{"w1"}, []string{"v1"}, BoundingBox{}),
		valueBlock("v1", []string{"w2"}),
		word("w2", "Smith"),
		{ID: "p1", Type: TypePage},
	}

	g := Partition(list)

	if len(g.Keys) != 1 || len(g.Values) != 1 {
		t.Fatalf("expected 1 key and 1 value, got %d and %d", len(g.Keys), len(g.Values))
	}
	if len(g.All) != 5 {
		t.Fatalf("expected all 5 blocks indexed, got %d", len(g.All))
	}
	if _, ok := g.Keys["k1"]; !ok {
		t.Fatalf("expected k1 in keys")
	}
	if _, ok := g.Values["v1"]; !ok {
		t.Fatalf("expected v1 in values")
	}
}

func TestPartitionPreservesKeyOrder(t *testing.T) {
	var list []Block
	ids := []string{"k3", "k1", "k2", "k9", "k5"}
	for _, id := range ids {
		list = append(list, keyBlock(id, nil, nil, BoundingBox{}))
	}

	g := Partition(list)

	if len(g.KeyOrder) != len(ids) {
		t.Fatalf("expected %d keys, got %d", len(ids), len(g.KeyOrder))
	}
	for i, id := range ids {
		if g.KeyOrder[i] != id {
			t.Fatalf("key order position %d: expected %s, got %s", i, id, g.KeyOrder[i])
		}
	}
}

func TestTextJoinsWordsAndSelections(t *testing.T) {
	list := []Block{
		word("w1", "Officer"),
		word("w2", "injured?"),
		{ID: "s1", Type: TypeSelectionElement, SelectionStatus: SelectionSelected},
		{ID: "s2", Type: TypeSelectionElement, SelectionStatus: "NOT_SELECTED"},
	}
	parent := Block{
		ID:   "k1",
		Type: TypeKeyValueSet,
		Relationships: []Relationship{
			{Type: RelationChild, IDs: []string{"w1", "w2", "s1", "s2"}},
		},
	}

	g := Partition(append(list, parent))

	if got := g.Text(parent); got != "Officer injured? X" {
		t.Fatalf("expected %q, got %q", "Officer injured? X", got)
	}
}

func TestTextWithoutChildrenIsEmpty(t *testing.T) {
	g := Partition([]Block{{ID: "b1", Type: TypeKeyValueSet}})
	if got := g.Text(g.All["b1"]); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestTextSkipsMissingChildren(t *testing.T) {
	parent := Block{
		ID:   "k1",
		Type: TypeKeyValueSet,
		Relationships: []Relationship{
			{Type: RelationChild, IDs: []string{"gone", "w1"}},
		},
	}
	g := Partition([]Block{parent, word("w1", "Badge")})

	if got := g.Text(parent); got != "Badge" {
		t.Fatalf("expected %q, got %q", "Badge", got)
	}
}

func TestValueBlockResolvesFirstKnownValue(t *testing.T) {
	key := keyBlock("k1", nil, []string{"missing", "v1"}, BoundingBox{})
	g := Partition([]Block{key, valueBlock("v1", nil)})

	v, ok := g.ValueBlock(key)
	if !ok {
		t.Fatalf("expected value to resolve")
	}
	if v.ID != "v1" {
		t.Fatalf("expected v1, got %s", v.ID)
	}
}

func TestValueBlockMissing(t *testing.T) {
	key := keyBlock("k1", nil, nil, BoundingBox{})
	g := Partition([]Block{key})

	if _, ok := g.ValueBlock(key); ok {
		t.Fatalf("expected no value for key without VALUE edge")
	}
}

func TestPairsResolvesLabelsValuesAndAnchors(t *testing.T) {
	box := BoundingBox{Top: 0.2, Left: 0.4, Width: 0.2, Height: 0.1}
	list := []Block{
		word("w1", "Badge"),
		word("w2", "No."),
		word("w3", "1042"),
		keyBlock("k1", []string{"w1", "w2"}, []string{"v1"}, box),
		valueBlock("v1", []string{"w3"}),
		keyBlock("k2", []string{"w1"}, nil, BoundingBox{}),
	}

	pairs := Partition(list).Pairs()

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Label != "Badge No." || pairs[0].Value != "1042" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[0].Anchor.X != 0.5 || pairs[0].Anchor.Y != 0.25 {
		t.Fatalf("unexpected anchor: %+v", pairs[0].Anchor)
	}
	if pairs[1].Value != "" {
		t.Fatalf("expected empty value for unpaired key, got %q", pairs[1].Value)
	}
}

func TestCenter(t *testing.T) {
	b := BoundingBox{Top: 0.1, Left: 0.3, Width: 0.4, Height: 0.2}
	c := b.Center()
	if c.X != 0.5 {
		t.Fatalf("expected X 0.5, got %v", c.X)
	}
	if c.Y != 0.2 {
		t.Fatalf("expected Y 0.2, got %v", c.Y)
	}
}

func TestIsKey(t *testing.T) {
	cases := []struct {
		name string
		b    Block
		want bool
	}{
		{"key entity", Block{Type: TypeKeyValueSet, EntityTypes: []string{EntityKey}}, true},
		{"value entity", Block{Type: TypeKeyValueSet, EntityTypes: []string{"VALUE"}}, false},
		{"wrong type", Block{Type: TypeWord, EntityTypes: []string{EntityKey}}, false},
		{"no entities", Block{Type: TypeKeyValueSet}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.b.IsKey(); got != tc.want {
				t.Fatalf("IsKey = %v, want %v", got, tc.want)
			}
		})
	}
}
