package blocks

import "strings"

// Graph indexes one page's blocks by role. Key blocks keep their encounter
// order so downstream matching stays deterministic.
type Graph struct {
	Keys     map[string]Block
	Values   map[string]Block
	All      map[string]Block
	KeyOrder []string
}

// Partition classifies a flat block list into role-indexed maps. Blocks with
// unexpected shapes are still reachable through All.
func Partition(list []Block) Graph {
	g := Graph{
		Keys:   make(map[string]Block),
		Values: make(map[string]Block),
		All:    make(map[string]Block, len(list)),
	}
	for _, b := range list {
		g.All[b.ID] = b
		if b.Type != TypeKeyValueSet {
			continue
		}
		if b.IsKey() {
			g.Keys[b.ID] = b
			g.KeyOrder = append(g.KeyOrder, b.ID)
		} else {
			g.Values[b.ID] = b
		}
	}
	return g
}

// Text assembles the visible text of a block by walking its CHILD edges in
// list order. WORD children contribute their text, selected selection marks
// contribute the literal token "X". Returns "" when the block has no CHILD
// relationship.
func (g Graph) Text(b Block) string {
	var sb strings.Builder
	for _, rel := range b.Relationships {
		if rel.Type != RelationChild {
			continue
		}
		for _, id := range rel.IDs {
			child, ok := g.All[id]
			if !ok {
				continue
			}
			switch child.Type {
			case TypeWord:
				sb.WriteString(child.Text)
				sb.WriteByte(' ')
			case TypeSelectionElement:
				if child.SelectionStatus == SelectionSelected {
					sb.WriteString("X ")
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// ValueBlock resolves the value paired with a key block: the first id on a
// VALUE edge that is present in the value map. A key without a paired value
// is valid and reports ok=false.
func (g Graph) ValueBlock(key Block) (Block, bool) {
	for _, rel := range key.Relationships {
		if rel.Type != RelationValue {
			continue
		}
		for _, id := range rel.IDs {
			if v, ok := g.Values[id]; ok {
				return v, true
			}
		}
	}
	return Block{}, false
}

// LabeledValue is one resolved key/value pair with the key block's anchor.
type LabeledValue struct {
	Label  string
	Value  string
	Anchor Point
}

// Pairs resolves every key block into (label, value, anchor) in key-encounter
// order. Keys without a paired value yield an empty value.
func (g Graph) Pairs() []LabeledValue {
	out := make([]LabeledValue, 0, len(g.KeyOrder))
	for _, id := range g.KeyOrder {
		key := g.Keys[id]
		var value string
		if vb, ok := g.ValueBlock(key); ok {
			value = g.Text(vb)
		}
		out = append(out, LabeledValue{
			Label:  g.Text(key),
			Value:  value,
			Anchor: key.Box.Center(),
		})
	}
	return out
}
