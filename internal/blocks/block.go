package blocks

// BlockType identifies the kind of primitive the provider recognized.
type BlockType string

const (
	TypeKeyValueSet      BlockType = "KEY_VALUE_SET"
	TypeWord             BlockType = "WORD"
	TypeSelectionElement BlockType = "SELECTION_ELEMENT"
	TypeLine             BlockType = "LINE"
	TypePage             BlockType = "PAGE"
)

const (
	// EntityKey marks a KEY_VALUE_SET block as the label side of a pair.
	EntityKey = "KEY"

	// SelectionSelected is the state of a checked selection mark.
	SelectionSelected = "SELECTED"
)

// RelationshipType tags an edge between blocks.
type RelationshipType string

const (
	RelationChild RelationshipType = "CHILD"
	RelationValue RelationshipType = "VALUE"
)

// Relationship is a directed edge from one block to others.
type Relationship struct {
	Type RelationshipType `json:"type"`
	IDs  []string         `json:"ids"`
}

// Point is a position in normalized page coordinates (0..1).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is a block's normalized geometry on the page.
type BoundingBox struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the geometric center of the box, used as the anchor
// point for spatial disambiguation.
func (b BoundingBox) Center() Point {
	return Point{
		X: b.Left + b.Width/2,
		Y: b.Top + b.Height/2,
	}
}

// Block is one recognized primitive from the document-analysis provider.
// Blocks are immutable once produced.
type Block struct {
	ID              string         `json:"id"`
	Type            BlockType      `json:"type"`
	Text            string         `json:"text,omitempty"`
	EntityTypes     []string       `json:"entityTypes,omitempty"`
	SelectionStatus string         `json:"selectionStatus,omitempty"`
	Box             BoundingBox    `json:"box"`
	Relationships   []Relationship `json:"relationships,omitempty"`
}

// IsKey reports whether the block is the label side of a key/value pair.
func (b Block) IsKey() bool {
	if b.Type != TypeKeyValueSet {
		return false
	}
	for _, e := range b.EntityTypes {
		if e == EntityKey {
			return true
		}
	}
	return false
}
