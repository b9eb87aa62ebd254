package report

import (
	"strings"

	"records-backend/internal/blocks"
)

// PlainText flattens a text-detection block graph into a single string: every
// block text in arrival order, space separated. The provider emits both LINE
// and WORD blocks, so the output intentionally repeats content the way the
// raw detection result does.
func PlainText(list []blocks.Block) string {
	var parts []string
	for _, b := range list {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}
