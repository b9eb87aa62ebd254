package textract

import (
	"context"

	"records-backend/internal/blocks"
)

// maxChunkResults is the page size requested from the provider per chunk.
const maxChunkResults = 1000

// PageFunc fetches one result chunk. A nil token requests the first chunk;
// the returned token is nil once no chunks remain.
type PageFunc func(ctx context.Context, token *string) (chunk []blocks.Block, next *string, err error)

// Collect accumulates a chunked result set, preserving arrival order, until
// the provider stops returning a continuation token. A successful job with
// zero blocks yields an empty slice.
func Collect(ctx context.Context, fetch PageFunc) ([]blocks.Block, error) {
	var all []blocks.Block
	var token *string
	for {
		chunk, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		all = append(all, chunk...)
		if next == nil || *next == "" {
			return all, nil
		}
		token = next
	}
}
