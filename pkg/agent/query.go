package agent

import (
	"context"

	"github.com/vectl/vectl/pkg/vecdb"
)

// QueryOptions configures a search.
type QueryOptions struct {
	// TopK is the maximum number of results. Zero means DefaultTopK;
	// values above MaxTopK are rejected.
	TopK int

	// Filter restricts results by payload fields.
	Filter *vecdb.Filter

	// ScoreThreshold drops results scoring below it.
	ScoreThreshold *float32
}

// Query embeds the query text and returns the top-k nearest records,
// ranked best-first. The backend's ranking order is authoritative;
// results are deduplicated by identifier (first occurrence wins) and
// truncated to top-k. No records satisfying the filter or threshold is
// an empty result, not an error.
func (a *Agent) Query(ctx context.Context, collection, text string, opts QueryOptions) ([]vecdb.Match, error) {
	const op = "query"

	if collection == "" {
		return nil, errorf(op, KindInvalidArgument, "collection name is required")
	}
	if text == "" {
		return nil, errorf(op, KindInvalidArgument, "query text is required")
	}
	topK := opts.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 {
		return nil, errorf(op, KindInvalidArgument, "top_k must be a positive integer, got %d", topK)
	}
	if topK > MaxTopK {
		return nil, errorf(op, KindInvalidArgument, "top_k %d exceeds maximum %d", topK, MaxTopK)
	}

	info, err := a.DescribeCollection(ctx, collection)
	if err != nil {
		e := classify(op, err)
		return nil, &Error{Op: op, Kind: e.Kind, Err: e.Err}
	}

	vecs, err := a.embedBatch(ctx, op, []string{text})
	if err != nil {
		return nil, err
	}
	vector := vecs[0]
	if len(vector) != info.Dimension {
		return nil, errorf(op, KindDimensionMismatch,
			"query embedding has %d dims, collection %q wants %d", len(vector), collection, info.Dimension)
	}

	var matches []vecdb.Match
	err = a.storeCall(ctx, op, func(ctx context.Context) error {
		var err error
		matches, err = a.store.Search(ctx, collection, vecdb.SearchParams{
			Vector:         vector,
			TopK:           topK,
			Filter:         opts.Filter,
			ScoreThreshold: opts.ScoreThreshold,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return dedupe(matches, topK), nil
}

// dedupe drops repeated identifiers, keeping the first (best-ranked)
// occurrence, and truncates to topK.
func dedupe(matches []vecdb.Match, topK int) []vecdb.Match {
	out := make([]vecdb.Match, 0, min(len(matches), topK))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
		if len(out) == topK {
			break
		}
	}
	return out
}
