package agent

import (
	"context"
	"errors"

	"github.com/vectl/vectl/pkg/vecdb"
)

// CreateCollection creates a collection with a fixed dimension and
// metric. A zero dimension defaults to the configured embedding
// dimension; an empty metric defaults to cosine.
//
// If the name is taken the call fails with already_exists, unless
// existsOK is set: then the existing collection is returned after
// checking that its dimension still matches.
func (a *Agent) CreateCollection(ctx context.Context, name string, dimension int, metric string, existsOK bool) (*vecdb.CollectionInfo, error) {
	const op = "create_collection"

	if name == "" {
		return nil, errorf(op, KindInvalidArgument, "collection name is required")
	}
	if dimension == 0 {
		dimension = a.cfg.EmbeddingDimension
	}
	if dimension <= 0 {
		return nil, errorf(op, KindInvalidArgument, "dimension must be a positive integer, got %d", dimension)
	}
	m, err := vecdb.ParseMetric(metric)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindInvalidArgument, Err: err}
	}

	err = a.storeCall(ctx, op, func(ctx context.Context) error {
		return a.store.CreateCollection(ctx, name, dimension, m)
	})
	if err == nil {
		return &vecdb.CollectionInfo{Name: name, Dimension: dimension, Metric: m}, nil
	}
	if !existsOK || !errors.Is(err, vecdb.ErrExists) {
		return nil, err
	}

	// existsOK: reuse the existing collection, but only if it is
	// compatible with what the caller asked for.
	info, derr := a.DescribeCollection(ctx, name)
	if derr != nil {
		return nil, derr
	}
	if info.Dimension != dimension {
		return nil, errorf(op, KindDimensionMismatch,
			"collection %q exists with dimension %d, want %d", name, info.Dimension, dimension)
	}
	return info, nil
}

// ListCollections returns every collection and its metadata.
func (a *Agent) ListCollections(ctx context.Context) ([]vecdb.CollectionInfo, error) {
	const op = "list_collections"

	var infos []vecdb.CollectionInfo
	err := a.storeCall(ctx, op, func(ctx context.Context) error {
		var err error
		infos, err = a.store.ListCollections(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// DescribeCollection returns metadata for a single collection.
func (a *Agent) DescribeCollection(ctx context.Context, name string) (*vecdb.CollectionInfo, error) {
	const op = "collection_info"

	if name == "" {
		return nil, errorf(op, KindInvalidArgument, "collection name is required")
	}
	var info *vecdb.CollectionInfo
	err := a.storeCall(ctx, op, func(ctx context.Context) error {
		var err error
		info, err = a.store.GetCollection(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// DeleteCollection removes a collection and all its points.
func (a *Agent) DeleteCollection(ctx context.Context, name string) error {
	const op = "delete_collection"

	if name == "" {
		return errorf(op, KindInvalidArgument, "collection name is required")
	}
	return a.storeCall(ctx, op, func(ctx context.Context) error {
		return a.store.DeleteCollection(ctx, name)
	})
}
