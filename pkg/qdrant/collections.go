package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vectl/vectl/pkg/vecdb"
)

// Distance names used by the Qdrant API.
const (
	distanceCosine = "Cosine"
	distanceDot    = "Dot"
	distanceEuclid = "Euclid"
)

func distanceName(m vecdb.Metric) (string, error) {
	switch m {
	case vecdb.MetricCosine:
		return distanceCosine, nil
	case vecdb.MetricDot:
		return distanceDot, nil
	case vecdb.MetricEuclid:
		return distanceEuclid, nil
	default:
		return "", fmt.Errorf("qdrant: unsupported metric %q", m)
	}
}

func metricFromDistance(d string) vecdb.Metric {
	switch d {
	case distanceDot:
		return vecdb.MetricDot
	case distanceEuclid:
		return vecdb.MetricEuclid
	default:
		return vecdb.MetricCosine
	}
}

// vectorParams is the vectors config block in collection requests
// and responses.
type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

// collectionInfoResult is the result of GET /collections/{name}.
type collectionInfoResult struct {
	PointsCount uint64 `json:"points_count"`
	Config      struct {
		Params struct {
			Vectors vectorParams `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// CreateCollection creates a collection with a fixed vector dimension
// and distance metric.
func (c *Client) CreateCollection(ctx context.Context, name string, dimension int, metric vecdb.Metric) error {
	dist, err := distanceName(metric)
	if err != nil {
		return err
	}
	body := struct {
		Vectors vectorParams `json:"vectors"`
	}{
		Vectors: vectorParams{Size: dimension, Distance: dist},
	}
	return c.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(name), body, nil)
}

// ListCollections returns every collection with its metadata.
//
// The Qdrant list endpoint returns names only, so each collection is
// described with a follow-up request.
func (c *Client) ListCollections(ctx context.Context) ([]vecdb.CollectionInfo, error) {
	var result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &result); err != nil {
		return nil, err
	}

	infos := make([]vecdb.CollectionInfo, 0, len(result.Collections))
	for _, col := range result.Collections {
		info, err := c.GetCollection(ctx, col.Name)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", col.Name, err)
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// GetCollection returns metadata for a single collection.
func (c *Client) GetCollection(ctx context.Context, name string) (*vecdb.CollectionInfo, error) {
	var result collectionInfoResult
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(name), nil, &result); err != nil {
		return nil, err
	}
	return &vecdb.CollectionInfo{
		Name:      name,
		Dimension: result.Config.Params.Vectors.Size,
		Metric:    metricFromDistance(result.Config.Params.Vectors.Distance),
		Points:    result.PointsCount,
	}, nil
}

// DeleteCollection removes a collection and all its points.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	var deleted bool
	if err := c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil, &deleted); err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("collection %q: %w", name, vecdb.ErrNotFound)
	}
	return nil
}
