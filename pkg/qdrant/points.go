package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vectl/vectl/pkg/vecdb"
)

// point is the wire form of a vector record.
type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Upsert inserts or overwrites points by ID. The call waits for the
// write to be applied, so it is atomic from the caller's view: on
// error nothing from this call is visible.
//
// Qdrant accepts UUID strings or unsigned integers as point IDs.
func (c *Client) Upsert(ctx context.Context, collection string, records []vecdb.Record) error {
	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{ID: r.ID, Vector: r.Vector, Payload: r.Payload}
	}
	body := struct {
		Points []point `json:"points"`
	}{Points: points}

	path := "/collections/" + url.PathEscape(collection) + "/points?wait=true"
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// searchRequest is the body of POST /collections/{name}/points/search.
type searchRequest struct {
	Vector         []float32   `json:"vector"`
	Limit          int         `json:"limit"`
	Filter         *wireFilter `json:"filter,omitempty"`
	ScoreThreshold *float32    `json:"score_threshold,omitempty"`
	WithPayload    bool        `json:"with_payload"`
}

// scoredPoint is a single search hit. The ID can be a string or an
// unsigned integer on the wire.
type scoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float32         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// Search returns up to TopK matches ranked best-first by the server.
func (c *Client) Search(ctx context.Context, collection string, params vecdb.SearchParams) ([]vecdb.Match, error) {
	body := searchRequest{
		Vector:         params.Vector,
		Limit:          params.TopK,
		Filter:         toWireFilter(params.Filter),
		ScoreThreshold: params.ScoreThreshold,
		WithPayload:    true,
	}

	var hits []scoredPoint
	path := "/collections/" + url.PathEscape(collection) + "/points/search"
	if err := c.do(ctx, http.MethodPost, path, body, &hits); err != nil {
		return nil, err
	}

	matches := make([]vecdb.Match, len(hits))
	for i, h := range hits {
		id, err := decodePointID(h.ID)
		if err != nil {
			return nil, err
		}
		matches[i] = vecdb.Match{ID: id, Score: h.Score, Payload: h.Payload}
	}
	return matches, nil
}

func decodePointID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatUint(n, 10), nil
	}
	return "", fmt.Errorf("qdrant: unexpected point id %s", raw)
}

// Wire form of vecdb.Filter: {"must":[{"key":k,"match":{"value":v}},
// {"key":k,"range":{"gte":n}}]}.
type wireFilter struct {
	Must []wireCondition `json:"must"`
}

type wireCondition struct {
	Key   string       `json:"key"`
	Match *wireMatch   `json:"match,omitempty"`
	Range *vecdb.Range `json:"range,omitempty"`
}

type wireMatch struct {
	Value any `json:"value"`
}

func toWireFilter(f *vecdb.Filter) *wireFilter {
	if f == nil || len(f.Must) == 0 {
		return nil
	}
	wf := &wireFilter{Must: make([]wireCondition, len(f.Must))}
	for i, c := range f.Must {
		wc := wireCondition{Key: c.Key, Range: c.Range}
		if c.Range == nil {
			wc.Match = &wireMatch{Value: c.Match}
		}
		wf.Must[i] = wc
	}
	return wf
}
