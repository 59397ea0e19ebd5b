package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vectl/vectl/pkg/docs"
	"github.com/vectl/vectl/pkg/embed"
	"github.com/vectl/vectl/pkg/vecdb"
)

func newTestAgent(t *testing.T, store vecdb.Store, emb embed.Embedder) *Agent {
	t.Helper()
	a, err := New(store, emb, Config{MaxRetries: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// animalEmbedder returns a dim-3 static embedder with a tiny animal
// vocabulary: "cat" and "kitten" point the same way, "dog" is
// orthogonal.
func animalEmbedder(t *testing.T) *embed.Static {
	t.Helper()
	e := embed.NewStatic(3)
	e.MustSet("cat", []float32{1, 0, 0})
	e.MustSet("kitten", []float32{0.9, 0.1, 0})
	e.MustSet("dog", []float32{0, 1, 0})
	return e
}

func TestCreateCollection(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	info, err := a.CreateCollection(ctx, "animals", 0, "", false)
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if info.Dimension != 3 {
		t.Errorf("dimension = %d, want 3 (embedder default)", info.Dimension)
	}
	if info.Metric != vecdb.MetricCosine {
		t.Errorf("metric = %q, want cosine", info.Metric)
	}

	// Same name again is a conflict.
	_, err = a.CreateCollection(ctx, "animals", 3, "cosine", false)
	e, ok := AsError(err)
	if !ok || e.Kind != KindAlreadyExists {
		t.Fatalf("duplicate create: got %v, want already_exists", err)
	}
	if e.Retryable() {
		t.Error("already_exists must not be retryable")
	}

	// existsOK with a matching dimension reuses the collection.
	info, err = a.CreateCollection(ctx, "animals", 3, "cosine", true)
	if err != nil {
		t.Fatalf("existsOK create: %v", err)
	}
	if info.Name != "animals" {
		t.Errorf("name = %q, want animals", info.Name)
	}

	// existsOK with a different dimension is a mismatch, not a reuse.
	_, err = a.CreateCollection(ctx, "animals", 8, "cosine", true)
	if e, ok := AsError(err); !ok || e.Kind != KindDimensionMismatch {
		t.Fatalf("existsOK wrong dimension: got %v, want dimension_mismatch", err)
	}
}

func TestCreateCollectionInvalid(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	for _, tt := range []struct {
		name      string
		coll      string
		dimension int
		metric    string
	}{
		{"empty name", "", 3, ""},
		{"negative dimension", "c", -1, ""},
		{"unknown metric", "c", 3, "manhattan"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.CreateCollection(ctx, tt.coll, tt.dimension, tt.metric, false)
			if e, ok := AsError(err); !ok || e.Kind != KindInvalidArgument {
				t.Fatalf("got %v, want invalid_argument", err)
			}
		})
	}
}

func TestQueryRanking(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}
	report, err := a.AddDocuments(ctx, "animals", []docs.Document{
		{ID: "cat", Text: "cat", Metadata: map[string]any{"kind": "feline"}},
		{ID: "dog", Text: "dog", Metadata: map[string]any{"kind": "canine"}},
		{ID: "kitten", Text: "kitten", Metadata: map[string]any{"kind": "feline"}},
	}, IngestOptions{})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if report.Upserted != 3 {
		t.Fatalf("upserted = %d, want 3", report.Upserted)
	}

	matches, err := a.Query(ctx, "animals", "cat", QueryOptions{TopK: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "cat" {
		t.Errorf("top match = %q, want cat", matches[0].ID)
	}
	if matches[0].Score < 0.999 {
		t.Errorf("top score = %v, want ~1.0", matches[0].Score)
	}
	if matches[1].ID != "kitten" {
		t.Errorf("second match = %q, want kitten", matches[1].ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches must be ranked best-first")
	}
	if got := matches[0].Payload["kind"]; got != "feline" {
		t.Errorf("payload kind = %v, want feline", got)
	}
}

func TestQueryFilterAndThreshold(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}
	_, err := a.AddDocuments(ctx, "animals", []docs.Document{
		{ID: "cat", Text: "cat", Metadata: map[string]any{"kind": "feline"}},
		{ID: "dog", Text: "dog", Metadata: map[string]any{"kind": "canine"}},
	}, IngestOptions{})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := a.Query(ctx, "animals", "cat", QueryOptions{
		TopK:   5,
		Filter: &vecdb.Filter{Must: []vecdb.Condition{{Key: "kind", Match: "canine"}}},
	})
	if err != nil {
		t.Fatalf("filtered query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "dog" {
		t.Fatalf("filtered matches = %v, want just dog", matches)
	}

	// A high threshold that nothing passes yields an empty result, not
	// an error.
	threshold := float32(0.99)
	matches, err = a.Query(ctx, "animals", "dog", QueryOptions{
		TopK:           5,
		Filter:         &vecdb.Filter{Must: []vecdb.Condition{{Key: "kind", Match: "feline"}}},
		ScoreThreshold: &threshold,
	})
	if err != nil {
		t.Fatalf("thresholded query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want none", len(matches))
	}
}

func TestQueryInvalid(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))
	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name string
		coll string
		text string
		topK int
		want Kind
	}{
		{"empty collection", "", "cat", 1, KindInvalidArgument},
		{"empty text", "animals", "", 1, KindInvalidArgument},
		{"negative topk", "animals", "cat", -1, KindInvalidArgument},
		{"topk over limit", "animals", "cat", MaxTopK + 1, KindInvalidArgument},
		{"missing collection", "nope", "cat", 1, KindNotFound},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Query(ctx, tt.coll, tt.text, QueryOptions{TopK: tt.topK})
			if e, ok := AsError(err); !ok || e.Kind != tt.want {
				t.Fatalf("got %v, want kind %s", err, tt.want)
			}
		})
	}
}

// bulkEmbedder registers n deterministic dim-3 vectors for texts
// "doc-0" .. "doc-<n-1>".
func bulkEmbedder(t *testing.T, n int) *embed.Static {
	t.Helper()
	e := embed.NewStatic(3)
	for i := 0; i < n; i++ {
		e.MustSet(fmt.Sprintf("doc-%d", i), []float32{float32(i), 1, 0})
	}
	return e
}

func bulkDocs(n int) []docs.Document {
	out := make([]docs.Document, n)
	for i := range out {
		out[i] = docs.Document{ID: fmt.Sprintf("doc-%d", i), Text: fmt.Sprintf("doc-%d", i)}
	}
	return out
}

// upsertHookStore lets a test fail a specific upsert call.
type upsertHookStore struct {
	vecdb.Store
	calls  int
	onCall func(call int) error
}

func (s *upsertHookStore) Upsert(ctx context.Context, collection string, records []vecdb.Record) error {
	call := s.calls
	s.calls++
	if s.onCall != nil {
		if err := s.onCall(call); err != nil {
			return err
		}
	}
	return s.Store.Upsert(ctx, collection, records)
}

func TestAddDocumentsBatching(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), bulkEmbedder(t, 250))
	if _, err := a.CreateCollection(ctx, "bulk", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	var seen []BatchResult
	report, err := a.AddDocuments(ctx, "bulk", bulkDocs(250), IngestOptions{
		OnBatch: func(b BatchResult) { seen = append(seen, b) },
	})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if len(report.Batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(report.Batches))
	}
	for i, want := range []int{100, 100, 50} {
		b := report.Batches[i]
		if b.Docs != want || b.Upserted != want || b.Status != BatchSucceeded {
			t.Errorf("batch %d = %+v, want %d docs upserted", i, b, want)
		}
	}
	if report.Upserted != 250 {
		t.Errorf("upserted = %d, want 250", report.Upserted)
	}
	if len(seen) != 3 {
		t.Errorf("OnBatch fired %d times, want 3", len(seen))
	}

	info, err := a.DescribeCollection(ctx, "bulk")
	if err != nil {
		t.Fatal(err)
	}
	if info.Points != 250 {
		t.Errorf("points = %d, want 250", info.Points)
	}
}

func TestAddDocumentsFailFast(t *testing.T) {
	ctx := context.Background()
	store := &upsertHookStore{Store: vecdb.NewMemory(), onCall: func(call int) error {
		if call == 1 {
			return vecdb.ErrUnavailable
		}
		return nil
	}}
	a := newTestAgent(t, store, bulkEmbedder(t, 250))
	if _, err := a.CreateCollection(ctx, "bulk", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	report, err := a.AddDocuments(ctx, "bulk", bulkDocs(250), IngestOptions{})
	if err == nil {
		t.Fatal("want error after failed batch")
	}
	if e, ok := AsError(err); !ok || e.Kind != KindBackendUnavailable {
		t.Fatalf("got %v, want backend_unavailable", err)
	}
	if report == nil {
		t.Fatal("report must accompany the error")
	}
	want := []BatchStatus{BatchSucceeded, BatchFailed, BatchSkipped}
	for i, st := range want {
		if report.Batches[i].Status != st {
			t.Errorf("batch %d status = %s, want %s", i, report.Batches[i].Status, st)
		}
	}
	// Progress from the first batch is kept.
	if report.Upserted != 100 {
		t.Errorf("upserted = %d, want 100", report.Upserted)
	}
	if got := report.FailedBatches(); len(got) != 1 || got[0] != 1 {
		t.Errorf("FailedBatches() = %v, want [1]", got)
	}
}

func TestAddDocumentsContinueOnError(t *testing.T) {
	ctx := context.Background()
	store := &upsertHookStore{Store: vecdb.NewMemory(), onCall: func(call int) error {
		if call == 1 {
			return vecdb.ErrUnavailable
		}
		return nil
	}}
	a := newTestAgent(t, store, bulkEmbedder(t, 250))
	if _, err := a.CreateCollection(ctx, "bulk", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	report, err := a.AddDocuments(ctx, "bulk", bulkDocs(250), IngestOptions{ContinueOnError: true})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	want := []BatchStatus{BatchSucceeded, BatchFailed, BatchSucceeded}
	for i, st := range want {
		if report.Batches[i].Status != st {
			t.Errorf("batch %d status = %s, want %s", i, report.Batches[i].Status, st)
		}
	}
	if report.Upserted != 150 {
		t.Errorf("upserted = %d, want 150", report.Upserted)
	}
}

func TestAddDocumentsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))
	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	documents := []docs.Document{
		{ID: "cat", Text: "cat"},
		{ID: "dog", Text: "dog"},
	}
	for i := 0; i < 2; i++ {
		if _, err := a.AddDocuments(ctx, "animals", documents, IngestOptions{}); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	// Same IDs twice: the upsert overwrites, it does not duplicate.
	info, err := a.DescribeCollection(ctx, "animals")
	if err != nil {
		t.Fatal(err)
	}
	if info.Points != 2 {
		t.Errorf("points = %d after re-ingest, want 2", info.Points)
	}
}

func TestAddDocumentsInvalidDocs(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))
	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	report, err := a.AddDocuments(ctx, "animals", []docs.Document{
		{ID: "cat", Text: "cat"},
		{ID: "blank", Text: ""},
		{ID: "nested", Text: "dog", Metadata: map[string]any{"deep": map[string]any{"x": 1}}},
		{ID: "dog", Text: "dog"},
	}, IngestOptions{})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if report.Upserted != 2 {
		t.Errorf("upserted = %d, want 2", report.Upserted)
	}
	if report.Invalid != 2 {
		t.Errorf("invalid = %d, want 2", report.Invalid)
	}
	// Upserted plus rejected always accounts for every input.
	if report.Upserted+report.Invalid != report.Total {
		t.Errorf("upserted(%d) + invalid(%d) != total(%d)", report.Upserted, report.Invalid, report.Total)
	}
	invalid := report.Batches[0].Invalid
	if len(invalid) != 2 || invalid[0].Doc != 1 || invalid[1].Doc != 2 {
		t.Errorf("invalid docs = %v, want indices 1 and 2", invalid)
	}
}

func TestAddDocumentsMissingCollection(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	_, err := a.AddDocuments(ctx, "nope", bulkDocs(1), IngestOptions{})
	if e, ok := AsError(err); !ok || e.Kind != KindNotFound {
		t.Fatalf("got %v, want not_found", err)
	}
}

func TestAddDocumentsGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	emb := embed.NewStatic(3)
	emb.MustSet("hello", []float32{1, 0, 0})
	a := newTestAgent(t, vecdb.NewMemory(), emb)
	if _, err := a.CreateCollection(ctx, "c", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	if _, err := a.AddDocuments(ctx, "c", []docs.Document{{Text: "hello"}}, IngestOptions{}); err != nil {
		t.Fatal(err)
	}
	matches, err := a.Query(ctx, "c", "hello", QueryOptions{TopK: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID == "" {
		t.Fatalf("matches = %v, want one match with a generated id", matches)
	}
}

func TestDimensionMismatchOnIngest(t *testing.T) {
	ctx := context.Background()
	emb := embed.NewStatic(4)
	emb.MustSet("cat", []float32{1, 0, 0, 0})
	a := newTestAgent(t, vecdb.NewMemory(), emb)

	// Collection narrower than the embedder's output.
	if _, err := a.CreateCollection(ctx, "narrow", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}
	report, err := a.AddDocuments(ctx, "narrow", []docs.Document{{ID: "cat", Text: "cat"}}, IngestOptions{})
	if e, ok := AsError(err); !ok || e.Kind != KindDimensionMismatch {
		t.Fatalf("got %v, want dimension_mismatch", err)
	}
	if report.Upserted != 0 {
		t.Errorf("upserted = %d, want 0: mismatched vectors must never be written", report.Upserted)
	}
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))
	if _, err := a.CreateCollection(ctx, "animals", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	if err := a.DeleteCollection(ctx, "animals"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if err := a.DeleteCollection(ctx, "animals"); err == nil {
		t.Fatal("second delete should be not_found")
	} else if e, ok := AsError(err); !ok || e.Kind != KindNotFound {
		t.Fatalf("got %v, want not_found", err)
	}
}

func TestListCollections(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, vecdb.NewMemory(), animalEmbedder(t))

	infos, err := a.ListCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Fatalf("got %d collections, want 0", len(infos))
	}

	for _, name := range []string{"a", "b"} {
		if _, err := a.CreateCollection(ctx, name, 3, "cosine", false); err != nil {
			t.Fatal(err)
		}
	}
	infos, err = a.ListCollections(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d collections, want 2", len(infos))
	}
}

// flakyStore fails the first n calls of every method with a transient
// error, then delegates.
type flakyStore struct {
	vecdb.Store
	failures int
}

func (s *flakyStore) ListCollections(ctx context.Context) ([]vecdb.CollectionInfo, error) {
	if s.failures > 0 {
		s.failures--
		return nil, fmt.Errorf("connection refused: %w", vecdb.ErrUnavailable)
	}
	return s.Store.ListCollections(ctx)
}

func TestRetryTransientFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: vecdb.NewMemory(), failures: 2}
	a, err := New(store, animalEmbedder(t), Config{MaxRetries: 3})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.ListCollections(ctx); err != nil {
		t.Fatalf("want success after retries, got %v", err)
	}
}

func TestRetryExhaustion(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: vecdb.NewMemory(), failures: 100}
	a, err := New(store, animalEmbedder(t), Config{MaxRetries: 1})
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.ListCollections(ctx)
	if e, ok := AsError(err); !ok || e.Kind != KindBackendUnavailable {
		t.Fatalf("got %v, want backend_unavailable after exhausting retries", err)
	}
	if got := store.failures; got != 98 {
		t.Errorf("store saw %d calls, want 2 (initial + 1 retry)", 100-got)
	}
}

func TestNegativeMaxRetriesDisablesRetries(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: vecdb.NewMemory(), failures: 1}
	a, err := New(store, animalEmbedder(t), Config{MaxRetries: -1})
	if err != nil {
		t.Fatal(err)
	}

	// One transient failure and no retry budget: the call must fail.
	_, err = a.ListCollections(ctx)
	if e, ok := AsError(err); !ok || e.Kind != KindBackendUnavailable {
		t.Fatalf("want backend_unavailable on the single attempt, got %v", err)
	}

	// The failure was consumed, so the next call succeeds.
	if _, err := a.ListCollections(ctx); err != nil {
		t.Fatalf("second call should succeed, got %v", err)
	}
}

func TestNoRetryOnNotFound(t *testing.T) {
	ctx := context.Background()
	store := &upsertHookStore{Store: vecdb.NewMemory()}
	a, err := New(store, animalEmbedder(t), Config{MaxRetries: 3})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.DescribeCollection(ctx, "nope"); err == nil {
		t.Fatal("want not_found")
	} else if !errors.Is(err, vecdb.ErrNotFound) {
		t.Fatalf("got %v, want wrapped ErrNotFound", err)
	}
}

func TestCancellationAtBatchBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newTestAgent(t, vecdb.NewMemory(), bulkEmbedder(t, 250))
	if _, err := a.CreateCollection(ctx, "bulk", 3, "cosine", false); err != nil {
		t.Fatal(err)
	}

	var done int
	report, err := a.AddDocuments(ctx, "bulk", bulkDocs(250), IngestOptions{
		OnBatch: func(b BatchResult) {
			done++
			if done == 1 {
				cancel()
			}
		},
	})
	if e, ok := AsError(err); !ok || e.Kind != KindCanceled {
		t.Fatalf("got %v, want canceled", err)
	}
	// The first batch settled before the cancel; the rest were skipped.
	if report.Batches[0].Status != BatchSucceeded {
		t.Errorf("batch 0 status = %s, want succeeded", report.Batches[0].Status)
	}
	for _, b := range report.Batches[1:] {
		if b.Status != BatchSkipped {
			t.Errorf("batch %d status = %s, want skipped", b.Index, b.Status)
		}
	}
	if report.Upserted != 100 {
		t.Errorf("upserted = %d, want 100", report.Upserted)
	}
}

func TestConfigDimensionDisagreement(t *testing.T) {
	_, err := New(vecdb.NewMemory(), embed.NewStatic(3), Config{EmbeddingDimension: 8})
	if e, ok := AsError(err); !ok || e.Kind != KindInvalidArgument {
		t.Fatalf("got %v, want invalid_argument", err)
	}
}
