package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vectl/vectl/pkg/docs"
	"github.com/vectl/vectl/pkg/vecdb"
)

// BatchStatus is the outcome of one ingestion batch.
type BatchStatus string

const (
	// BatchSucceeded means the batch was embedded and upserted.
	BatchSucceeded BatchStatus = "succeeded"

	// BatchFailed means the batch failed as a whole (embedding or
	// upsert error). Prior batches remain committed.
	BatchFailed BatchStatus = "failed"

	// BatchSkipped means the batch was never attempted because an
	// earlier batch failed in fail-fast mode or the ingest was
	// canceled.
	BatchSkipped BatchStatus = "skipped"
)

// InvalidDoc records a document rejected before embedding.
type InvalidDoc struct {
	// Doc is the document's index within the input sequence.
	Doc int `json:"doc" yaml:"doc"`

	// Reason says why it was rejected.
	Reason string `json:"reason" yaml:"reason"`
}

// BatchResult is the outcome of a single batch.
type BatchResult struct {
	// Index is the zero-based batch number.
	Index int `json:"index" yaml:"index"`

	// Docs is the number of input documents in the batch.
	Docs int `json:"docs" yaml:"docs"`

	// Upserted is the number of records committed.
	Upserted int `json:"upserted" yaml:"upserted"`

	// Invalid lists documents rejected individually (empty text,
	// bad metadata). They do not fail the batch.
	Invalid []InvalidDoc `json:"invalid,omitempty" yaml:"invalid,omitempty"`

	// Status is the batch outcome.
	Status BatchStatus `json:"status" yaml:"status"`

	// Error is the failure reason for failed batches.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// err is the classified failure, kept for fail-fast propagation.
	err error
}

// IngestReport is the per-batch outcome of an ingestion. Partial
// completion is the common case for large ingests, so the result is
// always data, never a bare success flag.
type IngestReport struct {
	Collection string        `json:"collection" yaml:"collection"`
	Total      int           `json:"total" yaml:"total"`
	Upserted   int           `json:"upserted" yaml:"upserted"`
	Invalid    int           `json:"invalid" yaml:"invalid"`
	Batches    []BatchResult `json:"batches" yaml:"batches"`
}

// FailedBatches returns the indices of failed batches.
func (r *IngestReport) FailedBatches() []int {
	var failed []int
	for _, b := range r.Batches {
		if b.Status == BatchFailed {
			failed = append(failed, b.Index)
		}
	}
	return failed
}

// IngestOptions configures AddDocuments.
type IngestOptions struct {
	// BatchSize overrides the configured batch size.
	BatchSize int

	// ContinueOnError keeps ingesting after a batch failure. Off, the
	// ingest stops at the first failed batch and reports the rest as
	// skipped; progress committed by earlier batches is kept either way.
	ContinueOnError bool

	// OnBatch, if set, is called after each batch settles.
	OnBatch func(BatchResult)
}

// AddDocuments ingests documents into a collection: it validates the
// collection and captures its dimension, partitions the documents into
// batches, and for each batch embeds the texts in one provider call,
// checks every vector against the collection dimension, assigns
// identifiers, and upserts.
//
// Documents that fail validation individually (empty text, bad
// metadata) are rejected without failing their batch. Cancellation
// takes effect at batch boundaries: the in-flight batch completes or
// fails atomically.
//
// The report is returned alongside any error, so callers always see
// which batches committed.
func (a *Agent) AddDocuments(ctx context.Context, collection string, documents []docs.Document, opts IngestOptions) (*IngestReport, error) {
	const op = "add_documents"

	if collection == "" {
		return nil, errorf(op, KindInvalidArgument, "collection name is required")
	}
	if len(documents) == 0 {
		return nil, errorf(op, KindInvalidArgument, "no documents to ingest")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = a.cfg.BatchSize
	}

	info, err := a.DescribeCollection(ctx, collection)
	if err != nil {
		e := classify(op, err)
		return nil, &Error{Op: op, Kind: e.Kind, Err: e.Err}
	}

	report := &IngestReport{Collection: collection, Total: len(documents)}

	var abort *Error
	for start := 0; start < len(documents); start += batchSize {
		end := min(start+batchSize, len(documents))
		index := start / batchSize

		result := BatchResult{Index: index, Docs: end - start}

		switch {
		case abort != nil:
			result.Status = BatchSkipped
		case ctx.Err() != nil:
			abort = classify(op, ctx.Err())
			result.Status = BatchSkipped
		default:
			result = a.ingestBatch(ctx, info, documents[start:end], start, index)
			report.Upserted += result.Upserted
			report.Invalid += len(result.Invalid)
			if result.Status == BatchFailed && !opts.ContinueOnError {
				abort = errorf(op, KindInternal, "batch %d failed: %s", index, result.Error)
				if e, ok := AsError(result.err); ok {
					abort = &Error{Op: op, Kind: e.Kind, Err: fmt.Errorf("batch %d: %w", index, e.Err)}
				}
			}
		}

		report.Batches = append(report.Batches, result)
		if opts.OnBatch != nil {
			opts.OnBatch(result)
		}
	}

	if abort != nil {
		return report, abort
	}
	return report, nil
}

// fail marks the batch failed, keeping the classified error for
// fail-fast propagation and its message for the report.
func (r *BatchResult) fail(err error) {
	r.Status = BatchFailed
	r.err = err
	if e, ok := AsError(err); ok {
		r.Error = e.Message()
	} else {
		r.Error = err.Error()
	}
}

// ingestBatch embeds and upserts one batch. offset is the batch's
// starting index within the full document sequence, used for per-doc
// rejection reporting.
func (a *Agent) ingestBatch(ctx context.Context, info *vecdb.CollectionInfo, batch []docs.Document, offset, index int) BatchResult {
	const op = "add_documents"

	result := BatchResult{Index: index, Docs: len(batch), Status: BatchSucceeded}

	// Per-document validation: bad documents are dropped individually,
	// they do not take the batch down.
	valid := make([]docs.Document, 0, len(batch))
	for i, d := range batch {
		if reason := validateDocument(d); reason != "" {
			result.Invalid = append(result.Invalid, InvalidDoc{Doc: offset + i, Reason: reason})
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return result
	}

	texts := make([]string, len(valid))
	for i, d := range valid {
		texts[i] = d.Text
	}

	vecs, err := a.embedBatch(ctx, op, texts)
	if err != nil {
		result.fail(err)
		return result
	}

	records := make([]vecdb.Record, len(valid))
	for i, d := range valid {
		if len(vecs[i]) != info.Dimension {
			// Never coerce or truncate: a wrong-size vector means the
			// embedding model and the collection disagree.
			result.fail(errorf(op, KindDimensionMismatch,
				"embedding has %d dims, collection %q wants %d", len(vecs[i]), info.Name, info.Dimension))
			return result
		}
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		records[i] = vecdb.Record{ID: id, Vector: vecs[i], Payload: d.Metadata}
	}

	err = a.storeCall(ctx, op, func(ctx context.Context) error {
		return a.store.Upsert(ctx, info.Name, records)
	})
	if err != nil {
		result.fail(err)
		return result
	}

	result.Upserted = len(records)
	return result
}

func validateDocument(d docs.Document) string {
	if d.Text == "" {
		return "empty text"
	}
	if err := docs.ValidateMetadata(d.Metadata); err != nil {
		return err.Error()
	}
	return ""
}
