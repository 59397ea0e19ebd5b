package agent

import (
	"context"

	"github.com/vectl/vectl/pkg/docs"
	"github.com/vectl/vectl/pkg/vecdb"
)

// Op names a dispatchable operation.
type Op string

const (
	OpListCollections  Op = "list_collections"
	OpCreateCollection Op = "create_collection"
	OpAddDocuments     Op = "add_documents"
	OpQuery            Op = "query"
	OpCollectionInfo   Op = "collection_info"
	OpDeleteCollection Op = "delete_collection"
)

// CreateParams are the inputs for create_collection.
type CreateParams struct {
	Name      string `json:"name" yaml:"name"`
	Dimension int    `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Metric    string `json:"metric,omitempty" yaml:"metric,omitempty"`
	ExistsOK  bool   `json:"exists_ok,omitempty" yaml:"exists_ok,omitempty"`
}

// AddParams are the inputs for add_documents.
type AddParams struct {
	Collection      string          `json:"collection" yaml:"collection"`
	Documents       []docs.Document `json:"documents" yaml:"documents"`
	BatchSize       int             `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	ContinueOnError bool            `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`
}

// QueryParams are the inputs for query.
type QueryParams struct {
	Collection     string        `json:"collection" yaml:"collection"`
	Text           string        `json:"text" yaml:"text"`
	TopK           int           `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Filter         *vecdb.Filter `json:"filter,omitempty" yaml:"filter,omitempty"`
	ScoreThreshold *float32      `json:"score_threshold,omitempty" yaml:"score_threshold,omitempty"`
}

// Request names an operation and carries its parameters. Exactly the
// parameter block matching Op is consulted.
type Request struct {
	Op Op `json:"op" yaml:"op"`

	// Create holds create_collection parameters.
	Create *CreateParams `json:"create,omitempty" yaml:"create,omitempty"`

	// Add holds add_documents parameters.
	Add *AddParams `json:"add,omitempty" yaml:"add,omitempty"`

	// Query holds query parameters.
	Query *QueryParams `json:"query,omitempty" yaml:"query,omitempty"`

	// Name is the target for collection_info and delete_collection.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ErrorInfo is the normalized failure shape in a Response.
type ErrorInfo struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Response is the normalized result of a dispatched operation. OK is
// false exactly when Error is set; the payload field matching the
// operation is populated on success.
type Response struct {
	Op    Op         `json:"op" yaml:"op"`
	OK    bool       `json:"ok" yaml:"ok"`
	Error *ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`

	Collections []vecdb.CollectionInfo `json:"collections,omitempty" yaml:"collections,omitempty"`
	Collection  *vecdb.CollectionInfo  `json:"collection,omitempty" yaml:"collection,omitempty"`
	Report      *IngestReport          `json:"report,omitempty" yaml:"report,omitempty"`
	Matches     []vecdb.Match          `json:"matches,omitempty" yaml:"matches,omitempty"`
	Deleted     string                 `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// Dispatch routes a request to the matching operation, validating its
// required inputs first, and normalizes the outcome. Failures never
// vanish: every error comes back with the operation name, its kind,
// and a message. Dispatch holds no state across invocations.
func (a *Agent) Dispatch(ctx context.Context, req Request) *Response {
	resp := &Response{Op: req.Op}

	switch req.Op {
	case OpListCollections:
		infos, err := a.ListCollections(ctx)
		if err != nil {
			return resp.failWith(err)
		}
		resp.Collections = infos

	case OpCreateCollection:
		if req.Create == nil || req.Create.Name == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "create.name is required"))
		}
		p := req.Create
		info, err := a.CreateCollection(ctx, p.Name, p.Dimension, p.Metric, p.ExistsOK)
		if err != nil {
			return resp.failWith(err)
		}
		resp.Collection = info

	case OpAddDocuments:
		if req.Add == nil || req.Add.Collection == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "add.collection is required"))
		}
		if len(req.Add.Documents) == 0 {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "add.documents must not be empty"))
		}
		p := req.Add
		report, err := a.AddDocuments(ctx, p.Collection, p.Documents, IngestOptions{
			BatchSize:       p.BatchSize,
			ContinueOnError: p.ContinueOnError,
		})
		resp.Report = report
		if err != nil {
			return resp.failWith(err)
		}

	case OpQuery:
		if req.Query == nil || req.Query.Collection == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "query.collection is required"))
		}
		if req.Query.Text == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "query.text is required"))
		}
		p := req.Query
		matches, err := a.Query(ctx, p.Collection, p.Text, QueryOptions{
			TopK:           p.TopK,
			Filter:         p.Filter,
			ScoreThreshold: p.ScoreThreshold,
		})
		if err != nil {
			return resp.failWith(err)
		}
		resp.Matches = matches

	case OpCollectionInfo:
		if req.Name == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "name is required"))
		}
		info, err := a.DescribeCollection(ctx, req.Name)
		if err != nil {
			return resp.failWith(err)
		}
		resp.Collection = info

	case OpDeleteCollection:
		if req.Name == "" {
			return resp.failWith(errorf(string(req.Op), KindInvalidArgument, "name is required"))
		}
		if err := a.DeleteCollection(ctx, req.Name); err != nil {
			return resp.failWith(err)
		}
		resp.Deleted = req.Name

	default:
		return resp.failWith(errorf("dispatch", KindInvalidArgument, "unknown operation %q", req.Op))
	}

	resp.OK = true
	return resp
}

func (r *Response) failWith(err error) *Response {
	r.OK = false
	if e, ok := AsError(err); ok {
		r.Error = &ErrorInfo{Kind: e.Kind, Message: e.Message()}
	} else {
		r.Error = &ErrorInfo{Kind: KindInternal, Message: err.Error()}
	}
	return r
}
