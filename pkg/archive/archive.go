// Package archive persists finished trace documents so they can be replayed
// later or served over HTTP.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process storage for tests and a single server
//   - [FileStore]: JSON files in a directory, used by the CLI
//   - [MongoStore]: a MongoDB collection for shared deployments
//
// Every saved document gets a random UUID unless it already carries an id.
// Documents are stored in their JSON form, so a document read back holds
// decoded frames rather than the engine's snapshot types.
//
// # Usage
//
//	store := archive.NewMemoryStore()
//	id, err := store.Save(ctx, doc)
//	if err != nil {
//	    return err
//	}
//	doc, err = store.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeTraceNotFound) {
//	    // Unknown or deleted id
//	}
package archive

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// DefaultListLimit caps List when the caller passes a limit <= 0.
const DefaultListLimit = 50

// Summary describes a stored document without its steps.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Engine    string    `json:"engine" bson:"engine"`
	Operation string    `json:"operation" bson:"operation"`
	Steps     int       `json:"steps" bson:"steps"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Save stores doc and returns its id, assigning a new one when doc.ID
	// is empty. Saving an existing id replaces the document.
	Save(ctx context.Context, doc *trace.Document) (string, error)

	// Get retrieves a document by id. A missing id is a TRACE_NOT_FOUND error.
	Get(ctx context.Context, id string) (*trace.Document, error)

	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of the newest documents first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// prepare assigns an id to doc if needed and returns its encoded form.
func prepare(doc *trace.Document) (Summary, []byte, error) {
	if doc.ID == "" {
		doc.ID = NewID()
	} else if err := errors.ValidateTraceID(doc.ID); err != nil {
		return Summary{}, nil, err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	var buf bytes.Buffer
	if err := trace.WriteJSON(doc, &buf); err != nil {
		return Summary{}, nil, errors.Wrap(errors.ErrCodeInternal, err, "encode trace %s", doc.ID)
	}
	return summarize(doc), buf.Bytes(), nil
}

func summarize(doc *trace.Document) Summary {
	return Summary{
		ID:        doc.ID,
		Engine:    doc.Engine,
		Operation: doc.Operation,
		Steps:     doc.Steps.Len(),
		CreatedAt: doc.CreatedAt,
	}
}

func decode(id string, data []byte) (*trace.Document, error) {
	doc, err := trace.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode trace %s", id)
	}
	return doc, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeTraceNotFound, "trace %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
