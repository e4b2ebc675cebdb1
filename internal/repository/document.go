package repository

import (
	"context"
	"errors"

	"docvault/internal/model"
)

var (
	// ErrNotFound is returned by FindByID when no document matches the id.
	// It is a valid empty result, not a storage failure.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateID is returned by Save when a caller-supplied non-zero id
	// already exists. Save never updates in place.
	ErrDuplicateID = errors.New("document id already exists")
)

// Cursor marks a position in the (title, id) ordering. It is an opaque
// position marker handed back by the caller to request the next page; it is
// never stored.
type Cursor struct {
	Title string
	ID    int64
}

// DocumentRepository defines data access for documents. No business logic
// here — strictly persistence operations. Implementations live in subpackages
// (memory, postgres) and must be safe for concurrent use.
//
// Listings are ordered ascending by (title, id), with titles compared
// byte-wise. Title alone is not unique, so the composite key is the only
// ordering a cursor can safely resume from.
type DocumentRepository interface {
	// FindByID returns the document with the given id, or ErrNotFound.
	// Ownership is not checked here; scoping is a caller concern.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// ListByOwner returns up to limit documents belonging to ownerID in
	// (title, id) order. This is the first-page form of ListByOwnerAfter.
	// limit 0 yields an empty page.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Document, error)

	// ListByOwnerAfter returns up to limit documents belonging to ownerID
	// strictly after the cursor in (title, id) order. A cursor that no longer
	// matches any stored row filters normally; no error is raised.
	ListByOwnerAfter(ctx context.Context, ownerID string, limit int, cursor Cursor) ([]model.Document, error)

	// Save persists the document. An id of 0 requests assignment of a new
	// unique id; a non-zero id is inserted as given, failing with
	// ErrDuplicateID if taken. Returns the stored document with its id set.
	Save(ctx context.Context, doc *model.Document) (*model.Document, error)
}
