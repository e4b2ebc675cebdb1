package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentMemory is a process-local implementation of
// repository.DocumentRepository. It is the conformance baseline for the
// repository contract and the backend used in tests.
//
// A single mutex guards the backing slice. Each listing takes a full copy
// under the lock and releases it before sorting and filtering, so the lock is
// held for O(n) copy cost rather than O(n log n) sort cost and writers are
// never blocked behind a page computation. The copy is also the atomic
// snapshot the page is computed from: a save that lands after the copy was
// taken will not appear in that page.
type DocumentMemory struct {
	mu     sync.Mutex
	docs   []model.Document
	nextID int64
}

// NewDocumentMemory creates an empty in-memory repository.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// FindByID fetches a single document by its id.
func (r *DocumentMemory) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == id {
			d := cloneDocument(r.docs[i])
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListByOwner returns the first page of the owner's documents in (title, id)
// order.
func (r *DocumentMemory) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Document, error) {
	return r.listByOwner(ownerID, limit, nil), nil
}

// ListByOwnerAfter returns the owner's documents strictly after the cursor in
// (title, id) order.
func (r *DocumentMemory) ListByOwnerAfter(ctx context.Context, ownerID string, limit int, cursor repository.Cursor) ([]model.Document, error) {
	return r.listByOwner(ownerID, limit, &cursor), nil
}

// Save stores a copy of the document. An id of 0 is replaced by the next
// value of the in-process counter; a non-zero id is kept, subject to
// uniqueness. The counter never re-issues a caller-supplied id.
func (r *DocumentMemory) Save(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	r.mu.Lock()
	stored := cloneDocument(*doc)
	if stored.ID == 0 {
		r.nextID++
		stored.ID = r.nextID
	} else {
		for i := range r.docs {
			if r.docs[i].ID == stored.ID {
				r.mu.Unlock()
				return nil, repository.ErrDuplicateID
			}
		}
		if stored.ID > r.nextID {
			r.nextID = stored.ID
		}
	}
	r.docs = append(r.docs, stored)
	r.mu.Unlock()

	out := cloneDocument(stored)
	return &out, nil
}

// listByOwner implements the keyset page query against a snapshot: filter by
// owner, filter by the strictly-after predicate (nil cursor = first page),
// sort ascending by (title, id), truncate to limit. Correctness-first: a full
// scan and sort per page.
func (r *DocumentMemory) listByOwner(ownerID string, limit int, cursor *repository.Cursor) []model.Document {
	snapshot := r.snapshot()

	page := make([]model.Document, 0)
	for i := range snapshot {
		if snapshot[i].OwnerID != ownerID {
			continue
		}
		if cursor != nil && !afterCursor(&snapshot[i], cursor) {
			continue
		}
		page = append(page, snapshot[i])
	}

	sort.Slice(page, func(i, j int) bool {
		if page[i].Title != page[j].Title {
			return page[i].Title < page[j].Title
		}
		return page[i].ID < page[j].ID
	})

	if limit < 0 {
		limit = 0
	}
	if len(page) > limit {
		page = page[:limit]
	}
	return page
}

// afterCursor is the strictly-after predicate matching the ascending
// (title, id) ordering: a row is included when its title is greater than the
// cursor title, or the titles are equal and its id is greater. Titles compare
// byte-wise, exactly as the sort does.
func afterCursor(doc *model.Document, cursor *repository.Cursor) bool {
	if doc.Title != cursor.Title {
		return doc.Title > cursor.Title
	}
	return doc.ID > cursor.ID
}

// snapshot copies the collection under the lock. Everything downstream works
// on the copy.
func (r *DocumentMemory) snapshot() []model.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Document, len(r.docs))
	for i := range r.docs {
		out[i] = cloneDocument(r.docs[i])
	}
	return out
}

// cloneDocument deep-copies a document so callers never share the Tags slice
// with the store.
func cloneDocument(d model.Document) model.Document {
	tags := make([]string, len(d.Tags))
	copy(tags, d.Tags)
	d.Tags = tags
	return d
}
