package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of
// repository.DocumentRepository. It uses database/sql with parameterized
// queries and contains no business logic.
//
// Title comparisons use COLLATE "C" so the ordering matches the byte-wise
// comparison of the reference implementation; the (owner_id, title, id) index
// created by the migration uses the same collation. Results must be identical
// to the reference in-memory repository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// FindByID fetches a single document by its id.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	const q = `
		SELECT id, title, content, tags, owner_id
		FROM documents
		WHERE id = $1
	`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListByOwner returns the first page of the owner's documents in (title, id)
// order.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Document, error) {
	if limit <= 0 {
		return []model.Document{}, nil
	}
	const q = `
		SELECT id, title, content, tags, owner_id
		FROM documents
		WHERE owner_id = $1
		ORDER BY title COLLATE "C" ASC, id ASC
		LIMIT $2
	`
	return r.queryDocuments(ctx, q, ownerID, limit)
}

// ListByOwnerAfter returns the owner's documents strictly after the cursor.
// The predicate mirrors the ORDER BY exactly: rows with a greater title, or
// the same title and a greater id.
func (r *DocumentPostgres) ListByOwnerAfter(ctx context.Context, ownerID string, limit int, cursor repository.Cursor) ([]model.Document, error) {
	if limit <= 0 {
		return []model.Document{}, nil
	}
	const q = `
		SELECT id, title, content, tags, owner_id
		FROM documents
		WHERE owner_id = $1
		  AND (title COLLATE "C" > $2 OR (title = $2 AND id > $3))
		ORDER BY title COLLATE "C" ASC, id ASC
		LIMIT $4
	`
	return r.queryDocuments(ctx, q, ownerID, cursor.Title, cursor.ID, limit)
}

// Save inserts a new document row and returns the stored record. An id of 0
// lets the sequence assign one; a non-zero id is inserted as given and maps a
// primary-key violation to ErrDuplicateID.
func (r *DocumentPostgres) Save(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	var row *sql.Row
	if doc.ID == 0 {
		const q = `
			INSERT INTO documents (title, content, tags, owner_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, title, content, tags, owner_id
		`
		row = r.db.QueryRowContext(ctx, q, doc.Title, doc.Content, tags, doc.OwnerID)
	} else {
		const q = `
			INSERT INTO documents (id, title, content, tags, owner_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, title, content, tags, owner_id
		`
		row = r.db.QueryRowContext(ctx, q, doc.ID, doc.Title, doc.Content, tags, doc.OwnerID)
	}

	out, err := scanDocument(row)
	if err != nil {
		if doc.ID != 0 && isUniqueViolation(err) {
			return nil, repository.ErrDuplicateID
		}
		return nil, err
	}
	return out, nil
}

func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var tags []byte
	if err := row.Scan(&d.ID, &d.Title, &d.Content, &tags, &d.OwnerID); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &d.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return &d, nil
}

// isUniqueViolation matches the SQLSTATE for unique_violation (23505) without
// depending on the driver's error type.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var st sqlState
	if errors.As(err, &st) {
		return st.SQLState() == "23505"
	}
	return false
}
