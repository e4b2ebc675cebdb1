package postgres

import (
	"context"
	"database/sql"
	"testing"

	"docvault/internal/model"
	"docvault/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "4c8b1a52-95cf-4df0-bd9f-df4736a7e601"

func docRows(docs ...model.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "content", "tags", "owner_id"})
	for _, d := range docs {
		rows.AddRow(d.ID, d.Title, d.Content, []byte(`[]`), d.OwnerID)
	}
	return rows
}

func TestDocumentPostgres_Save_AssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO documents \(title, content, tags, owner_id\)`).
		WithArgs("T", "C", []byte(`[]`), testOwner).
		WillReturnRows(docRows(model.Document{ID: 7, Title: "T", Content: "C", OwnerID: testOwner}))

	saved, err := repo.Save(ctx, model.NewDocument(0, "T", "C", testOwner))

	assert.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, int64(7), saved.ID)
	assert.NotNil(t, saved.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type uniqueViolationErr struct{}

func (uniqueViolationErr) Error() string    { return "duplicate key value violates unique constraint" }
func (uniqueViolationErr) SQLState() string { return "23505" }

func TestDocumentPostgres_Save_ExplicitID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("insert with given id", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO documents \(id, title, content, tags, owner_id\)`).
			WithArgs(int64(42), "T", "C", []byte(`[]`), testOwner).
			WillReturnRows(docRows(model.Document{ID: 42, Title: "T", Content: "C", OwnerID: testOwner}))

		saved, err := repo.Save(ctx, model.NewDocument(42, "T", "C", testOwner))

		assert.NoError(t, err)
		assert.Equal(t, int64(42), saved.ID)
	})

	t.Run("unique violation maps to ErrDuplicateID", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO documents \(id, title, content, tags, owner_id\)`).
			WithArgs(int64(42), "T", "C", []byte(`[]`), testOwner).
			WillReturnError(uniqueViolationErr{})

		_, err := repo.Save(ctx, model.NewDocument(42, "T", "C", testOwner))

		assert.ErrorIs(t, err, repository.ErrDuplicateID)
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents\s+WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(docRows(model.Document{ID: 1, Title: "A", Content: "a", OwnerID: testOwner}))

		doc, err := repo.FindByID(ctx, 1)

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, int64(1), doc.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents\s+WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, 99)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_ListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("orders by title then id", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM documents\s+WHERE owner_id = \$1\s+ORDER BY title COLLATE "C" ASC, id ASC`).
			WithArgs(testOwner, 100).
			WillReturnRows(docRows(
				model.Document{ID: 1, Title: "A", OwnerID: testOwner},
				model.Document{ID: 3, Title: "B", OwnerID: testOwner},
				model.Document{ID: 2, Title: "C", OwnerID: testOwner},
			))

		page, err := repo.ListByOwner(ctx, testOwner, 100)

		assert.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, int64(3), page[1].ID)
	})

	t.Run("limit zero short-circuits without a query", func(t *testing.T) {
		page, err := repo.ListByOwner(ctx, testOwner, 0)

		assert.NoError(t, err)
		assert.Empty(t, page)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListByOwnerAfter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery(`AND \(title COLLATE "C" > \$2 OR \(title = \$2 AND id > \$3\)\)`).
		WithArgs(testOwner, "B", int64(2), 10).
		WillReturnRows(docRows(model.Document{ID: 3, Title: "B", OwnerID: testOwner}))

	page, err := repo.ListByOwnerAfter(ctx, testOwner, 10, repository.Cursor{Title: "B", ID: 2})

	assert.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(3), page[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
