package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/memory"
	"docvault/internal/storage"
	extractMocks "docvault/internal/extract/mocks"
	repoMocks "docvault/internal/repository/mocks"
	storeMocks "docvault/internal/storage/mocks"
	sumMocks "docvault/internal/summarize/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOwner = "0b154b67-7d06-4a0a-8d0a-3f4e0a1f9a01"

type serviceMocks struct {
	store      *storeMocks.MockStorage
	repo       *repoMocks.MockDocumentRepository
	extractor  *extractMocks.MockTextExtractor
	summarizer *sumMocks.MockSummarizer
}

func newServiceWithMocks() (DocumentService, *serviceMocks) {
	m := &serviceMocks{
		store:      new(storeMocks.MockStorage),
		repo:       new(repoMocks.MockDocumentRepository),
		extractor:  new(extractMocks.MockTextExtractor),
		summarizer: new(sumMocks.MockSummarizer),
	}
	svc := NewDocumentService(m.store, m.repo, m.extractor, m.summarizer, 0, 0)
	return svc, m
}

func (m *serviceMocks) assertAll(t *testing.T) {
	m.store.AssertExpectations(t)
	m.repo.AssertExpectations(t)
	m.extractor.AssertExpectations(t)
	m.summarizer.AssertExpectations(t)
}

func TestDocumentService_Create_Direct(t *testing.T) {
	ctx := context.Background()

	t.Run("persists caller title and content", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.repo.On("Save", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.ID == 0 && doc.Title == "T" && doc.Content == "C" && doc.OwnerID == testOwner
		})).Return(func(ctx context.Context, doc *model.Document) *model.Document {
			out := *doc
			out.ID = 1
			return &out
		}, nil)

		doc, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, Title: "T", Content: "C"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), doc.ID)
		assert.Equal(t, "T", doc.Title)
		assert.Equal(t, "C", doc.Content)
		m.assertAll(t)
	})

	t.Run("owner required", func(t *testing.T) {
		svc, m := newServiceWithMocks()

		_, err := svc.Create(ctx, CreateDocumentInput{Title: "T", Content: "C"})

		assert.ErrorIs(t, err, ErrOwnerRequired)
		m.assertAll(t)
	})

	t.Run("save failure is a persistence error", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.repo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, Title: "T", Content: "C"})

		assert.ErrorIs(t, err, ErrPersistence)
		m.assertAll(t)
	})
}

func TestDocumentService_Create_FromFile(t *testing.T) {
	ctx := context.Background()
	file := model.NewUploadedFile("scan.pdf", []byte("%PDF-"), testOwner)

	t.Run("title and content come from the summary, not the caller", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("extracted text", nil)
		m.summarizer.On("Summarize", ctx, "extracted text").
			Return(&model.SummaryResult{Summary: "the summary", Title: "Derived Title"}, nil)
		m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "uploads/") && strings.HasSuffix(key, ".pdf")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.Metadata["original-filename"] == "scan.pdf" && opt.Metadata["owner-id"] == testOwner
		})).Return(storage.ObjectInfo{}, nil)
		m.repo.On("Save", ctx, mock.MatchedBy(func(doc *model.Document) bool {
			return doc.ID == 0 && doc.Title == "Derived Title" && doc.Content == "the summary" && doc.OwnerID == testOwner
		})).Return(&model.Document{ID: 5, Title: "Derived Title", Content: "the summary", OwnerID: testOwner}, nil)

		doc, err := svc.Create(ctx, CreateDocumentInput{
			OwnerID: testOwner,
			Title:   "caller title, ignored",
			Content: "caller content, ignored",
			File:    file,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(5), doc.ID)
		assert.Equal(t, "Derived Title", doc.Title)
		assert.Equal(t, "the summary", doc.Content)
		m.assertAll(t)
	})

	t.Run("extraction failure aborts before any write", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("", errors.New("ocr down"))

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrExtraction)
		m.assertAll(t)
	})

	t.Run("empty extracted text is an extraction failure", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("  \n\t ", nil)

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrExtraction)
		m.assertAll(t)
	})

	t.Run("summarization failure aborts before any write", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("text", nil)
		m.summarizer.On("Summarize", ctx, "text").Return(nil, errors.New("model not loaded"))

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrSummarization)
		m.assertAll(t)
	})

	t.Run("archive failure is a persistence error and skips save", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("text", nil)
		m.summarizer.On("Summarize", ctx, "text").
			Return(&model.SummaryResult{Summary: "s", Title: "t"}, nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("storage down"))

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrPersistence)
		m.assertAll(t)
	})

	t.Run("save failure rolls the archive object back", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("text", nil)
		m.summarizer.On("Summarize", ctx, "text").
			Return(&model.SummaryResult{Summary: "s", Title: "t"}, nil)
		var putKey string
		m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			putKey = key
			return true
		}), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		m.repo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		m.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
			return key == putKey
		})).Return(nil)

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrPersistence)
		m.assertAll(t)
	})

	t.Run("rollback failure is reported alongside the save failure", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.extractor.On("ExtractText", ctx, file).Return("text", nil)
		m.summarizer.On("Summarize", ctx, "text").
			Return(&model.SummaryResult{Summary: "s", Title: "t"}, nil)
		m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
		m.repo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		m.store.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))

		_, err := svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})

		assert.ErrorIs(t, err, ErrPersistence)
		assert.Contains(t, err.Error(), "archive rollback failed")
		m.assertAll(t)
	})
}

// A failed ingestion must leave the repository exactly as it was. Run the
// pipeline against the real in-memory repository to observe the count.
func TestDocumentService_Create_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDocumentMemory()

	_, err := repo.Save(ctx, model.NewDocument(0, "Existing", "c", testOwner))
	require.NoError(t, err)

	extractor := new(extractMocks.MockTextExtractor)
	extractor.On("ExtractText", ctx, mock.Anything).Return("", errors.New("ocr down"))
	svc := NewDocumentService(new(storeMocks.MockStorage), repo, extractor, new(sumMocks.MockSummarizer), 0, 0)

	file := model.NewUploadedFile("scan.png", []byte{0x89}, testOwner)
	_, err = svc.Create(ctx, CreateDocumentInput{OwnerID: testOwner, File: file})
	assert.ErrorIs(t, err, ErrExtraction)

	page, err := repo.ListByOwner(ctx, testOwner, 100)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   7,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, int64(7)).Return(&model.Document{ID: 7}, nil)
			},
		},
		{
			name: "not found mapping",
			id:   8,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, int64(8)).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage failure is a persistence error",
			id:   9,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, int64(9)).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks()
			tt.setupMocks(m.repo)

			doc, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.id, doc.ID)
			}
			m.assertAll(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes owner and limit through", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.repo.On("ListByOwner", ctx, testOwner, 100).
			Return([]model.Document{{ID: 1}, {ID: 2}}, nil)

		page, err := svc.List(ctx, testOwner, 100)

		require.NoError(t, err)
		assert.Len(t, page, 2)
		m.assertAll(t)
	})

	t.Run("owner required", func(t *testing.T) {
		svc, _ := newServiceWithMocks()
		_, err := svc.List(ctx, "", 100)
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	t.Run("repository error is a persistence error", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.repo.On("ListByOwner", ctx, testOwner, 100).Return(nil, errors.New("db fail"))

		_, err := svc.List(ctx, testOwner, 100)

		assert.ErrorIs(t, err, ErrPersistence)
		m.assertAll(t)
	})
}

func TestDocumentService_ListAfter(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the cursor from title and id", func(t *testing.T) {
		svc, m := newServiceWithMocks()
		m.repo.On("ListByOwnerAfter", ctx, testOwner, 10, repository.Cursor{Title: "B", ID: 2}).
			Return([]model.Document{{ID: 3, Title: "B"}}, nil)

		page, err := svc.ListAfter(ctx, testOwner, 10, "B", 2)

		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, int64(3), page[0].ID)
		m.assertAll(t)
	})

	t.Run("owner required", func(t *testing.T) {
		svc, _ := newServiceWithMocks()
		_, err := svc.ListAfter(ctx, "", 10, "B", 2)
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})
}
