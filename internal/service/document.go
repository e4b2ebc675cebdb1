package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docvault/internal/extract"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
	"docvault/internal/summarize"
)

var (
	ErrOwnerRequired = errors.New("owner id is required")
	ErrNotFound      = errors.New("document not found")

	// Stage failures of the ingestion pipeline. Each create call fails with
	// exactly one of these; the underlying cause is wrapped so logs keep the
	// detail while callers only need errors.Is.
	ErrExtraction    = errors.New("text extraction failed")
	ErrSummarization = errors.New("summarization failed")
	ErrPersistence   = errors.New("persistence failed")
)

// CreateDocumentInput is the single entry shape for document creation. Title
// and Content are used when File is nil; when File is set they are ignored
// and the stored title/content come from the summarization result.
type CreateDocumentInput struct {
	OwnerID string
	Title   string
	Content string
	File    *model.UploadedFile
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Create produces exactly one persisted document from either direct
	// title+content or an uploaded file, as a single fallible unit: the first
	// failing stage aborts the call and nothing is persisted.
	Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error)

	// Get returns a single document by its id.
	Get(ctx context.Context, id int64) (*model.Document, error)

	// List returns the first page of the owner's documents in (title, id) order.
	List(ctx context.Context, ownerID string, limit int) ([]model.Document, error)

	// ListAfter returns the owner's documents strictly after the
	// (cursorTitle, cursorID) position.
	ListAfter(ctx context.Context, ownerID string, limit int, cursorTitle string, cursorID int64) ([]model.Document, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store      storage.Storage
	repo       repository.DocumentRepository
	extractor  extract.TextExtractor
	summarizer summarize.Summarizer

	// Per-stage bounds so a slow external service cannot block a request
	// indefinitely; a timeout counts as that stage's failure. Zero disables
	// the bound.
	extractTimeout   time.Duration
	summarizeTimeout time.Duration
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	extractor extract.TextExtractor,
	summarizer summarize.Summarizer,
	extractTimeout, summarizeTimeout time.Duration,
) DocumentService {
	return &documentService{
		store:            store,
		repo:             repo,
		extractor:        extractor,
		summarizer:       summarizer,
		extractTimeout:   extractTimeout,
		summarizeTimeout: summarizeTimeout,
	}
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	if in.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	if in.File == nil {
		doc := model.NewDocument(0, in.Title, in.Content, in.OwnerID)
		return s.persist(ctx, doc, "")
	}

	text, err := s.extractText(ctx, in.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text in %q", ErrExtraction, in.File.FileName)
	}

	summary, err := s.summarizeText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	doc := model.NewDocument(0, summary.Title, summary.Summary, in.OwnerID)

	// Archive the original upload before touching the repository; a failed
	// save rolls the object back so no path leaves partial state visible.
	key, err := s.archive(ctx, in.File)
	if err != nil {
		return nil, fmt.Errorf("%w: archive upload: %w", ErrPersistence, err)
	}
	return s.persist(ctx, doc, key)
}

// Get returns a document by id.
func (s *documentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, ownerID string, limit int) ([]model.Document, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	page, err := s.repo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return page, nil
}

func (s *documentService) ListAfter(ctx context.Context, ownerID string, limit int, cursorTitle string, cursorID int64) ([]model.Document, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	cursor := repository.Cursor{Title: cursorTitle, ID: cursorID}
	page, err := s.repo.ListByOwnerAfter(ctx, ownerID, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return page, nil
}

func (s *documentService) extractText(ctx context.Context, file *model.UploadedFile) (string, error) {
	if s.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.extractTimeout)
		defer cancel()
	}
	return s.extractor.ExtractText(ctx, file)
}

func (s *documentService) summarizeText(ctx context.Context, text string) (*model.SummaryResult, error) {
	if s.summarizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.summarizeTimeout)
		defer cancel()
	}
	return s.summarizer.Summarize(ctx, text)
}

// archive stores the raw upload under a fresh key and returns that key.
func (s *documentService) archive(ctx context.Context, file *model.UploadedFile) (string, error) {
	key := "uploads/" + uuid.New().String()
	if file.Extension != "" {
		key += "." + file.Extension
	}
	_, err := s.store.Put(ctx, key, bytes.NewReader(file.Data), storage.PutObjectOptions{
		Size: int64(len(file.Data)),
		Metadata: map[string]string{
			"original-filename": file.FileName,
			"owner-id":          file.OwnerID,
		},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// persist runs the final stage: exactly one Save on success. If the save
// fails and an archive object was written, the object is deleted so the
// failure leaves both stores as they were.
func (s *documentService) persist(ctx context.Context, doc *model.Document, archiveKey string) (*model.Document, error) {
	saved, err := s.repo.Save(ctx, doc)
	if err != nil {
		if archiveKey != "" {
			if delErr := s.store.Delete(ctx, archiveKey); delErr != nil {
				return nil, fmt.Errorf("%w: save failed: %w; archive rollback failed: %v", ErrPersistence, err, delErr)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return saved, nil
}
