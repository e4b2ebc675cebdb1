package handler

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/service"
)

// createDocumentCommand is the JSON part of the multipart create request.
type createDocumentCommand struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	OwnerID string `json:"owner_id"`
}

// CreateDocument handles POST /documents (multipart/form-data).
//
// The "json" field carries the command; an optional "file" field carries an
// upload. With a file, the stored document is derived from extraction and
// summarization; without one, the command's title and content are stored
// directly.
//
// @Summary Create a document
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} model.Document
// @Router /documents [post]
func CreateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.FormValue("json")
		if raw == "" {
			return writeError(c, fiber.StatusBadRequest, "JSON_REQUIRED", "json field is required")
		}
		var cmd createDocumentCommand
		if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "json field is not valid JSON")
		}
		if _, err := uuid.Parse(cmd.OwnerID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OWNER", "owner_id must be a UUID")
		}

		in := service.CreateDocumentInput{
			OwnerID: cmd.OwnerID,
			Title:   cmd.Title,
			Content: cmd.Content,
		}

		if fh, err := c.FormFile("file"); err == nil && fh != nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
			}
			in.File = model.NewUploadedFile(fh.Filename, data, cmd.OwnerID)
		}

		doc, err := docSvc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument handles GET /documents/:id.
//
// @Summary Get a document by id
// @Produce json
// @Param id path int true "document id"
// @Success 200 {object} model.Document
// @Router /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ListDocuments handles GET /documents with keyset pagination.
//
// Query parameters: owner_id (required UUID), limit (default 100),
// title_cursor and id_cursor (both or neither; the last item of the previous
// page). Without cursors this is the first page.
//
// @Summary List an owner's documents in (title, id) order
// @Produce json
// @Param owner_id query string true "owner id"
// @Param limit query int false "page size"
// @Param title_cursor query string false "title of the last seen document"
// @Param id_cursor query int false "id of the last seen document"
// @Success 200 {array} model.Document
// @Router /documents [get]
func ListDocuments(docSvc service.DocumentService, defaultLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID := c.Query("owner_id")
		if _, err := uuid.Parse(ownerID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OWNER", "owner_id must be a UUID")
		}

		limit := defaultLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
			}
			limit = n
		}

		args := c.Context().QueryArgs()
		hasTitle := args.Has("title_cursor")
		hasID := args.Has("id_cursor")
		if hasTitle != hasID {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CURSOR", "title_cursor and id_cursor must be supplied together")
		}

		var (
			page []model.Document
			err  error
		)
		if hasTitle {
			cursorID, parseErr := strconv.ParseInt(c.Query("id_cursor"), 10, 64)
			if parseErr != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_CURSOR", "id_cursor must be an integer")
			}
			page, err = docSvc.ListAfter(c.UserContext(), ownerID, limit, c.Query("title_cursor"), cursorID)
		} else {
			page, err = docSvc.List(c.UserContext(), ownerID, limit)
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	}
}
