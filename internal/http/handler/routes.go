package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, pageLimit int) {
	// Readiness: pings the database when one is configured
	app.Get("/health", HealthCheck(db))

	// Backward-compatible simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Document ingestion and retrieval
	app.Post("/documents", CreateDocument(docSvc))
	app.Get("/documents", ListDocuments(docSvc, pageLimit))
	app.Get("/documents/:id", GetDocument(docSvc))
}
