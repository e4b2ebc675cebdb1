package extract

import (
	"context"
	"strings"

	"docvault/internal/model"
)

// TextExtractor obtains plain text from an uploaded file.
type TextExtractor interface {
	// ExtractText returns the text of the upload, or "" for formats no
	// extraction applies to. Failure to read an eligible file is an error.
	ExtractText(ctx context.Context, in *model.UploadedFile) (string, error)
}

// OCRClient recognizes text in a file via a remote OCR service.
type OCRClient interface {
	Recognize(ctx context.Context, fileName string, data []byte) (string, error)
}

// ocrExtensions are the non-PDF formats worth sending to OCR.
var ocrExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tif":  true,
	"tiff": true,
	"webp": true,
}

// Extractor is the production TextExtractor. PDFs are read from their text
// layer first; an empty or whitespace-only text layer (a scanned PDF) or an
// unreadable one falls back to remote OCR. Non-PDF image formats go straight
// to OCR. Everything else yields empty text without an error.
type Extractor struct {
	ocr OCRClient
}

// NewExtractor constructs an Extractor around the given OCR client.
func NewExtractor(ocr OCRClient) *Extractor {
	return &Extractor{ocr: ocr}
}

var _ TextExtractor = (*Extractor)(nil)

func (e *Extractor) ExtractText(ctx context.Context, in *model.UploadedFile) (string, error) {
	if in.IsPDF() {
		if text, err := pdfText(in.Data); err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		return e.ocr.Recognize(ctx, in.FileName, in.Data)
	}
	if ocrExtensions[in.Extension] {
		return e.ocr.Recognize(ctx, in.FileName, in.Data)
	}
	return "", nil
}
