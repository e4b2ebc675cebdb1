package model

import "strings"

// UploadedFile carries the raw bytes of an uploaded file through the ingestion
// pipeline. Immutable once constructed.
type UploadedFile struct {
	FileName  string
	Data      []byte
	Extension string
	OwnerID   string
}

// NewUploadedFile builds an UploadedFile, deriving the extension from the
// characters after the last dot in the file name, lower-cased.
func NewUploadedFile(fileName string, data []byte, ownerID string) *UploadedFile {
	ext := ""
	if idx := strings.LastIndex(fileName, "."); idx >= 0 {
		ext = strings.ToLower(fileName[idx+1:])
	}
	return &UploadedFile{
		FileName:  fileName,
		Data:      data,
		Extension: ext,
		OwnerID:   ownerID,
	}
}

// IsPDF reports whether the file name carries a .pdf suffix.
func (u *UploadedFile) IsPDF() bool {
	return strings.HasSuffix(strings.ToLower(u.FileName), ".pdf")
}
