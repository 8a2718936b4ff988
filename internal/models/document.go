package models

import (
	"fmt"
	"time"
)

// DocumentType identifies the declared format of an uploaded file.
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "PDF"
	DocumentTypeText DocumentType = "TEXT"
)

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

const (
	// StatusPending marks a document queued for ingestion.
	StatusPending DocumentStatus = "PENDING"
	// StatusProcessing marks a document whose chunks are being embedded and indexed.
	StatusProcessing DocumentStatus = "PROCESSING"
	// StatusIndexed marks a document whose chunks are fully persisted. Terminal.
	StatusIndexed DocumentStatus = "INDEXED"
	// StatusFailed marks an ingestion failure. Terminal; recovery is delete and re-upload.
	StatusFailed DocumentStatus = "FAILED"
	// StatusReady marks a standalone (non-workspace) document that is never
	// chunked or embedded and is always available for document-scope chat.
	StatusReady DocumentStatus = "READY"
)

// documentTransitions enumerates the legal lifecycle moves.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusIndexed, StatusFailed},
}

// CanTransition reports whether the status may move to the target state.
// INDEXED, FAILED and READY are terminal.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	for _, next := range documentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is final for this upload attempt.
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed || s == StatusReady
}

// Document represents an uploaded file with its extracted text.
type Document struct {
	ID          string         `json:"id" badgerhold:"key"`
	UserID      string         `json:"user_id"`
	WorkspaceID string         `json:"workspace_id,omitempty"` // empty for standalone documents
	Name        string         `json:"name"`
	Type        DocumentType   `json:"type"`
	Content     string         `json:"content"`
	Size        string         `json:"size"` // human-readable, e.g. "12.34 KB"
	Status      DocumentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Transition moves the document to the target status, rejecting moves the
// lifecycle does not allow.
func (d *Document) Transition(to DocumentStatus) error {
	if !d.Status.CanTransition(to) {
		return fmt.Errorf("invalid document status transition %s -> %s", d.Status, to)
	}
	d.Status = to
	d.UpdatedAt = time.Now()
	return nil
}

// Upload carries the raw bytes and declared type of an incoming file.
type Upload struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}
