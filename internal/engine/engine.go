// Package engine provides the extraction-engine adapter: uploading documents
// to Gemini, polling their processing state, and running generation requests
// against inline text or uploaded file references.
package engine

import (
	"context"
	"time"
)

// DocumentState is the remote processing state of an uploaded document.
type DocumentState string

// Document states reported by the engine.
const (
	StateProcessing DocumentState = "PROCESSING"
	StateActive     DocumentState = "ACTIVE"
	StateFailed     DocumentState = "FAILED"
)

// UploadedDocument is the engine-side handle for a transferred file.
type UploadedDocument struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	MIMEType    string            `json:"mimeType"`
	SizeBytes   int64             `json:"sizeBytes"`
	State       DocumentState     `json:"state"`
	CreateTime  time.Time         `json:"createTime"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FileReference points at an already-uploaded document for remote-reference
// generation requests.
type FileReference struct {
	URI      string
	MIMEType string
}

// Content is the document payload for a generation request: either inline
// text or a list of remote file references, never both.
type Content struct {
	InlineText string
	Files      []FileReference
}

// GenerateOptions control a single generation request.
type GenerateOptions struct {
	Temperature       float32
	MaxOutputTokens   int32
	SystemInstruction string
	JSONResponse      bool
}

// Citation references a source location backing part of a completion.
type Citation struct {
	Source     string `json:"source"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}

// GenerateResult is the outcome of a generation request.
type GenerateResult struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// Engine abstracts the hosted extraction engine consumed by the sync manager
// and the lead extractor.
type Engine interface {
	// UploadFile transfers a local file to the engine. Safe to retry.
	UploadFile(ctx context.Context, localPath, displayName string) (*UploadedDocument, error)
	// ListFiles returns all uploaded documents, paginating internally.
	ListFiles(ctx context.Context) ([]UploadedDocument, error)
	// GetFile returns the current state of one uploaded document.
	GetFile(ctx context.Context, name string) (*UploadedDocument, error)
	// DeleteFile removes an uploaded document.
	DeleteFile(ctx context.Context, name string) error
	// Generate runs one completion request against the given content.
	Generate(ctx context.Context, prompt string, content Content, opts GenerateOptions) (*GenerateResult, error)
	// WaitForActive polls an uploaded document until its state leaves
	// PROCESSING or maxWait elapses.
	WaitForActive(ctx context.Context, name string, maxWait time.Duration) error
	// Close releases any resources held by the engine client.
	Close() error
}
