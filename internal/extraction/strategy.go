package extraction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
)

// Strategy produces the document content for one extraction request. The two
// implementations share a contract so the orchestrator can choose between
// them at a single point.
type Strategy interface {
	Name() string
	Content(ctx context.Context, query string, docs []engine.UploadedDocument) (engine.Content, error)
}

// ErrNoDocuments indicates no documents are available to extract from.
var ErrNoDocuments = fmt.Errorf("no documents available")

const (
	// defaultMaxFiles bounds how many documents inline-text mode reads.
	defaultMaxFiles = 10
	// maxContentLength bounds how much of each file is read, in characters.
	maxContentLength = 50000
	// maxFilesPerRequest is the engine's verified per-request limit on file
	// references.
	maxFilesPerRequest = 1
)

// InlineTextStrategy fetches documents from the source and submits their
// text inline with the prompt. Preferred whenever a document source is
// configured: it has no per-request handle limit.
type InlineTextStrategy struct {
	Source   drive.Source
	MaxFiles int
	Log      *slog.Logger
}

// Name identifies the strategy in logs.
func (s *InlineTextStrategy) Name() string { return "inline-text" }

// Content downloads up to MaxFiles documents, reads each bounded by
// maxContentLength, and concatenates them with per-file delimiter headers.
func (s *InlineTextStrategy) Content(ctx context.Context, _ string, _ []engine.UploadedDocument) (engine.Content, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	files, err := s.Source.ListAll(ctx)
	if err != nil {
		return engine.Content{}, fmt.Errorf("failed to list source files: %w", err)
	}
	if len(files) == 0 {
		return engine.Content{}, fmt.Errorf("%w: no files found in source folder", ErrNoDocuments)
	}

	maxFiles := s.MaxFiles
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}

	var sb strings.Builder
	read := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return engine.Content{}, err
		}
		lower := strings.ToLower(file.Name)
		if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".txt") {
			log.Debug("skipping unsupported inline file type", "file", file.Name)
			continue
		}

		localPath, err := s.Source.Download(ctx, file.ID, file.Name)
		if err != nil {
			log.Warn("failed to download file", "file", file.Name, "error", err)
			continue
		}

		content, err := readHead(localPath, maxContentLength)
		os.Remove(localPath)
		if err != nil {
			log.Warn("failed to read file", "file", file.Name, "error", err)
			continue
		}

		sb.WriteString(fmt.Sprintf("=== File: %s ===\n%s\n\n\n", file.Name, content))
		read++
	}

	if read == 0 {
		return engine.Content{}, fmt.Errorf("%w: no file content could be read (CSV, TXT supported)", ErrNoDocuments)
	}

	log.Info("built inline content", "files", read, "chars", sb.Len())
	return engine.Content{InlineText: sb.String()}, nil
}

// FileReferenceStrategy passes already-uploaded remote handles by reference.
// Fallback only: the engine limits how many handles one request may carry.
type FileReferenceStrategy struct {
	MaxPerRequest int
	Log           *slog.Logger
}

// Name identifies the strategy in logs.
func (s *FileReferenceStrategy) Name() string { return "file-reference" }

// Content selects up to MaxPerRequest ACTIVE handles, preferring files whose
// display name overlaps the query keywords, falling back to the first N.
func (s *FileReferenceStrategy) Content(_ context.Context, query string, docs []engine.UploadedDocument) (engine.Content, error) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}

	var active []engine.UploadedDocument
	for _, doc := range docs {
		if doc.State == engine.StateActive {
			active = append(active, doc)
		}
	}
	if len(active) == 0 {
		return engine.Content{}, fmt.Errorf("%w: no active files; wait for processing to finish", ErrNoDocuments)
	}

	limit := s.MaxPerRequest
	if limit <= 0 {
		limit = maxFilesPerRequest
	}

	selected := active
	if len(active) > limit {
		relevant := selectRelevant(query, active)
		switch {
		case len(relevant) > 0 && len(relevant) <= limit:
			selected = relevant
		case len(relevant) > limit:
			selected = relevant[:limit]
		default:
			selected = active[:limit]
		}
		log.Info("limited file references", "active", len(active), "selected", len(selected))
	}

	refs := make([]engine.FileReference, 0, len(selected))
	for _, doc := range selected {
		refs = append(refs, engine.FileReference{URI: doc.Name, MIMEType: doc.MIMEType})
	}
	return engine.Content{Files: refs}, nil
}

// selectRelevant keeps documents whose display name contains a query keyword
// longer than three characters.
func selectRelevant(query string, docs []engine.UploadedDocument) []engine.UploadedDocument {
	words := strings.Fields(strings.ToLower(query))
	var relevant []engine.UploadedDocument
	for _, doc := range docs {
		displayName := strings.ToLower(doc.DisplayName)
		for _, word := range words {
			if len(word) > 3 && strings.Contains(displayName, word) {
				relevant = append(relevant, doc)
				break
			}
		}
	}
	return relevant
}

// readHead reads at most limit bytes from the start of a file. Files far
// larger than the limit are never slurped whole.
func readHead(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, limit)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return string(buf[:n]), nil
}
