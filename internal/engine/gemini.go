package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// defaultModel is used for extraction queries. The 1.5 models were retired
// in April 2025.
const defaultModel = "gemini-2.5-pro"

// pollInterval is the delay between document state polls.
const pollInterval = 2 * time.Second

// Gemini implements Engine on top of the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	retry  RetryPolicy
	log    *slog.Logger
}

// GeminiOption configures a Gemini engine.
type GeminiOption func(*Gemini)

// WithModel overrides the generation model.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) { g.model = model }
}

// WithRetryPolicy overrides the upload retry policy.
func WithRetryPolicy(p RetryPolicy) GeminiOption {
	return func(g *Gemini) { g.retry = p }
}

// NewGemini creates a Gemini-backed engine.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &Gemini{
		client: client,
		model:  defaultModel,
		retry:  DefaultRetryPolicy(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// UploadFile transfers a local file to the engine, retrying transient
// failures per the configured policy.
func (g *Gemini) UploadFile(ctx context.Context, localPath, displayName string) (*UploadedDocument, error) {
	mimeType := MIMETypeFor(localPath)

	var file *genai.File
	err := g.retry.Do(ctx, func() error {
		var uploadErr error
		file, uploadErr = g.client.UploadFileFromPath(ctx, localPath, &genai.UploadFileOptions{
			DisplayName: displayName,
			MIMEType:    mimeType,
		})
		if uploadErr != nil {
			g.log.Warn("upload attempt failed", "file", displayName, "error", uploadErr)
		}
		return uploadErr
	})
	if err != nil {
		return nil, wrapErr("upload", err)
	}

	g.log.Info("uploaded file", "file", displayName, "name", file.Name)
	return mapFile(file), nil
}

// ListFiles returns all uploaded documents, paginating internally.
func (g *Gemini) ListFiles(ctx context.Context) ([]UploadedDocument, error) {
	var docs []UploadedDocument
	iter := g.client.ListFiles(ctx)
	for {
		file, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapErr("list", err)
		}
		docs = append(docs, *mapFile(file))
	}
	return docs, nil
}

// GetFile returns the current state of one uploaded document.
func (g *Gemini) GetFile(ctx context.Context, name string) (*UploadedDocument, error) {
	file, err := g.client.GetFile(ctx, name)
	if err != nil {
		return nil, wrapErr("get", err)
	}
	return mapFile(file), nil
}

// DeleteFile removes an uploaded document.
func (g *Gemini) DeleteFile(ctx context.Context, name string) error {
	if err := g.client.DeleteFile(ctx, name); err != nil {
		return wrapErr("delete", err)
	}
	return nil
}

// WaitForActive polls an uploaded document until it leaves PROCESSING or
// maxWait elapses. A FAILED state or a timeout is an error.
func (g *Gemini) WaitForActive(ctx context.Context, name string, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		doc, err := g.GetFile(ctx, name)
		if err != nil {
			return err
		}
		switch doc.State {
		case StateActive:
			return nil
		case StateFailed:
			return wrapErr("process", fmt.Errorf("file processing failed for %s", name))
		}

		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return wrapErr("process", fmt.Errorf("timeout waiting for file processing: %s", name))
}

// Generate runs one completion request. Content carries either inline text
// appended to the prompt or remote file references dereferenced server-side.
func (g *Gemini) Generate(ctx context.Context, prompt string, content Content, opts GenerateOptions) (*GenerateResult, error) {
	model := g.client.GenerativeModel(g.model)
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}
	if opts.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}
	if opts.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemInstruction)},
		}
	}

	var parts []genai.Part
	if content.InlineText != "" {
		combined := fmt.Sprintf("%s\n\n--- Document Content ---\n%s\n--- End of Document Content ---\n\nPlease analyze the above document content and respond according to the query.",
			prompt, content.InlineText)
		parts = append(parts, genai.Text(combined))
	} else {
		parts = append(parts, genai.Text(prompt))
		for _, ref := range content.Files {
			mimeType := ref.MIMEType
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			parts = append(parts, genai.FileData{URI: ref.URI, MIMEType: mimeType})
		}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, wrapErr("generate", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, wrapErr("generate", err)
	}

	return &GenerateResult{Text: text, Citations: extractCitations(resp)}, nil
}

// Close releases resources held by the client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func mapFile(file *genai.File) *UploadedDocument {
	return &UploadedDocument{
		Name:        file.Name,
		DisplayName: file.DisplayName,
		MIMEType:    file.MIMEType,
		SizeBytes:   file.SizeBytes,
		State:       mapState(file.State),
		CreateTime:  file.CreateTime,
	}
}

func mapState(state genai.FileState) DocumentState {
	switch state {
	case genai.FileStateActive:
		return StateActive
	case genai.FileStateFailed:
		return StateFailed
	default:
		return StateProcessing
	}
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// extractCitations maps citation metadata from the first candidate, when the
// engine grounded its answer in uploaded files.
func extractCitations(resp *genai.GenerateContentResponse) []Citation {
	if len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate.CitationMetadata == nil {
		return nil
	}

	var citations []Citation
	for _, src := range candidate.CitationMetadata.CitationSources {
		c := Citation{}
		if src.URI != nil {
			c.Source = *src.URI
		}
		if src.StartIndex != nil {
			c.StartIndex = int(*src.StartIndex)
		}
		if src.EndIndex != nil {
			c.EndIndex = int(*src.EndIndex)
		}
		citations = append(citations, c)
	}
	return citations
}
