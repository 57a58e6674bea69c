package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
)

// fakeSource serves canned files from a temp directory.
type fakeSource struct {
	files    map[string]string // name -> content
	order    []string
	listErr  error
	downErr  map[string]error
	stageDir string
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	return &fakeSource{
		files:    map[string]string{},
		downErr:  map[string]error{},
		stageDir: t.TempDir(),
	}
}

func (s *fakeSource) add(name, content string) {
	s.files[name] = content
	s.order = append(s.order, name)
}

func (s *fakeSource) ListAll(_ context.Context) ([]drive.File, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []drive.File
	for _, name := range s.order {
		out = append(out, drive.File{ID: "id-" + name, Name: name})
	}
	return out, nil
}

func (s *fakeSource) Download(_ context.Context, fileID, fileName string) (string, error) {
	if err := s.downErr[fileName]; err != nil {
		return "", err
	}
	content, ok := s.files[fileName]
	if !ok {
		return "", fmt.Errorf("unknown file: %s", fileID)
	}
	path := filepath.Join(s.stageDir, fileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *fakeSource) GetMetadata(_ context.Context, fileID string) (*drive.File, error) {
	name := strings.TrimPrefix(fileID, "id-")
	if _, ok := s.files[name]; !ok {
		return nil, fmt.Errorf("unknown file: %s", fileID)
	}
	return &drive.File{ID: fileID, Name: name}, nil
}

// fakeEngine records Generate calls and returns a canned response.
type fakeEngine struct {
	docs        []engine.UploadedDocument
	response    string
	generateErr error

	lastPrompt  string
	lastContent engine.Content
	lastOpts    engine.GenerateOptions
}

func (e *fakeEngine) UploadFile(_ context.Context, _, displayName string) (*engine.UploadedDocument, error) {
	doc := engine.UploadedDocument{Name: "files/" + displayName, DisplayName: displayName, State: engine.StateActive}
	e.docs = append(e.docs, doc)
	return &doc, nil
}

func (e *fakeEngine) ListFiles(_ context.Context) ([]engine.UploadedDocument, error) {
	return e.docs, nil
}

func (e *fakeEngine) GetFile(_ context.Context, name string) (*engine.UploadedDocument, error) {
	for _, doc := range e.docs {
		if doc.Name == name {
			return &doc, nil
		}
	}
	return nil, errors.New("file not found")
}

func (e *fakeEngine) DeleteFile(_ context.Context, _ string) error { return nil }

func (e *fakeEngine) WaitForActive(_ context.Context, _ string, _ time.Duration) error { return nil }

func (e *fakeEngine) Generate(_ context.Context, prompt string, content engine.Content, opts engine.GenerateOptions) (*engine.GenerateResult, error) {
	e.lastPrompt = prompt
	e.lastContent = content
	e.lastOpts = opts
	if e.generateErr != nil {
		return nil, e.generateErr
	}
	return &engine.GenerateResult{Text: e.response}, nil
}

func (e *fakeEngine) Close() error { return nil }

func activeDoc(name string) engine.UploadedDocument {
	return engine.UploadedDocument{Name: "files/" + name, DisplayName: name, MIMEType: "application/pdf", State: engine.StateActive}
}

func TestInlineTextStrategy_BuildsDelimitedContent(t *testing.T) {
	source := newFakeSource(t)
	source.add("contacts.csv", "name,email\nJane,jane@acme.example")
	source.add("notes.txt", "met Acme at the expo")
	source.add("deck.pdf", "binary") // not inline-readable, skipped

	strategy := &InlineTextStrategy{Source: source}
	content, err := strategy.Content(context.Background(), "find leads", nil)
	require.NoError(t, err)

	assert.Empty(t, content.Files)
	assert.Contains(t, content.InlineText, "=== File: contacts.csv ===")
	assert.Contains(t, content.InlineText, "jane@acme.example")
	assert.Contains(t, content.InlineText, "=== File: notes.txt ===")
	assert.NotContains(t, content.InlineText, "deck.pdf")
}

func TestInlineTextStrategy_RespectsMaxFiles(t *testing.T) {
	source := newFakeSource(t)
	source.add("a.txt", "alpha")
	source.add("b.txt", "beta")
	source.add("c.txt", "gamma")

	strategy := &InlineTextStrategy{Source: source, MaxFiles: 2}
	content, err := strategy.Content(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, content.InlineText, "a.txt")
	assert.Contains(t, content.InlineText, "b.txt")
	assert.NotContains(t, content.InlineText, "c.txt")
}

func TestInlineTextStrategy_EmptyFolder(t *testing.T) {
	source := newFakeSource(t)
	strategy := &InlineTextStrategy{Source: source}
	_, err := strategy.Content(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestInlineTextStrategy_OnlyUnreadableFiles(t *testing.T) {
	source := newFakeSource(t)
	source.add("report.pdf", "binary")
	strategy := &InlineTextStrategy{Source: source}
	_, err := strategy.Content(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestInlineTextStrategy_SkipsFailedDownloads(t *testing.T) {
	source := newFakeSource(t)
	source.add("good.txt", "fine")
	source.add("bad.txt", "unused")
	source.downErr["bad.txt"] = errors.New("download failed")

	strategy := &InlineTextStrategy{Source: source}
	content, err := strategy.Content(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Contains(t, content.InlineText, "good.txt")
	assert.NotContains(t, content.InlineText, "bad.txt")
}

func TestFileReferenceStrategy_FiltersActive(t *testing.T) {
	docs := []engine.UploadedDocument{
		{Name: "files/a", DisplayName: "a.pdf", State: engine.StateProcessing},
		activeDoc("b.pdf"),
	}
	strategy := &FileReferenceStrategy{}
	content, err := strategy.Content(context.Background(), "q", docs)
	require.NoError(t, err)
	require.Len(t, content.Files, 1)
	assert.Equal(t, "files/b.pdf", content.Files[0].URI)
}

func TestFileReferenceStrategy_NoActiveDocs(t *testing.T) {
	docs := []engine.UploadedDocument{
		{Name: "files/a", DisplayName: "a.pdf", State: engine.StateProcessing},
	}
	strategy := &FileReferenceStrategy{}
	_, err := strategy.Content(context.Background(), "q", docs)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestFileReferenceStrategy_PrefersRelevantDocs(t *testing.T) {
	docs := []engine.UploadedDocument{
		activeDoc("unrelated.pdf"),
		activeDoc("suppliers_korea.pdf"),
	}
	strategy := &FileReferenceStrategy{MaxPerRequest: 1}
	content, err := strategy.Content(context.Background(), "find korean suppliers", docs)
	require.NoError(t, err)
	require.Len(t, content.Files, 1)
	assert.Equal(t, "files/suppliers_korea.pdf", content.Files[0].URI)
}

func TestFileReferenceStrategy_DefaultLimitIsOne(t *testing.T) {
	docs := []engine.UploadedDocument{
		activeDoc("one.pdf"),
		activeDoc("two.pdf"),
	}
	strategy := &FileReferenceStrategy{}
	content, err := strategy.Content(context.Background(), "zz", docs)
	require.NoError(t, err)
	assert.Len(t, content.Files, 1)
}

func TestSelectRelevant_IgnoresShortWords(t *testing.T) {
	docs := []engine.UploadedDocument{activeDoc("the_list.pdf")}
	// "the" is too short to count as a keyword.
	assert.Empty(t, selectRelevant("the pdf", docs))
	assert.Len(t, selectRelevant("list everything", docs), 1)
}
