package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-search/internal/engine"
)

func TestExtractor_InlineStrategy(t *testing.T) {
	source := newFakeSource(t)
	source.add("contacts.txt", "Acme Corp, Jane Kim, jane@acme.example")
	eng := &fakeEngine{response: wellFormedResponse}

	extractor := New(eng, source)
	result, err := extractor.ExtractLeads(context.Background(), nil, "find manufacturers", Options{
		MaxLeads:      50,
		MinConfidence: 0.6,
	})
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Acme Corp", result.Leads[0].Company.Name)
	assert.InDelta(t, 0.9, result.AverageConfidence, 1e-9)

	// Inline mode: document text travels with the prompt, no file refs.
	assert.Contains(t, eng.lastContent.InlineText, "contacts.txt")
	assert.Empty(t, eng.lastContent.Files)
	assert.Contains(t, eng.lastPrompt, "find manufacturers")
	assert.True(t, eng.lastOpts.JSONResponse)
	assert.Equal(t, SystemInstruction, eng.lastOpts.SystemInstruction)
}

func TestExtractor_FileReferenceStrategy(t *testing.T) {
	eng := &fakeEngine{response: wellFormedResponse}
	docs := []engine.UploadedDocument{activeDoc("notes.pdf")}

	extractor := New(eng, nil)
	result, err := extractor.ExtractLeads(context.Background(), docs, "find leads", Options{MaxLeads: 10})
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Empty(t, eng.lastContent.InlineText)
	require.Len(t, eng.lastContent.Files, 1)
	assert.Equal(t, "files/notes.pdf", eng.lastContent.Files[0].URI)
}

func TestExtractor_NoSourceNoDocs(t *testing.T) {
	extractor := New(&fakeEngine{}, nil)
	_, err := extractor.ExtractLeads(context.Background(), nil, "query", Options{})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestExtractor_FiltersByConfidence(t *testing.T) {
	response := `{"leads": [
		{"company": {"name": "High"}, "contacts": [{"name": "a"}], "source": "s", "confidence": 0.9},
		{"company": {"name": "Low"}, "contacts": [{"name": "b"}], "source": "s", "confidence": 0.2}
	]}`
	source := newFakeSource(t)
	source.add("x.txt", "text")
	eng := &fakeEngine{response: response}

	extractor := New(eng, source)
	result, err := extractor.ExtractLeads(context.Background(), nil, "q", Options{MinConfidence: 0.6})
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "High", result.Leads[0].Company.Name)
}

func TestExtractor_CapsMaxLeads(t *testing.T) {
	response := `{"leads": [
		{"company": {"name": "One"}, "contacts": [{"name": "a"}], "source": "s", "confidence": 0.9},
		{"company": {"name": "Two"}, "contacts": [{"name": "b"}], "source": "s", "confidence": 0.8},
		{"company": {"name": "Three"}, "contacts": [{"name": "c"}], "source": "s", "confidence": 0.7}
	]}`
	source := newFakeSource(t)
	source.add("x.txt", "text")
	eng := &fakeEngine{response: response}

	extractor := New(eng, source)
	result, err := extractor.ExtractLeads(context.Background(), nil, "q", Options{MaxLeads: 2})
	require.NoError(t, err)
	assert.Len(t, result.Leads, 2)
	assert.Equal(t, "One", result.Leads[0].Company.Name)
	assert.Equal(t, "Two", result.Leads[1].Company.Name)
}

func TestExtractor_GenerateError(t *testing.T) {
	source := newFakeSource(t)
	source.add("x.txt", "text")
	eng := &fakeEngine{generateErr: errors.New("quota exceeded")}

	extractor := New(eng, source)
	_, err := extractor.ExtractLeads(context.Background(), nil, "q", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to extract leads")
}

func TestExtractor_UnparseableResponseYieldsEmptyResult(t *testing.T) {
	source := newFakeSource(t)
	source.add("x.txt", "text")
	eng := &fakeEngine{response: "I found nothing useful."}

	extractor := New(eng, source)
	result, err := extractor.ExtractLeads(context.Background(), nil, "q", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Leads)
	assert.Equal(t, "I found nothing useful.", result.RawResponse)
	assert.Zero(t, result.AverageConfidence)
}

func TestBuildPrompt_IncludesQuery(t *testing.T) {
	prompt := BuildPrompt("electronics vendors in Busan")
	assert.Contains(t, prompt, "electronics vendors in Busan")
	assert.Contains(t, prompt, "Specific Query")
}
