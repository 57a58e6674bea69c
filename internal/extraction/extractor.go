package extraction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/types"
)

// Generation parameters for extraction requests. Temperature stays low for
// consistent structured output.
const (
	extractionTemperature = 0.2
	extractionMaxTokens   = 8192
)

// Options bound and filter one extraction request.
type Options struct {
	MaxLeads      int
	MinConfidence float64
	MaxFiles      int
}

// Result is the outcome of one extraction request.
type Result struct {
	Leads             []types.Lead `json:"leads"`
	RawResponse       string       `json:"rawResponse"`
	AverageConfidence float64      `json:"averageConfidence"`
}

// Extractor orchestrates lead extraction: prompt building, transfer-strategy
// selection, generation, and post-processing of parsed leads.
type Extractor struct {
	engine engine.Engine
	source drive.Source
	log    *slog.Logger
}

// New creates an extractor. source may be nil, in which case the extractor
// can only use the remote-reference strategy.
func New(eng engine.Engine, source drive.Source) *Extractor {
	return &Extractor{engine: eng, source: source, log: slog.Default()}
}

// strategyFor picks the transfer strategy: inline text when a document
// source is configured, remote file references otherwise.
func (e *Extractor) strategyFor(opts Options) Strategy {
	if e.source != nil {
		return &InlineTextStrategy{Source: e.source, MaxFiles: opts.MaxFiles, Log: e.log}
	}
	return &FileReferenceStrategy{Log: e.log}
}

// ExtractLeads runs one extraction over the given uploaded-document set (used
// by the remote-reference strategy) or the configured document source. Leads
// below MinConfidence are dropped and the result is truncated to MaxLeads.
func (e *Extractor) ExtractLeads(ctx context.Context, docs []engine.UploadedDocument, query string, opts Options) (*Result, error) {
	if e.source == nil && len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	strategy := e.strategyFor(opts)
	e.log.Info("extracting leads", "strategy", strategy.Name(), "query", query)

	content, err := strategy.Content(ctx, query, docs)
	if err != nil {
		return nil, err
	}

	result, err := e.engine.Generate(ctx, BuildPrompt(query), content, engine.GenerateOptions{
		Temperature:       extractionTemperature,
		MaxOutputTokens:   extractionMaxTokens,
		SystemInstruction: SystemInstruction,
		JSONResponse:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract leads: %w", err)
	}

	leads := ParseLeads(result.Text)

	filtered := leads[:0:0]
	for _, lead := range leads {
		if lead.Confidence >= opts.MinConfidence {
			filtered = append(filtered, lead)
		}
	}
	if opts.MaxLeads > 0 && len(filtered) > opts.MaxLeads {
		filtered = filtered[:opts.MaxLeads]
	}

	avg := types.AverageConfidence(filtered)
	e.log.Info("extraction finished", "leads", len(filtered), "avgConfidence", avg)

	return &Result{
		Leads:             filtered,
		RawResponse:       result.Text,
		AverageConfidence: avg,
	}, nil
}
