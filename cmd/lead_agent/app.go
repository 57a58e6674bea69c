package main

import (
	"context"
	"fmt"

	"github.com/jonathan/lead-search/internal/config"
	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/extraction"
	syncjob "github.com/jonathan/lead-search/internal/sync"
	"github.com/jonathan/lead-search/internal/website"
	"github.com/jonathan/lead-search/pkg/logger"
)

// app wires the service components from configuration. Drive and PostgreSQL
// are optional; when Drive is absent the sync manager is nil and extraction
// falls back to remote file references.
type app struct {
	cfg       *config.Config
	engine    *engine.Gemini
	source    drive.Source
	manager   *syncjob.Manager
	extractor *extraction.Extractor
	analyzer  *website.Analyzer

	closers []func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	eng, err := engine.NewGemini(ctx, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction engine: %w", err)
	}

	a := &app{cfg: cfg, engine: eng}
	a.closers = append(a.closers, func() { eng.Close() })

	if cfg.HasDrive() {
		creds, err := cfg.DriveCredentials()
		if err != nil {
			a.close()
			return nil, err
		}
		client, err := drive.NewClient(ctx, drive.Config{
			CredentialsJSON: creds,
			FolderID:        cfg.DriveFolderID,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create Drive client: %w", err)
		}
		a.source = client
	}

	var store syncjob.JobStore = syncjob.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pg, err := syncjob.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		store = pg
	}

	if a.source != nil {
		a.manager = syncjob.NewManager(ctx, store, a.source, eng)
	}
	a.extractor = extraction.New(eng, a.source)
	a.analyzer = website.NewAnalyzer(eng)

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
