package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-search/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for syncing documents and extracting leads.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	port := app.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:            port,
		DefaultFolderID: app.cfg.DriveFolderID,
		DriveConfigured: app.cfg.HasDrive(),
	}, server.Deps{
		Engine:    app.engine,
		Sync:      app.manager,
		Extractor: app.extractor,
		Analyzer:  app.analyzer,
	})

	return srv.Start()
}
