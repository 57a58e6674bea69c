package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-search/internal/types"
)

var (
	syncFolderID     string
	syncMaxDocuments int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync Drive documents into the extraction index",
	Long:  `Scan the configured Google Drive folder, download supported documents, upload them to the extraction engine, and wait for indexing to finish.`,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncFolderID, "folder", "f", "", "Drive folder ID (defaults to GOOGLE_DRIVE_FOLDER_ID)")
	syncCmd.Flags().IntVar(&syncMaxDocuments, "max-documents", 100, "Maximum number of documents to sync")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	if app.manager == nil {
		return fmt.Errorf("document sync is not configured; set Google Drive credentials and a folder ID")
	}

	folderID := syncFolderID
	if folderID == "" {
		folderID = app.cfg.DriveFolderID
	}

	jobID, err := app.manager.StartSync(ctx, folderID, syncMaxDocuments)
	if err != nil {
		return err
	}
	fmt.Printf("Started sync job %s\n", jobID)

	// Poll until the job reaches a terminal state.
	var last types.SyncStatus
	for {
		time.Sleep(2 * time.Second)
		job, err := app.manager.GetJob(ctx, jobID)
		if err != nil {
			return err
		}
		if job.Status != last {
			fmt.Printf("[%3.0f%%] %s\n", job.Progress, types.StatusMessage(job.Status))
			last = job.Status
		}
		if job.Status.Terminal() {
			fmt.Printf("Files found: %d, processed: %d, failed: %d\n",
				job.FilesFound, job.FilesProcessed, job.FilesFailed)
			if job.Status == types.SyncFailed {
				return fmt.Errorf("sync failed: %s", job.Error)
			}
			return nil
		}
	}
}
