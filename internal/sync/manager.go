package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	sysync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/types"
)

const (
	// indexTimeout bounds how long one file may stay in PROCESSING.
	indexTimeout = 2 * time.Minute
	// downloadWorkers bounds parallel downloads within the download stage.
	downloadWorkers = 4
)

// Progress band boundaries per stage.
const (
	progressScanStart     = 10.0
	progressScanDone      = 20.0
	progressDownloadDone  = 60.0
	progressUploadDone    = 90.0
	progressIndexing      = 90.0
	progressComplete      = 100.0
	downloadBand          = progressDownloadDone - progressScanDone
	uploadBand            = progressUploadDone - progressDownloadDone
)

// Manager drives sync jobs through their stages and owns all job mutation.
// Callers read snapshots through GetJob/ListJobs.
type Manager struct {
	store  JobStore
	source drive.Source
	engine engine.Engine
	log    *slog.Logger

	// bgCtx governs background job goroutines; cancelling it stops jobs
	// cooperatively between per-file operations.
	bgCtx context.Context
}

// NewManager creates a sync job manager. bgCtx bounds the lifetime of
// background jobs.
func NewManager(bgCtx context.Context, store JobStore, source drive.Source, eng engine.Engine) *Manager {
	return &Manager{
		store:  store,
		source: source,
		engine: eng,
		log:    slog.Default(),
		bgCtx:  bgCtx,
	}
}

// StartSync creates a job record in scanning state and launches the
// multi-stage pipeline in the background. Returns the job ID immediately.
func (m *Manager) StartSync(ctx context.Context, folderID string, maxDocuments int) (string, error) {
	if folderID == "" {
		return "", fmt.Errorf("folder ID is required")
	}
	if maxDocuments < 0 {
		maxDocuments = 0
	}

	jobID := uuid.New().String()
	job := types.SyncJob{
		JobID:     jobID,
		FolderID:  folderID,
		Status:    types.SyncScanning,
		StartedAt: time.Now(),
	}
	if err := m.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create sync job: %w", err)
	}

	go m.run(jobID, folderID, maxDocuments)
	return jobID, nil
}

// GetJob returns a snapshot of one job.
func (m *Manager) GetJob(ctx context.Context, jobID string) (*types.SyncJob, error) {
	return m.store.Get(ctx, jobID)
}

// ListJobs returns all known jobs, most recent first.
func (m *Manager) ListJobs(ctx context.Context) ([]types.SyncJob, error) {
	return m.store.List(ctx)
}

// run executes the stages for one job. Per-file failures are tolerated;
// only structural errors fail the job.
func (m *Manager) run(jobID, folderID string, maxDocuments int) {
	ctx := m.bgCtx
	log := m.log.With("job", jobID)

	if err := m.runStages(ctx, log, jobID, maxDocuments); err != nil {
		log.Error("sync job failed", "error", err)
		m.update(jobID, func(job *types.SyncJob) {
			job.Status = types.SyncFailed
			job.Error = err.Error()
			now := time.Now()
			job.CompletedAt = &now
		})
		return
	}

	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncCompleted
		job.Progress = progressComplete
		now := time.Now()
		job.CompletedAt = &now
	})
	log.Info("sync completed")
}

func (m *Manager) runStages(ctx context.Context, log *slog.Logger, jobID string, maxDocuments int) error {
	// Stage 1: scan the source folder.
	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncScanning
		job.Progress = progressScanStart
	})

	files, err := m.source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan folder: %w", err)
	}
	if len(files) > maxDocuments {
		files = files[:maxDocuments]
	}
	m.update(jobID, func(job *types.SyncJob) {
		job.FilesFound = len(files)
		job.Progress = progressScanDone
	})
	log.Info("scan finished", "filesFound", len(files))

	// Stage 2: download to local staging.
	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncDownloading
	})
	downloaded, err := m.downloadAll(ctx, log, jobID, files)
	if err != nil {
		return err
	}
	log.Info("download finished", "downloaded", len(downloaded))

	// Stage 3: upload to the extraction engine.
	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncUploading
		job.Progress = progressDownloadDone
	})
	uploaded := m.uploadAll(ctx, log, jobID, downloaded)
	log.Info("upload finished", "uploaded", len(uploaded))

	// Stage 4: wait for the engine to finish indexing each document.
	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncIndexing
		job.Progress = progressIndexing
	})
	for _, doc := range uploaded {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.engine.WaitForActive(ctx, doc.Name, indexTimeout); err != nil {
			log.Warn("file did not finish indexing", "file", doc.DisplayName, "error", err)
		}
	}
	return ctx.Err()
}

// stagedFile pairs a source file with its local staging path.
type stagedFile struct {
	file      drive.File
	localPath string
}

// downloadAll fetches every listed file into staging, in parallel, bounded
// by downloadWorkers. Per-file failures are counted and skipped.
func (m *Manager) downloadAll(ctx context.Context, log *slog.Logger, jobID string, files []drive.File) ([]stagedFile, error) {
	total := len(files)
	if total == 0 {
		return nil, nil
	}

	var (
		mu        sysync.Mutex
		attempted int
		staged    []stagedFile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			localPath, err := m.source.Download(gctx, file.ID, file.Name)

			mu.Lock()
			attempted++
			progress := progressScanDone + float64(attempted)/float64(total)*downloadBand
			if err == nil {
				staged = append(staged, stagedFile{file: file, localPath: localPath})
			}
			mu.Unlock()

			m.update(jobID, func(job *types.SyncJob) {
				if err != nil {
					job.FilesFailed++
				}
				// Updates may land out of order; progress only moves forward.
				if progress > job.Progress {
					job.Progress = progress
				}
			})
			if err != nil {
				log.Warn("failed to download file", "file", file.Name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return staged, nil
}

// uploadAll submits each staged file to the engine, removing the staging
// file afterward regardless of outcome. Per-file failures are counted and
// the file is dropped from the indexing set.
func (m *Manager) uploadAll(ctx context.Context, log *slog.Logger, jobID string, staged []stagedFile) []engine.UploadedDocument {
	total := len(staged)
	var uploaded []engine.UploadedDocument

	for i, sf := range staged {
		if ctx.Err() != nil {
			os.Remove(sf.localPath)
			continue
		}

		doc, err := m.engine.UploadFile(ctx, sf.localPath, sf.file.Name)
		os.Remove(sf.localPath)

		progress := progressDownloadDone + float64(i+1)/float64(total)*uploadBand
		m.update(jobID, func(job *types.SyncJob) {
			if err == nil {
				job.FilesProcessed++
			} else {
				job.FilesFailed++
			}
			if progress > job.Progress {
				job.Progress = progress
			}
		})

		if err != nil {
			log.Warn("failed to upload file", "file", sf.file.Name, "error", err)
			continue
		}
		uploaded = append(uploaded, *doc)
	}
	return uploaded
}

// update applies a mutation to the job record, logging registry failures.
// Terminal records are immutable.
func (m *Manager) update(jobID string, fn func(*types.SyncJob)) {
	err := m.store.Update(context.Background(), jobID, func(job *types.SyncJob) {
		if job.Status.Terminal() {
			return
		}
		fn(job)
	})
	if err != nil {
		m.log.Warn("failed to update sync job", "job", jobID, "error", err)
	}
}
