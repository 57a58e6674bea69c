package types

import "time"

// SyncStatus is the lifecycle state of a drive sync job.
type SyncStatus string

// Sync job states. A job advances through the first four in order and ends
// in either completed or failed.
const (
	SyncScanning    SyncStatus = "scanning"
	SyncDownloading SyncStatus = "downloading"
	SyncUploading   SyncStatus = "uploading"
	SyncIndexing    SyncStatus = "indexing"
	SyncCompleted   SyncStatus = "completed"
	SyncFailed      SyncStatus = "failed"
)

// Terminal reports whether the status is a terminal state.
func (s SyncStatus) Terminal() bool {
	return s == SyncCompleted || s == SyncFailed
}

// SyncJob tracks one folder-sync run through the scan, download, upload and
// index stages. The job record is owned and mutated exclusively by the sync
// manager; callers only read snapshots by job ID.
type SyncJob struct {
	JobID          string     `json:"jobId"`
	FolderID       string     `json:"folderId"`
	Status         SyncStatus `json:"status"`
	FilesFound     int        `json:"filesFound"`
	FilesProcessed int        `json:"filesProcessed"`
	FilesFailed    int        `json:"filesFailed"`
	Progress       float64    `json:"progress"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// StatusMessage returns a human-readable description of a sync status.
func StatusMessage(status SyncStatus) string {
	switch status {
	case SyncScanning:
		return "Scanning Google Drive folder..."
	case SyncDownloading:
		return "Downloading documents from Google Drive..."
	case SyncUploading:
		return "Uploading documents to Gemini File Search..."
	case SyncIndexing:
		return "Indexing documents for search..."
	case SyncCompleted:
		return "Sync completed successfully!"
	case SyncFailed:
		return "Sync failed. Please check the error message."
	default:
		return "Processing..."
	}
}
