package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	sysync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/lead-search/internal/drive"
	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/types"
)

type stubSource struct {
	dir           string
	files         []drive.File
	listErr       error
	failDownloads map[string]bool
}

func newStubSource(t *testing.T, names ...string) *stubSource {
	t.Helper()
	s := &stubSource{dir: t.TempDir(), failDownloads: map[string]bool{}}
	for i, name := range names {
		s.files = append(s.files, drive.File{ID: fmt.Sprintf("id-%d", i), Name: name})
	}
	return s
}

func (s *stubSource) ListAll(_ context.Context) ([]drive.File, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *stubSource) Download(_ context.Context, fileID, fileName string) (string, error) {
	if s.failDownloads[fileName] {
		return "", errors.New("download failed")
	}
	path := filepath.Join(s.dir, fileID+"_"+fileName)
	if err := os.WriteFile(path, []byte("content of "+fileName), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *stubSource) GetMetadata(_ context.Context, fileID string) (*drive.File, error) {
	for _, f := range s.files {
		if f.ID == fileID {
			return &f, nil
		}
	}
	return nil, errors.New("unknown file")
}

type stubEngine struct {
	mu          sysync.Mutex
	uploaded    []string
	failUploads map[string]bool
	waitErrs    map[string]error
}

func newStubEngine() *stubEngine {
	return &stubEngine{failUploads: map[string]bool{}, waitErrs: map[string]error{}}
}

func (e *stubEngine) UploadFile(_ context.Context, localPath, displayName string) (*engine.UploadedDocument, error) {
	if e.failUploads[displayName] {
		return nil, errors.New("upload failed")
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("staging file missing: %w", err)
	}
	e.mu.Lock()
	e.uploaded = append(e.uploaded, displayName)
	e.mu.Unlock()
	return &engine.UploadedDocument{
		Name:        "files/" + displayName,
		DisplayName: displayName,
		State:       engine.StateProcessing,
	}, nil
}

func (e *stubEngine) ListFiles(_ context.Context) ([]engine.UploadedDocument, error) { return nil, nil }

func (e *stubEngine) GetFile(_ context.Context, _ string) (*engine.UploadedDocument, error) {
	return nil, errors.New("not implemented")
}

func (e *stubEngine) DeleteFile(_ context.Context, _ string) error { return nil }

func (e *stubEngine) WaitForActive(_ context.Context, name string, _ time.Duration) error {
	return e.waitErrs[name]
}

func (e *stubEngine) Generate(_ context.Context, _ string, _ engine.Content, _ engine.GenerateOptions) (*engine.GenerateResult, error) {
	return nil, errors.New("not implemented")
}

func (e *stubEngine) Close() error { return nil }

// waitForTerminal polls the job until it completes or fails.
func waitForTerminal(t *testing.T, m *Manager, jobID string) *types.SyncJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return nil
}

func TestManager_SuccessfulSync(t *testing.T) {
	source := newStubSource(t, "a.pdf", "b.csv", "c.txt")
	eng := newStubEngine()
	m := NewManager(context.Background(), NewMemoryStore(), source, eng)

	jobID, err := m.StartSync(context.Background(), "folder-1", 100)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 3, job.FilesFound)
	assert.Equal(t, 3, job.FilesProcessed)
	assert.Equal(t, 0, job.FilesFailed)
	assert.Equal(t, 100.0, job.Progress)
	require.NotNil(t, job.CompletedAt)
	assert.ElementsMatch(t, []string{"a.pdf", "b.csv", "c.txt"}, eng.uploaded)
}

func TestManager_EmptyFolderID(t *testing.T) {
	m := NewManager(context.Background(), NewMemoryStore(), newStubSource(t), newStubEngine())
	_, err := m.StartSync(context.Background(), "", 10)
	assert.Error(t, err)
}

func TestManager_ScanFailure(t *testing.T) {
	source := newStubSource(t, "a.pdf")
	source.listErr = errors.New("folder not accessible")
	m := NewManager(context.Background(), NewMemoryStore(), source, newStubEngine())

	jobID, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncFailed, job.Status)
	assert.Contains(t, job.Error, "folder not accessible")
	require.NotNil(t, job.CompletedAt)
}

func TestManager_DownloadFailuresAreCounted(t *testing.T) {
	source := newStubSource(t, "good.pdf", "bad.pdf", "also_good.txt")
	source.failDownloads["bad.pdf"] = true
	m := NewManager(context.Background(), NewMemoryStore(), source, newStubEngine())

	jobID, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 3, job.FilesFound)
	assert.Equal(t, 2, job.FilesProcessed)
	assert.Equal(t, 1, job.FilesFailed)
}

func TestManager_UploadFailuresAreCounted(t *testing.T) {
	source := newStubSource(t, "one.pdf", "two.pdf")
	eng := newStubEngine()
	eng.failUploads["two.pdf"] = true
	m := NewManager(context.Background(), NewMemoryStore(), source, eng)

	jobID, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 1, job.FilesProcessed)
	assert.Equal(t, 1, job.FilesFailed)
	assert.LessOrEqual(t, job.FilesProcessed+job.FilesFailed, job.FilesFound)
}

func TestManager_IndexingFailuresDoNotFailTheJob(t *testing.T) {
	source := newStubSource(t, "slow.pdf")
	eng := newStubEngine()
	eng.waitErrs["files/slow.pdf"] = errors.New("still processing")
	m := NewManager(context.Background(), NewMemoryStore(), source, eng)

	jobID, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 1, job.FilesProcessed)
	assert.Equal(t, 0, job.FilesFailed)
}

func TestManager_MaxDocumentsCapsTheScan(t *testing.T) {
	source := newStubSource(t, "1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf")
	m := NewManager(context.Background(), NewMemoryStore(), source, newStubEngine())

	jobID, err := m.StartSync(context.Background(), "folder-1", 2)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 2, job.FilesFound)
	assert.Equal(t, 2, job.FilesProcessed)
}

func TestManager_ZeroMaxDocumentsScansNothing(t *testing.T) {
	source := newStubSource(t, "a.pdf", "b.pdf")
	eng := newStubEngine()
	m := NewManager(context.Background(), NewMemoryStore(), source, eng)

	jobID, err := m.StartSync(context.Background(), "folder-1", 0)
	require.NoError(t, err)

	job := waitForTerminal(t, m, jobID)
	assert.Equal(t, types.SyncCompleted, job.Status)
	assert.Equal(t, 0, job.FilesFound)
	assert.Equal(t, 0, job.FilesProcessed)
	assert.Equal(t, 0, job.FilesFailed)
	assert.Equal(t, 100.0, job.Progress)
	assert.Empty(t, eng.uploaded)
}

// progressStore records the job progress after every applied update.
type progressStore struct {
	JobStore
	mu       sysync.Mutex
	observed []float64
}

func (s *progressStore) Update(ctx context.Context, jobID string, fn func(*types.SyncJob)) error {
	return s.JobStore.Update(ctx, jobID, func(job *types.SyncJob) {
		fn(job)
		s.mu.Lock()
		s.observed = append(s.observed, job.Progress)
		s.mu.Unlock()
	})
}

func TestManager_ProgressNeverDecreases(t *testing.T) {
	// Enough files to keep all download workers busy, so per-file progress
	// updates can land out of order.
	source := newStubSource(t, "1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf", "6.pdf", "7.pdf", "8.pdf")
	store := &progressStore{JobStore: NewMemoryStore()}
	m := NewManager(context.Background(), store, source, newStubEngine())

	jobID, err := m.StartSync(context.Background(), "folder-1", 100)
	require.NoError(t, err)
	job := waitForTerminal(t, m, jobID)
	require.Equal(t, types.SyncCompleted, job.Status)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotEmpty(t, store.observed)
	for i := 1; i < len(store.observed); i++ {
		assert.GreaterOrEqual(t, store.observed[i], store.observed[i-1],
			"progress went backwards at update %d", i)
	}
	assert.Equal(t, 100.0, store.observed[len(store.observed)-1])
}

func TestManager_TerminalJobsAreImmutable(t *testing.T) {
	source := newStubSource(t, "a.pdf")
	m := NewManager(context.Background(), NewMemoryStore(), source, newStubEngine())

	jobID, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)
	job := waitForTerminal(t, m, jobID)
	require.Equal(t, types.SyncCompleted, job.Status)

	m.update(jobID, func(job *types.SyncJob) {
		job.Status = types.SyncScanning
		job.Progress = 0
	})

	after, err := m.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, types.SyncCompleted, after.Status)
	assert.Equal(t, 100.0, after.Progress)
}

func TestManager_ListJobs(t *testing.T) {
	source := newStubSource(t, "a.pdf")
	m := NewManager(context.Background(), NewMemoryStore(), source, newStubEngine())

	first, err := m.StartSync(context.Background(), "folder-1", 10)
	require.NoError(t, err)
	waitForTerminal(t, m, first)

	second, err := m.StartSync(context.Background(), "folder-2", 10)
	require.NoError(t, err)
	waitForTerminal(t, m, second)

	jobs, err := m.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
}
