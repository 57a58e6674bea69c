// Package sync owns the asynchronous folder-sync job: the scan, download,
// upload and index stages, per-job progress accounting, and the job registry
// behind an explicit store interface.
package sync

import (
	"context"
	"errors"
	"sort"
	sysync "sync"

	"github.com/jonathan/lead-search/internal/types"
)

// ErrJobNotFound indicates an unknown job ID.
var ErrJobNotFound = errors.New("sync job not found")

// JobStore is the registry of sync jobs. Update applies a mutation to the
// full record atomically; callers never mutate individual fields in place.
type JobStore interface {
	Create(ctx context.Context, job types.SyncJob) error
	Get(ctx context.Context, jobID string) (*types.SyncJob, error)
	Update(ctx context.Context, jobID string, fn func(*types.SyncJob)) error
	// List returns all known jobs, most recent first.
	List(ctx context.Context) ([]types.SyncJob, error)
}

// MemoryStore keeps jobs in process memory. Suitable for a single instance;
// job state does not survive restarts.
type MemoryStore struct {
	mu   sysync.RWMutex
	jobs map[string]types.SyncJob
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]types.SyncJob)}
}

// Create registers a new job record.
func (s *MemoryStore) Create(_ context.Context, job types.SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
	return nil
}

// Get returns a snapshot of one job.
func (s *MemoryStore) Get(_ context.Context, jobID string) (*types.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := job
	return &snapshot, nil
}

// Update applies fn to the stored record under the write lock.
func (s *MemoryStore) Update(_ context.Context, jobID string, fn func(*types.SyncJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	fn(&job)
	s.jobs[jobID] = job
	return nil
}

// List returns all jobs, most recent first.
func (s *MemoryStore) List(_ context.Context) ([]types.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]types.SyncJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}
