// Package service provides the transcript indexing and retrieval pipeline.
package service

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a background job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents a background indexing job.
type Job struct {
	ID          string
	Type        string // "index"
	Status      JobStatus
	Name        string
	Progress    int
	Total       int
	Result      *IndexResult
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time

	mu sync.RWMutex
}

// JobManager tracks in-memory background jobs.
type JobManager struct {
	jobs        map[string]*Job
	mu          sync.RWMutex
	concurrency int
}

// NewJobManager creates a new job manager.
func NewJobManager(concurrency int) *JobManager {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &JobManager{
		jobs:        make(map[string]*Job),
		concurrency: concurrency,
	}
}

// Concurrency returns the configured concurrency level.
func (m *JobManager) Concurrency() int {
	return m.concurrency
}

// CreateJob creates a new pending job.
func (m *JobManager) CreateJob(jobType, name string, total int) *Job {
	job := &Job{
		ID:        uuid.New().String()[:8], // Short ID for convenience
		Type:      jobType,
		Status:    JobStatusPending,
		Name:      name,
		Total:     total,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	slog.Info("job created", "job_id", job.ID, "name", name, "type", jobType, "total", total)
	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns all jobs, most recent first.
func (m *JobManager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}

	slices.SortFunc(jobs, func(a, b *Job) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	return jobs
}

// UpdateProgress updates job progress.
func (j *Job) UpdateProgress(current int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress = current
	if j.Status == JobStatusPending {
		j.Status = JobStatusRunning
	}
}

// Complete marks the job as completed with its result.
func (j *Job) Complete(result *IndexResult) {
	j.mu.Lock()
	j.Status = JobStatusCompleted
	j.Result = result
	now := time.Now()
	j.CompletedAt = &now
	j.mu.Unlock()

	slog.Info("job completed", "job_id", j.ID, "files", result.FilesProcessed, "errors", len(result.Errors))
}

// Fail marks the job as failed with an error.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	j.Status = JobStatusFailed
	j.Error = err.Error()
	now := time.Now()
	j.CompletedAt = &now
	j.mu.Unlock()

	slog.Error("job failed", "job_id", j.ID, "error", err)
}

// Snapshot returns a thread-safe copy of job state.
func (j *Job) Snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		Name:        j.Name,
		Progress:    j.Progress,
		Total:       j.Total,
		Result:      j.Result,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
