// Package jobs runs pipeline work in the background and tracks its status.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

type Job struct {
	ID          string
	Type        string
	Description string
	StartTime   time.Time

	mu       sync.RWMutex
	status   JobStatus
	progress float64
	endTime  time.Time
	err      error
	result   any
	logs     []string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Func is the body of a job. It should return promptly once ctx is done.
type Func func(ctx context.Context, job *Job) (any, error)

type Manager struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
	}
}

// Submit starts fn in its own goroutine and returns the tracking job.
func (m *Manager) Submit(jobType, description string, fn Func) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:          fmt.Sprintf("%s-%s", jobType, uuid.NewString()[:8]),
		Type:        jobType,
		Description: description,
		StartTime:   time.Now(),
		status:      JobPending,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go func() {
		defer close(job.done)
		defer cancel()
		job.setStatus(JobRunning)
		result, err := fn(ctx, job)
		job.finish(ctx, result, err)
	}()
	return job
}

func (m *Manager) GetJob(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	return job, exists
}

// ListJobs returns every job, oldest first.
func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartTime.Equal(jobs[j].StartTime) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
	return jobs
}

func (m *Manager) CancelJob(jobID string) error {
	job, exists := m.GetJob(jobID)
	if !exists {
		return errors.Wrap(ErrNotFound, jobID)
	}
	if status := job.Status(); status != JobRunning && status != JobPending {
		return errors.Errorf("job %s is %s", jobID, status)
	}
	job.cancel()
	return nil
}

// Wait blocks until the job ends and returns its result.
func (j *Job) Wait() (any, error) {
	<-j.done
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.result, j.err
}

func (j *Job) setStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
}

func (j *Job) finish(ctx context.Context, result any, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.endTime = time.Now()
	j.result = result
	j.err = err
	switch {
	case err != nil && ctx.Err() != nil:
		j.status = JobCancelled
	case err != nil:
		j.status = JobFailed
	default:
		j.status = JobCompleted
		j.progress = 1
	}
}

func (j *Job) SetProgress(progress float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = progress
}

func (j *Job) AddLog(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	j.logs = append(j.logs, fmt.Sprintf("[%s] %s", timestamp, message))
}

// Write lets a job serve as a log.Logger output.
func (j *Job) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	j.AddLog(msg)
	return len(p), nil
}

func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

func (j *Job) Progress() float64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

// EndTime is zero while the job runs.
func (j *Job) EndTime() time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.endTime
}

func (j *Job) Logs() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.logs))
	copy(logs, j.logs)
	return logs
}
