// Package jobs tracks batch crawl runs triggered over the API. Jobs run one
// at a time: the browser session underneath is strictly sequential.
package jobs

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one batch crawl request and its progress.
type Job struct {
	ID          string     `json:"id"`
	Brand       string     `json:"brand"`
	StartPage   int        `json:"start_page"`
	MaxPages    int        `json:"max_pages"`
	MaxCars     int        `json:"max_cars"`
	Status      Status     `json:"status"`
	LinksFound  int        `json:"links_found"`
	Processed   int        `json:"processed"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	OutputPath  string     `json:"output_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunFunc executes one crawl. Implementations report progress through
// update, which applies a mutation to the tracked job under the manager's
// lock.
type RunFunc func(ctx context.Context, job Job, update func(func(*Job))) error

type Manager struct {
	base   context.Context
	run    RunFunc
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
	// serializes crawls; the underlying browser session is single-flight
	running sync.Mutex
}

// NewManager builds a manager whose jobs run under base. Jobs outlive the
// requests that created them; cancelling base (app shutdown) is the only way
// to cancel a running crawl.
func NewManager(base context.Context, run RunFunc) *Manager {
	return &Manager{
		base:   base,
		run:    run,
		logger: slog.Default().With("component", "job_manager"),
		jobs:   make(map[string]*Job),
	}
}

// Create registers a crawl job and starts it in the background.
func (m *Manager) Create(brand string, startPage, maxPages, maxCars int) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Brand:     brand,
		StartPage: startPage,
		MaxPages:  maxPages,
		MaxCars:   maxCars,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.execute(m.base, job.ID)

	return m.snapshot(job.ID)
}

func (m *Manager) execute(ctx context.Context, id string) {
	m.running.Lock()
	defer m.running.Unlock()

	update := func(mutate func(*Job)) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if job, ok := m.jobs[id]; ok {
			mutate(job)
		}
	}

	now := time.Now()
	update(func(j *Job) {
		j.Status = StatusRunning
		j.StartedAt = &now
	})

	job := m.snapshot(id)
	m.logger.Info("job started", "id", id, "brand", job.Brand)

	err := m.run(ctx, *job, update)

	done := time.Now()
	update(func(j *Job) {
		j.CompletedAt = &done
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
		} else {
			j.Status = StatusCompleted
		}
	})

	if err != nil {
		m.logger.Error("job failed", "id", id, "error", err)
		return
	}
	m.logger.Info("job completed", "id", id)
}

// Get returns a copy of one job, or nil when unknown.
func (m *Manager) Get(id string) *Job {
	return m.snapshot(id)
}

// List returns copies of all jobs, newest first.
func (m *Manager) List() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		copied := *job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

func (m *Manager) snapshot(id string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}
