package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"waxwing/src/features/config"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// terminal reports whether a job in this status will never change again.
func terminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// ErrPartial marks a run in which some albums succeeded and some didn't.
// The job finishes as completed-with-errors rather than failed.
var ErrPartial = errors.New("completed with errors")

type Job struct {
	ID         string
	Type       string
	Name       string
	Status     JobStatus
	Progress   int
	Message    string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Metadata   map[string]any
	cancelFunc context.CancelFunc
	Logger     *slog.Logger
	LogPath    string
	cancelled  bool
}

type JobProgress struct {
	JobID    string
	Progress int
	Message  string
}

type TaskHandler interface {
	Execute(ctx context.Context, job *Job, progressChan chan<- JobProgress) error
	Cancel(jobID string) error
}

// Task defines the specific logic for a job type.
type Task interface {
	MetadataKeys() []string
	Execute(ctx context.Context, job *Job, progressUpdater func(int, string)) (map[string]any, error)
	Cleanup(job *Job) error
}

// BaseTaskHandler adapts a Task into a TaskHandler: it validates the
// required metadata, bridges progress updates onto the channel and
// merges the task's result stats back into the job.
type BaseTaskHandler struct {
	Task Task
}

// NewBaseTaskHandler creates a new BaseTaskHandler.
func NewBaseTaskHandler(task Task) *BaseTaskHandler {
	return &BaseTaskHandler{Task: task}
}

func (h *BaseTaskHandler) Execute(ctx context.Context, job *Job, progressChan chan<- JobProgress) error {
	job.Logger.Info("Starting job", "name", job.Name)

	for _, key := range h.Task.MetadataKeys() {
		if _, ok := job.Metadata[key]; !ok {
			err := fmt.Errorf("missing %s in job metadata", key)
			job.Logger.Error("Job rejected", "error", err)
			return err
		}
	}

	updater := func(percentage int, status string) {
		progressChan <- JobProgress{JobID: job.ID, Progress: percentage, Message: status}
		job.Logger.Info("Progress", "percentage", percentage, "status", status)
	}

	defer func() {
		if err := h.Task.Cleanup(job); err != nil {
			job.Logger.Error("Job cleanup failed", "error", err)
		}
	}()

	stats, err := h.Task.Execute(ctx, job, updater)
	// Stats land in the metadata even when the run partially failed, so
	// the UI can still show what got done.
	if stats != nil {
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		maps.Copy(job.Metadata, stats)
	}
	if err != nil {
		job.Logger.Error("Job execution failed", "error", err)
		return err
	}

	job.Logger.Info("Job finished", "name", job.Name)
	return nil
}

// Cancel is a no-op here; cancellation happens through the job context.
func (h *BaseTaskHandler) Cancel(jobID string) error {
	return nil
}

// JobService is the narrow interface handlers and bots depend on.
type JobService interface {
	StartJob(jobType string, name string, metadata map[string]any) (string, error)
	UpdateJobProgress(jobID string, progress int, message string)
	GetJob(jobID string) (*Job, bool)
	CancelJob(jobID string) error
	GetJobs() []*Job
}

// Service runs registered tasks as background jobs, one per type at a
// time. Jobs carry their own file logger so each run's output can be
// read back from the UI.
type Service struct {
	jobs     map[string]*Job
	handlers map[string]TaskHandler
	mu       sync.RWMutex
	config   *config.Jobs
}

func NewService(cfg *config.Jobs) *Service {
	return &Service{
		jobs:     make(map[string]*Job),
		handlers: make(map[string]TaskHandler),
		config:   cfg,
	}
}

func (s *Service) RegisterHandler(jobType string, handler TaskHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[jobType] = handler
}

// jobLogger opens a per-job log file, or a discard logger when job
// logging is off.
func (s *Service) jobLogger(job *Job) error {
	if !s.config.Log {
		job.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}
	if err := os.MkdirAll(s.config.LogPath, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), job.ID)
	path := filepath.Join(s.config.LogPath, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	job.Logger = slog.New(slog.NewTextHandler(f, nil))
	job.LogPath = path
	return nil
}

// StartJob queues a job of the given type. If no job of that type is
// running it starts immediately, otherwise it waits its turn.
func (s *Service) StartJob(jobType string, name string, metadata map[string]any) (string, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Name:      name,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Metadata:  metadata,
	}
	if err := s.jobLogger(job); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	start := !s.typeRunning(jobType)
	if start {
		job.Status = JobStatusRunning
	}
	s.mu.Unlock()

	if start {
		go s.run(job)
	}
	return job.ID, nil
}

func (s *Service) run(job *Job) {
	handler, exists := s.handlers[job.Type]
	if !exists {
		s.setStatus(job.ID, JobStatusFailed, "No handler registered")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	job.cancelFunc = cancel
	s.mu.Unlock()
	s.setStatus(job.ID, JobStatusRunning, "Starting...")

	updates := make(chan JobProgress, 10)
	go func() {
		for p := range updates {
			s.UpdateJobProgress(p.JobID, p.Progress, p.Message)
		}
	}()
	err := handler.Execute(ctx, job, updates)
	close(updates)

	s.mu.Lock()
	cancelled := job.cancelled
	s.mu.Unlock()

	switch {
	case cancelled, errors.Is(err, context.Canceled):
		s.setStatus(job.ID, JobStatusCancelled, "Job cancelled")
	case errors.Is(err, ErrPartial):
		s.setStatus(job.ID, JobStatusCompleted, "Job "+err.Error())
	case err != nil:
		s.setStatus(job.ID, JobStatusFailed, err.Error())
	default:
		s.setStatus(job.ID, JobStatusCompleted, "Job completed successfully")
	}
	s.notifyWebhook(job)

	// A job of the same type may have queued up meanwhile.
	s.dequeue(job.Type)
}

func (s *Service) setStatus(jobID string, status JobStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	job.Status = status
	job.Message = message
	job.UpdatedAt = time.Now()
	if status == JobStatusCompleted {
		job.Progress = 100
	}
}

func (s *Service) UpdateJobProgress(jobID string, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists || terminal(job.Status) {
		return
	}
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now()
}

func (s *Service) CancelJob(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return errors.New("job not found")
	}

	job.cancelled = true
	job.Status = JobStatusCancelled
	job.Message = "Job cancelled"
	job.UpdatedAt = time.Now()

	if job.cancelFunc != nil {
		job.cancelFunc()
	}
	if handler, exists := s.handlers[job.Type]; exists {
		return handler.Cancel(jobID)
	}
	return nil
}

func (s *Service) GetJob(jobID string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	return job, exists
}

func (s *Service) GetJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// typeRunning reports whether a job of this type is active. Caller
// holds the lock.
func (s *Service) typeRunning(jobType string) bool {
	for _, job := range s.jobs {
		if job.Type == jobType && job.Status == JobStatusRunning {
			return true
		}
	}
	return false
}

// dequeue starts the oldest pending job of the given type, if any.
func (s *Service) dequeue(jobType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var next *Job
	for _, job := range s.jobs {
		if job.Type != jobType || job.Status != JobStatusPending {
			continue
		}
		if next == nil || job.CreatedAt.Before(next.CreatedAt) {
			next = job
		}
	}
	if next != nil {
		next.Status = JobStatusRunning
		go s.run(next)
	}
}

// CleanupOldJobs drops finished jobs that haven't been touched within
// maxAge, along with their log files.
func (s *Service) CleanupOldJobs(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if terminal(job.Status) && now.Sub(job.UpdatedAt) > maxAge {
			if job.LogPath != "" {
				os.Remove(job.LogPath)
			}
			delete(s.jobs, id)
		}
	}
}

// ClearFinishedJobs drops every job in a terminal state.
func (s *Service) ClearFinishedJobs() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if terminal(job.Status) {
			if job.LogPath != "" {
				os.Remove(job.LogPath)
			}
			delete(s.jobs, id)
		}
	}
	return nil
}

// notifyWebhook runs the configured shell command when a matching job
// reaches a terminal state. The command is a text/template over the
// job's name, type, status, message and duration.
func (s *Service) notifyWebhook(job *Job) {
	if !s.config.Webhooks.Enabled {
		return
	}

	match := false
	for _, jobType := range s.config.Webhooks.JobTypes {
		if jobType == job.Type || jobType == "*" {
			match = true
			break
		}
	}
	if !match {
		return
	}

	message := job.Message
	if msg, ok := job.Metadata["msg"].(string); ok && msg != "" {
		message = msg
	}

	data := struct {
		Name     string
		Type     string
		Status   string
		Message  string
		Duration string
	}{
		Name:     job.Name,
		Type:     job.Type,
		Status:   string(job.Status),
		Message:  message,
		Duration: time.Since(job.CreatedAt).Round(time.Second).String(),
	}

	tmpl, err := template.New("webhook").Parse(s.config.Webhooks.Command)
	if err != nil {
		job.Logger.Error("Failed to parse webhook template", "error", err)
		return
	}
	var command strings.Builder
	if err := tmpl.Execute(&command, data); err != nil {
		job.Logger.Error("Failed to render webhook command", "error", err)
		return
	}

	go s.runWebhookCommand(command.String(), job)
}

func (s *Service) runWebhookCommand(command string, job *Job) {
	// Go through the shell so quoting in the configured command works.
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Env = os.Environ()

	timer := time.AfterFunc(30*time.Second, func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	})
	defer timer.Stop()

	if err := cmd.Run(); err != nil {
		job.Logger.Error("Webhook failed", "command", command, "error", err)
		return
	}
	job.Logger.Info("Webhook executed", "command", command)
}
