package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the state of a generation task.
type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// ErrBusy is returned when a generation run is requested while another one
// is in flight. Generation is single-flight per process.
var ErrBusy = errors.New("a generation task is already running")

// Task tracks one asynchronous course generation.
type Task struct {
	mu sync.Mutex

	ID        string     `json:"task_id"`
	Status    TaskStatus `json:"status"`
	Stage     string     `json:"stage"`
	Progress  int        `json:"progress"`
	Topic     string     `json:"topic"`
	Warnings  []string   `json:"warnings"`
	Error     string     `json:"error,omitempty"`
	Package   string     `json:"package,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewTask(topic string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.NewString(),
		Status:    TaskQueued,
		Topic:     topic,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetProgress updates the running stage and percentage.
func (t *Task) SetProgress(pct int, stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskRunning
	t.Stage = stage
	t.Progress = pct
	t.UpdatedAt = time.Now()
}

// AddWarnings appends structural warnings from the generated document.
func (t *Task) AddWarnings(warnings []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Warnings = append(t.Warnings, warnings...)
	t.UpdatedAt = time.Now()
}

// Complete marks the task done and records the package filename.
func (t *Task) Complete(packageName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskCompleted
	t.Stage = "done"
	t.Progress = 100
	t.Package = packageName
	t.UpdatedAt = time.Now()
}

// Fail marks the task failed.
func (t *Task) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskFailed
	t.Error = err.Error()
	t.UpdatedAt = time.Now()
}

// TaskSnapshot is a read-only, JSON-safe copy of task state.
type TaskSnapshot struct {
	ID        string     `json:"task_id"`
	Status    TaskStatus `json:"status"`
	Stage     string     `json:"stage"`
	Progress  int        `json:"progress"`
	Topic     string     `json:"topic"`
	Warnings  []string   `json:"warnings"`
	Error     string     `json:"error,omitempty"`
	Package   string     `json:"package,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the task state.
func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	warnings := t.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return TaskSnapshot{
		ID:        t.ID,
		Status:    t.Status,
		Stage:     t.Stage,
		Progress:  t.Progress,
		Topic:     t.Topic,
		Warnings:  warnings,
		Error:     t.Error,
		Package:   t.Package,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TaskStore is a thread-safe in-memory task registry with TTL eviction and a
// single-flight guard over generation runs.
type TaskStore struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	ttl    time.Duration
	active bool
}

func NewTaskStore(ttl time.Duration) *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
		ttl:   ttl,
	}
}

// Begin registers a task and claims the single generation slot. Returns
// ErrBusy if another run is active.
func (s *TaskStore) Begin(task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrBusy
	}
	s.active = true
	s.tasks[task.ID] = task
	return nil
}

// Finish releases the generation slot.
func (s *TaskStore) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *TaskStore) Get(id string) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

// Cleanup removes expired tasks.
func (s *TaskStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, task := range s.tasks {
		task.mu.Lock()
		expired := now.Sub(task.UpdatedAt) > s.ttl && task.Status != TaskRunning
		task.mu.Unlock()
		if expired {
			delete(s.tasks, id)
		}
	}
}
