// Package registry tracks long-running analysis operations so clients can
// poll progress. The registry is an explicit value handed to whoever needs
// it; there is deliberately no package-level instance.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Operation is a progress snapshot of one asynchronous analysis.
type Operation struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	ReportID  string    `json:"report_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Registry struct {
	mu  sync.RWMutex
	ops map[uuid.UUID]Operation
}

func New() *Registry {
	return &Registry{ops: make(map[uuid.UUID]Operation)}
}

// Begin registers a fresh running operation.
func (r *Registry) Begin() Operation {
	now := time.Now().UTC()
	op := Operation{
		ID:        uuid.New(),
		Status:    StatusRunning,
		Stage:     "queued",
		StartedAt: now,
		UpdatedAt: now,
	}
	r.Set(op)
	return op
}

func (r *Registry) Get(id uuid.UUID) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	return op, ok
}

func (r *Registry) Set(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = op
}

func (r *Registry) Clear(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, id)
}

// Snapshot lists all tracked operations, most recently started first.
func (r *Registry) Snapshot() []Operation {
	r.mu.RLock()
	out := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// Update advances the stage of a running operation. Unknown ids are
// ignored.
func (r *Registry) Update(id uuid.UUID, stage string, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok {
		return
	}
	op.Stage = stage
	op.Percent = percent
	op.UpdatedAt = time.Now().UTC()
	r.ops[id] = op
}

// Complete marks an operation finished and records the stored report id.
func (r *Registry) Complete(id uuid.UUID, reportID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok {
		return
	}
	op.Status = StatusCompleted
	op.Stage = "done"
	op.Percent = 100
	op.ReportID = reportID
	op.UpdatedAt = time.Now().UTC()
	r.ops[id] = op
}

// Fail marks an operation failed with its error message.
func (r *Registry) Fail(id uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok {
		return
	}
	op.Status = StatusFailed
	if err != nil {
		op.Error = err.Error()
	}
	op.UpdatedAt = time.Now().UTC()
	r.ops[id] = op
}
