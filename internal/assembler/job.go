package assembler

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job tracks one export. It is a Reporter, so it can be handed straight to
// Assemble; the UI polls Snapshot.
type Job struct {
	mu sync.RWMutex

	id         string
	bookURL    string
	title      string
	status     JobStatus
	progress   int
	log        []string
	errors     []string
	fatal      string
	doc        *Document
	createdAt  time.Time
	finishedAt time.Time
}

// JobSnapshot is a point-in-time copy of a Job.
type JobSnapshot struct {
	ID         string    `json:"id" yaml:"id"`
	BookURL    string    `json:"book_url" yaml:"book_url"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	Status     JobStatus `json:"status" yaml:"status"`
	Progress   int       `json:"progress" yaml:"progress"`
	Log        []string  `json:"log" yaml:"log"`
	Errors     []string  `json:"errors" yaml:"errors"`
	Fatal      string    `json:"fatal,omitempty" yaml:"fatal,omitempty"`
	Filename   string    `json:"filename,omitempty" yaml:"filename,omitempty"`
	Location   string    `json:"location,omitempty" yaml:"location,omitempty"`
	Attempted  int       `json:"attempted" yaml:"attempted"`
	Placed     int       `json:"placed" yaml:"placed"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

func newJob(bookURL, title string) *Job {
	return &Job{
		id:        uuid.NewString(),
		bookURL:   bookURL,
		title:     title,
		status:    JobPending,
		log:       []string{},
		errors:    []string{},
		createdAt: time.Now(),
	}
}

func (j *Job) ID() string      { return j.id }
func (j *Job) BookURL() string { return j.bookURL }
func (j *Job) Title() string   { return j.title }

func (j *Job) OnProgress(percent int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = percent
}

func (j *Job) OnLog(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.log = append(j.log, msg)
}

func (j *Job) OnError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
}

func (j *Job) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = JobRunning
}

// Finish records the outcome of Assemble.
func (j *Job) Finish(doc *Document, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishedAt = time.Now()
	if err != nil {
		j.status = JobFailed
		j.fatal = err.Error()
		return
	}
	j.status = JobCompleted
	j.doc = doc
}

func (j *Job) Done() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status == JobCompleted || j.status == JobFailed
}

func (j *Job) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s := JobSnapshot{
		ID:         j.id,
		BookURL:    j.bookURL,
		Title:      j.title,
		Status:     j.status,
		Progress:   j.progress,
		Log:        append([]string{}, j.log...),
		Errors:     append([]string{}, j.errors...),
		Fatal:      j.fatal,
		CreatedAt:  j.createdAt,
		FinishedAt: j.finishedAt,
	}
	if j.doc != nil {
		s.Filename = j.doc.Filename
		s.Location = j.doc.Location
		s.Attempted = j.doc.Attempted
		s.Placed = j.doc.Placed
	}
	return s
}

// JobRegistry holds jobs in memory. Jobs are transient and vanish on
// restart.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[string]*Job)}
}

func (r *JobRegistry) Create(bookURL, title string) *Job {
	j := newJob(bookURL, title)
	r.mu.Lock()
	r.jobs[j.id] = j
	r.mu.Unlock()
	return j
}

// Restore returns the job with id, re-registering it as pending when the
// registry has no record of it, as happens to queued tasks after a restart.
func (r *JobRegistry) Restore(id, bookURL, title string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		return j
	}
	j := newJob(bookURL, title)
	j.id = id
	r.jobs[id] = j
	return j
}

func (r *JobRegistry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// List returns snapshots, newest first.
func (r *JobRegistry) List() []JobSnapshot {
	r.mu.RLock()
	out := make([]JobSnapshot, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Snapshot())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

// Prune forgets finished jobs older than maxAge and returns how many.
func (r *JobRegistry) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, j := range r.jobs {
		s := j.Snapshot()
		if (s.Status == JobCompleted || s.Status == JobFailed) && s.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}
