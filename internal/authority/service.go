// Package authority implements the timer authority: the single owner of
// elapsed-time accounting for the selected task.
package authority

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/timer"
)

// Service is an in-memory timer authority. It is safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	tasks     map[string]board.Task
	selected  string
	running   bool
	startedAt time.Time
	now       func() time.Time
}

var _ timer.Authority = (*Service)(nil)

// NewService returns an authority with no tasks and no running timer.
func NewService() *Service {
	return &Service{tasks: make(map[string]board.Task), now: time.Now}
}

// SetNow overrides the clock (for testing).
func (s *Service) SetNow(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = fn
}

// StartTimer stops any running timer, stores t and starts timing it.
func (s *Service) StartTimer(_ context.Context, t board.Task) (board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.tasks[t.ID] = t
	s.selected = t.ID
	s.running = true
	s.startedAt = s.now()
	return t, nil
}

// PauseTimer stops the running timer and returns its task with the elapsed
// segment added. It returns nil when nothing is running.
func (s *Service) PauseTimer(context.Context) (*board.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(), nil
}

func (s *Service) stopLocked() *board.Task {
	if !s.running {
		return nil
	}
	s.running = false
	t, ok := s.tasks[s.selected]
	if !ok {
		return nil
	}
	t.TimeSpentMs += s.segmentLocked()
	s.tasks[t.ID] = t
	return &t
}

func (s *Service) segmentLocked() int64 {
	d := s.now().Sub(s.startedAt)
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// QueryElapsed returns the live total of the running task, or the stored
// total of a selected but stopped one.
func (s *Service) QueryElapsed(context.Context) (timer.Elapsed, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[s.selected]
	if s.selected == "" || !ok {
		return timer.Elapsed{}, false, nil
	}
	e := timer.Elapsed{TaskID: t.ID, ElapsedMs: t.TimeSpentMs, Running: s.running}
	if s.running {
		e.ElapsedMs += s.segmentLocked()
	}
	return e, true, nil
}

// SyncTask stores t. When no timer runs, t also becomes the selected task.
func (s *Service) SyncTask(_ context.Context, t board.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.selected == t.ID {
		// The running copy carries the accounting; only content may change.
		cur := s.tasks[t.ID]
		cur.Content = t.Content
		s.tasks[t.ID] = cur
		return nil
	}
	s.tasks[t.ID] = t
	if !s.running {
		s.selected = t.ID
	}
	return nil
}

// CreateTask registers a new task with the authority.
func (s *Service) CreateTask(content string) board.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := board.Task{ID: board.NewTaskID(), Content: content}
	s.tasks[t.ID] = t
	return t
}

// Tasks returns every known task ordered by ID.
func (s *Service) Tasks() []board.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b board.Task) int { return strings.Compare(a.ID, b.ID) })
	return out
}
