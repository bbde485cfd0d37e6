// Package session owns the engine state for one open board: the board, the
// timer selection and the store they persist to.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/reorder"
	"github.com/antopolskiy/taskt/internal/store"
	"github.com/antopolskiy/taskt/internal/timer"
)

// Deps are the collaborators of a Session.
type Deps struct {
	Store     store.DocStore
	Authority timer.Authority
	Logger    logrus.FieldLogger
	// LogDir receives the activity log. Empty disables it.
	LogDir string
}

// Session is safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	st          timer.State
	store       store.DocStore
	auth        timer.Authority
	coord       *timer.Coordinator
	log         logrus.FieldLogger
	logDir      string
	lastSaveErr error
}

// Open loads the persisted board. On first run a fresh board is created and
// saved. A snapshot that cannot be read or fails validation is logged and
// replaced in memory by a fresh board; the bad data is left on disk until
// the next mutation.
func Open(ctx context.Context, d Deps) (*Session, error) {
	if d.Store == nil || d.Authority == nil {
		return nil, errors.New("session: store and authority are required")
	}
	log := d.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	s := &Session{
		store:  d.Store,
		auth:   d.Authority,
		coord:  timer.NewCoordinator(d.Authority, log),
		log:    log.WithField("component", "session"),
		logDir: d.LogDir,
	}

	snap, found, err := store.LoadSnapshot(ctx, d.Store)
	switch {
	case err != nil:
		s.log.WithError(err).Error("loading board failed, starting with a fresh board")
		s.st = timer.State{Board: board.New()}
		return s, nil
	case !found:
		s.st = timer.State{Board: board.New()}
		s.persist(ctx)
		return s, nil
	}
	if verr := snap.Board.Validate(); verr != nil {
		s.log.WithError(verr).Error("stored board is invalid, starting with a fresh board")
		s.st = timer.State{Board: board.New()}
		return s, nil
	}

	s.st = timer.State{Board: snap.Board, Selection: timer.Selection{ActiveTaskID: snap.ActiveTaskID}}
	s.st = s.coord.Reconcile(ctx, s.st)
	return s, nil
}

func (s *Session) persist(ctx context.Context) {
	err := store.SaveSnapshot(ctx, s.store, s.st.Board, s.st.Selection.ActiveTaskID)
	if err != nil {
		s.log.WithError(err).Error("persisting board failed")
	}
	s.lastSaveErr = err
}

func (s *Session) activity(action, taskID, detail string) {
	if s.logDir == "" {
		return
	}
	board.LogMutation(s.logDir, action, taskID, detail)
}

// CreateTask adds a task with the given content at the head of the default column.
func (s *Session) CreateTask(ctx context.Context, content string) (board.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return board.Task{}, clierr.New(clierr.InvalidInput, "task content must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var t board.Task
	s.st.Board, t = s.st.Board.CreateTask(content)
	s.persist(ctx)
	s.activity(board.ActionCreate, t.ID, content)
	s.log.WithField("task_id", t.ID).Info("task created")
	return t, nil
}

// DeleteTask removes a task. Deleting the active task stops its timer and
// clears the selection.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.Board.Task(id); !ok {
		return clierr.Newf(clierr.TaskNotFound, "task %s not found", id)
	}
	if s.st.Selection.ActiveTaskID == id {
		s.st = s.coord.DeleteActive(ctx, s.st)
		s.activity(board.ActionIdle, id, "deleted")
	}
	col, _ := s.st.Board.FindColumnOf(id)
	s.st.Board = s.st.Board.DeleteTask(id, col)
	s.persist(ctx)
	s.activity(board.ActionDelete, id, "")
	s.log.WithField("task_id", id).Info("task deleted")
	return nil
}

// Preview returns the board as it would look with dragged hovering over
// over. Nothing is stored.
func (s *Session) Preview(dragged, over string) board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reorder.Preview(s.st.Board, dragged, over)
}

// Commit drops dragged onto over, applies the timer consequences and
// persists. It reports whether the task moved. A gesture naming an unknown
// task or target is dropped: the board is unchanged and no error is
// returned.
func (s *Session) Commit(ctx context.Context, dragged, over string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.st.Board.Task(dragged)
	if _, ok := reorder.Destination(s.st.Board, over); !known || !ok {
		s.log.WithFields(logrus.Fields{"task_id": dragged, "over": over}).
			Debug("commit: ignoring gesture with unknown ids")
		return false, nil
	}

	before := s.st.Board
	g := reorder.Gesture{TaskID: dragged, OverID: over}
	_, tr := reorder.CommitTransfer(before, g)
	next, intents := reorder.ApplyCommit(before, g, reorder.DefaultRules(s.st.Selection.ActiveTaskID))

	wasActive := s.st.Selection.ActiveTaskID
	s.st.Board = next
	s.st = s.coord.Apply(ctx, s.st, intents)
	s.persist(ctx)

	if tr.Cancelled {
		return false, nil
	}
	s.activity(board.ActionMove, dragged, tr.From+" -> "+tr.To)
	for _, in := range intents {
		switch in.Kind {
		case reorder.SelectTask:
			if s.st.Selection.ActiveTaskID == in.TaskID {
				s.activity(board.ActionSelect, in.TaskID, "entered "+tr.To)
			}
		case reorder.ForceIdle:
			if s.st.Selection.ActiveTaskID == "" {
				s.activity(board.ActionIdle, wasActive, "left "+tr.From)
			}
		}
	}
	return true, nil
}

// Select makes id the active task. Only tasks in the in-progress column can
// be selected.
func (s *Session) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.st.Board.FindColumnOf(id)
	if !ok {
		return clierr.Newf(clierr.TaskNotFound, "task %s not found", id)
	}
	if col != board.InProgressColumn {
		return clierr.Newf(clierr.InvalidInput, "task %s is in %s; only %s tasks can be selected",
			id, col, board.InProgressColumn).
			WithDetails(map[string]any{"task_id": id, "column": col})
	}
	prev := s.st.Selection.ActiveTaskID
	s.st = s.coord.SelectTask(ctx, s.st, id)
	s.persist(ctx)
	if s.st.Selection.ActiveTaskID == id && prev != id {
		s.activity(board.ActionSelect, id, "")
	}
	return nil
}

// TogglePlayPause starts or pauses the active task's timer.
func (s *Session) TogglePlayPause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.coord.TogglePlayPause(ctx, s.st)
	if err != nil {
		return err
	}
	s.st = next
	s.persist(ctx)
	action := board.ActionPause
	if s.st.Selection.Running {
		action = board.ActionStart
	}
	s.activity(action, s.st.Selection.ActiveTaskID, fmt.Sprintf("%dms", s.st.DisplayMs))
	return nil
}

// PauseRunning pauses a running timer, if any. Used on shutdown.
func (s *Session) PauseRunning(ctx context.Context) error {
	s.mu.Lock()
	running := s.st.Phase() == timer.Running
	s.mu.Unlock()
	if !running {
		return nil
	}
	return s.TogglePlayPause(ctx)
}

// Poll refreshes the display from the authority and returns it.
func (s *Session) Poll(ctx context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = s.coord.Poll(ctx, s.st)
	return s.st.Display()
}

// QueryElapsed asks the authority for the selected task's total without
// touching session state. Feed the result back through ApplyElapsed.
func (s *Session) QueryElapsed(ctx context.Context) (timer.Elapsed, bool, error) {
	return s.auth.QueryElapsed(ctx)
}

// ApplyElapsed applies a poll result delivered by a Poller. Stale results
// are ignored and reported as false.
func (s *Session) ApplyElapsed(e timer.Elapsed) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := timer.ApplyElapsed(s.st, e)
	s.st = next
	return ok
}

// Display returns the elapsed milliseconds to show for the active task.
func (s *Session) Display() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Display()
}

// Phase returns the timer phase.
func (s *Session) Phase() timer.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Phase()
}

// ActiveTaskID returns the active task's id, or "".
func (s *Session) ActiveTaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Selection.ActiveTaskID
}

// Board returns a copy of the current board.
func (s *Session) Board() board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Board.Clone()
}

// Snapshot returns a copy of the full engine state.
func (s *Session) Snapshot() timer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	st.Board = st.Board.Clone()
	return st
}

// LastSaveError returns the error of the most recent save, or nil.
func (s *Session) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Reload re-reads the store after an external change. The run state is
// kept when the stored active task is the one already active.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.store.(store.Reloader); ok {
		if err := r.Reload(ctx); err != nil {
			return fmt.Errorf("reloading store: %w", err)
		}
	}
	snap, found, err := store.LoadSnapshot(ctx, s.store)
	if err != nil {
		return fmt.Errorf("reloading board: %w", err)
	}
	if !found {
		return nil
	}
	if err := snap.Board.Validate(); err != nil {
		s.log.WithError(err).Warn("ignoring invalid board on reload")
		return nil
	}

	prev := s.st
	next := timer.State{Board: snap.Board, Selection: timer.Selection{ActiveTaskID: snap.ActiveTaskID}}
	task, exists := snap.Board.Task(snap.ActiveTaskID)
	switch {
	case snap.ActiveTaskID != "" && snap.ActiveTaskID == prev.Selection.ActiveTaskID && exists:
		next.Selection.Running = prev.Selection.Running
		next.DisplayMs = task.TimeSpentMs
		if next.Selection.Running {
			next.DisplayMs = prev.DisplayMs
		}
	default:
		next = s.coord.Reconcile(ctx, next)
	}
	s.st = next
	return nil
}
