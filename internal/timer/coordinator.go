package timer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/reorder"
)

// Coordinator runs the Idle/Selected/Running state machine.
type Coordinator struct {
	auth Authority
	log  logrus.FieldLogger
}

// NewCoordinator returns a coordinator backed by auth.
func NewCoordinator(auth Authority, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Coordinator{auth: auth, log: log.WithField("component", "timer")}
}

// SelectTask makes id the active task. A different running task is paused
// first and its returned time merged; if that pause fails the old task keeps
// running and the selection does not change.
func (c *Coordinator) SelectTask(ctx context.Context, st State, id string) State {
	task, ok := st.Board.Task(id)
	if !ok {
		c.log.WithField("task_id", id).Warn("select: unknown task")
		return st
	}
	if st.Selection.ActiveTaskID == id {
		return st
	}

	if st.Selection.Running {
		paused, err := c.auth.PauseTimer(ctx)
		if err != nil {
			c.log.WithError(err).WithField("task_id", st.Selection.ActiveTaskID).
				Error("select: pausing running task failed, keeping it active")
			return st
		}
		if paused != nil {
			st.Board = st.Board.MergeTask(*paused)
		}
		task, _ = st.Board.Task(id)
	}

	st.Selection = Selection{ActiveTaskID: id}
	st.DisplayMs = task.TimeSpentMs
	if err := c.auth.SyncTask(ctx, task); err != nil {
		c.log.WithError(err).WithField("task_id", id).Warn("select: sync with authority failed")
	}
	return st
}

// TogglePlayPause starts a selected task or pauses a running one. With no
// active task it returns a NO_TASK_SELECTED error and the unchanged state.
func (c *Coordinator) TogglePlayPause(ctx context.Context, st State) (State, error) {
	switch st.Phase() {
	case Idle:
		return st, clierr.New(clierr.NoTaskSelected,
			"no task selected: select a task in In Progress or move one there")

	case Selected:
		task, ok := st.ActiveTask()
		if !ok {
			return st, clierr.Newf(clierr.TaskNotFound, "active task %s not found", st.Selection.ActiveTaskID)
		}
		started, err := c.auth.StartTimer(ctx, task)
		if err != nil {
			c.log.WithError(err).WithField("task_id", task.ID).Error("start timer failed")
			return st, clierr.Newf(clierr.AuthorityUnavailable, "starting timer: %v", err)
		}
		st.Board = st.Board.MergeTask(started)
		st.Selection.Running = true
		st.DisplayMs = started.TimeSpentMs
		return st, nil

	default:
		paused, err := c.auth.PauseTimer(ctx)
		if err != nil {
			c.log.WithError(err).WithField("task_id", st.Selection.ActiveTaskID).Error("pause timer failed")
			return st, clierr.Newf(clierr.AuthorityUnavailable, "pausing timer: %v", err)
		}
		if paused != nil {
			st.Board = st.Board.MergeTask(*paused)
		}
		st.Selection.Running = false
		st.DisplayMs = st.Display()
		return st, nil
	}
}

// DeleteActive prepares deletion of the active task: a running timer is
// paused best-effort and the state always ends Idle.
func (c *Coordinator) DeleteActive(ctx context.Context, st State) State {
	if st.Selection.Running {
		if _, err := c.auth.PauseTimer(ctx); err != nil {
			c.log.WithError(err).WithField("task_id", st.Selection.ActiveTaskID).
				Warn("delete: pausing active task failed")
		}
	}
	return idle(st)
}

// ForceIdle clears the active task after it left the in-progress column.
// A running timer is paused first and its time merged. If that pause fails
// the task keeps running and the selection does not change.
func (c *Coordinator) ForceIdle(ctx context.Context, st State) State {
	if st.Selection.Running {
		paused, err := c.auth.PauseTimer(ctx)
		if err != nil {
			c.log.WithError(err).WithField("task_id", st.Selection.ActiveTaskID).
				Error("force idle: pausing active task failed, keeping it running")
			return st
		}
		if paused != nil {
			st.Board = st.Board.MergeTask(*paused)
		}
	}
	return idle(st)
}

// Apply executes commit intents in order.
func (c *Coordinator) Apply(ctx context.Context, st State, intents []reorder.Intent) State {
	for _, in := range intents {
		switch in.Kind {
		case reorder.SelectTask:
			st = c.SelectTask(ctx, st, in.TaskID)
		case reorder.ForceIdle:
			st = c.ForceIdle(ctx, st)
		default:
			c.log.WithField("intent", in.String()).Warn("ignoring unknown intent")
		}
	}
	return st
}

// Poll queries the authority once and applies the result.
func (c *Coordinator) Poll(ctx context.Context, st State) State {
	if st.Phase() != Running {
		return st
	}
	e, ok, err := c.auth.QueryElapsed(ctx)
	if err != nil {
		c.log.WithError(err).Debug("query elapsed failed")
		return st
	}
	if !ok {
		return st
	}
	next, _ := ApplyElapsed(st, e)
	return next
}

// ApplyElapsed updates the display from a poll result. Results for any task
// other than the running active one are stale and ignored.
func ApplyElapsed(st State, e Elapsed) (State, bool) {
	if st.Phase() != Running || e.TaskID != st.Selection.ActiveTaskID {
		return st, false
	}
	st.DisplayMs = e.ElapsedMs
	return st, true
}

// Reconcile re-hydrates a persisted selection against the authority: the
// active task is synced, and if the authority already runs it the state
// becomes Running. A persisted active ID that no longer names a task is
// dropped.
func (c *Coordinator) Reconcile(ctx context.Context, st State) State {
	if st.Selection.ActiveTaskID == "" {
		return idle(st)
	}
	task, ok := st.ActiveTask()
	if !ok {
		c.log.WithField("task_id", st.Selection.ActiveTaskID).Warn("persisted active task no longer exists")
		return idle(st)
	}
	st.Selection.Running = false
	st.DisplayMs = task.TimeSpentMs

	e, found, err := c.auth.QueryElapsed(ctx)
	if err != nil {
		c.log.WithError(err).Warn("reconcile: authority unavailable")
		return st
	}
	if found && e.Running {
		if e.TaskID == task.ID {
			st.Selection.Running = true
			st.DisplayMs = e.ElapsedMs
			return st
		}
		c.log.WithFields(logrus.Fields{"task_id": task.ID, "running_id": e.TaskID}).
			Warn("reconcile: authority runs a different task")
		return st
	}
	if err := c.auth.SyncTask(ctx, task); err != nil {
		c.log.WithError(err).WithField("task_id", task.ID).Warn("reconcile: sync failed")
	}
	return st
}

func idle(st State) State {
	st.Selection = Selection{}
	st.DisplayMs = 0
	return st
}
