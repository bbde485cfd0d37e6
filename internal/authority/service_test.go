package authority_test

import (
	"context"
	"testing"
	"time"

	"github.com/antopolskiy/taskt/internal/authority"
	"github.com/antopolskiy/taskt/internal/board"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)} }
func newService(c *clock) *authority.Service {
	s := authority.NewService()
	s.SetNow(c.now)
	return s
}

func TestStartPauseAccumulates(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := newService(c)

	if _, err := s.StartTimer(ctx, board.Task{ID: "a", TimeSpentMs: 1000}); err != nil {
		t.Fatal(err)
	}
	c.advance(2500 * time.Millisecond)

	e, ok, _ := s.QueryElapsed(ctx)
	if !ok || e.TaskID != "a" || e.ElapsedMs != 3500 || !e.Running {
		t.Errorf("QueryElapsed = %+v, %v", e, ok)
	}

	paused, _ := s.PauseTimer(ctx)
	if paused == nil || paused.TimeSpentMs != 3500 {
		t.Fatalf("PauseTimer = %+v, want 3500ms", paused)
	}

	c.advance(time.Hour)
	e, ok, _ = s.QueryElapsed(ctx)
	if !ok || e.ElapsedMs != 3500 || e.Running {
		t.Errorf("after pause QueryElapsed = %+v, %v; want stored 3500, not running", e, ok)
	}
}

func TestPauseWithNothingRunning(t *testing.T) {
	s := authority.NewService()
	if got, err := s.PauseTimer(context.Background()); got != nil || err != nil {
		t.Errorf("PauseTimer = %v, %v; want nil, nil", got, err)
	}
	if _, ok, _ := s.QueryElapsed(context.Background()); ok {
		t.Error("QueryElapsed reported a task with nothing selected")
	}
}

func TestStartStopsPreviousTimer(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := newService(c)

	_, _ = s.StartTimer(ctx, board.Task{ID: "a"})
	c.advance(time.Second)
	_, _ = s.StartTimer(ctx, board.Task{ID: "b"})
	c.advance(3 * time.Second)

	tasks := s.Tasks()
	if len(tasks) != 2 || tasks[0].TimeSpentMs != 1000 {
		t.Errorf("tasks = %+v, want a with 1000ms", tasks)
	}
	e, _, _ := s.QueryElapsed(ctx)
	if e.TaskID != "b" || e.ElapsedMs != 3000 {
		t.Errorf("QueryElapsed = %+v, want b at 3000", e)
	}
}

func TestSyncTask(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := newService(c)

	_ = s.SyncTask(ctx, board.Task{ID: "a", TimeSpentMs: 700})
	e, ok, _ := s.QueryElapsed(ctx)
	if !ok || e.TaskID != "a" || e.ElapsedMs != 700 || e.Running {
		t.Errorf("QueryElapsed after sync = %+v, %v", e, ok)
	}

	_, _ = s.StartTimer(ctx, board.Task{ID: "b"})
	c.advance(time.Second)
	_ = s.SyncTask(ctx, board.Task{ID: "a", TimeSpentMs: 700})
	_ = s.SyncTask(ctx, board.Task{ID: "b", Content: "renamed", TimeSpentMs: 0})
	e, _, _ = s.QueryElapsed(ctx)
	if e.TaskID != "b" || e.ElapsedMs != 1000 {
		t.Errorf("sync changed the running timer: %+v", e)
	}
}

func TestCreateTask(t *testing.T) {
	s := authority.NewService()
	a := s.CreateTask("one")
	b := s.CreateTask("two")
	if a.ID == b.ID || a.TimeSpentMs != 0 {
		t.Errorf("CreateTask = %+v, %+v", a, b)
	}
	if len(s.Tasks()) != 2 {
		t.Errorf("Tasks() = %d, want 2", len(s.Tasks()))
	}
}
