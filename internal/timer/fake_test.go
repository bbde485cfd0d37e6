package timer_test

import (
	"context"
	"errors"
	"sync"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/timer"
)

var errUnavailable = errors.New("authority unavailable")

// fakeAuthority records calls and returns scripted results.
type fakeAuthority struct {
	mu sync.Mutex

	running   string
	stored    map[string]board.Task
	pauseAdds int64 // ms merged into the running task on pause

	startErr, pauseErr, queryErr, syncErr error
	elapsed                               *timer.Elapsed

	starts, pauses, queries, syncs int
}

func newFake() *fakeAuthority {
	return &fakeAuthority{stored: map[string]board.Task{}, pauseAdds: 1000}
}

func (f *fakeAuthority) StartTimer(_ context.Context, t board.Task) (board.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return board.Task{}, f.startErr
	}
	f.stored[t.ID] = t
	f.running = t.ID
	return t, nil
}

func (f *fakeAuthority) PauseTimer(context.Context) (*board.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	if f.pauseErr != nil {
		return nil, f.pauseErr
	}
	if f.running == "" {
		return nil, nil
	}
	t := f.stored[f.running]
	t.TimeSpentMs += f.pauseAdds
	f.stored[t.ID] = t
	f.running = ""
	return &t, nil
}

func (f *fakeAuthority) QueryElapsed(context.Context) (timer.Elapsed, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.queryErr != nil {
		return timer.Elapsed{}, false, f.queryErr
	}
	if f.elapsed != nil {
		return *f.elapsed, true, nil
	}
	if f.running == "" {
		return timer.Elapsed{}, false, nil
	}
	return timer.Elapsed{TaskID: f.running, ElapsedMs: f.stored[f.running].TimeSpentMs + 500, Running: true}, true, nil
}

func (f *fakeAuthority) SyncTask(_ context.Context, t board.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	if f.syncErr != nil {
		return f.syncErr
	}
	f.stored[t.ID] = t
	return nil
}

func (f *fakeAuthority) counts() (starts, pauses, queries, syncs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.pauses, f.queries, f.syncs
}
