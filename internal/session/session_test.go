package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/antopolskiy/taskt/internal/authority"
	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/clierr"
	"github.com/antopolskiy/taskt/internal/session"
	"github.com/antopolskiy/taskt/internal/store"
	"github.com/antopolskiy/taskt/internal/timer"
)

type env struct {
	dir   string
	path  string
	auth  *authority.Service
	now   time.Time
	store *store.JSONFile
	sess  *session.Session
}

func (e *env) advance(d time.Duration) { e.now = e.now.Add(d) }

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{dir: t.TempDir(), now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	e.path = filepath.Join(e.dir, "tasks.json")
	e.auth = authority.NewService()
	e.auth.SetNow(func() time.Time { return e.now })
	e.sess = e.open(t)
	return e
}

func (e *env) open(t *testing.T) *session.Session {
	t.Helper()
	s, err := store.OpenJSONFile(e.path)
	if err != nil {
		t.Fatalf("OpenJSONFile: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	e.store = s
	sess, err := session.Open(context.Background(), session.Deps{Store: s, Authority: e.auth, LogDir: e.dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return sess
}

func mustCreate(t *testing.T, s *session.Session, content string) board.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), content)
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", content, err)
	}
	return task
}

func mustCommit(t *testing.T, s *session.Session, dragged, over string) {
	t.Helper()
	if _, err := s.Commit(context.Background(), dragged, over); err != nil {
		t.Fatalf("Commit(%s, %s): %v", dragged, over, err)
	}
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	var ce *clierr.Error
	if !errors.As(err, &ce) || ce.Code != code {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func TestOpenFirstRunPersistsFreshBoard(t *testing.T) {
	e := newEnv(t)

	if e.sess.Phase() != timer.Idle {
		t.Errorf("Phase = %v, want idle", e.sess.Phase())
	}
	snap, ok, err := store.LoadSnapshot(context.Background(), e.store)
	if err != nil || !ok {
		t.Fatalf("fresh board not persisted: %v, %v", ok, err)
	}
	if !slices.Equal(snap.Board.ColumnOrder, board.New().ColumnOrder) {
		t.Errorf("ColumnOrder = %v", snap.Board.ColumnOrder)
	}
}

func TestCreateTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sess.CreateTask(ctx, "   ")
	wantCode(t, err, clierr.InvalidInput)

	a := mustCreate(t, e.sess, "  first  ")
	b := mustCreate(t, e.sess, "second")
	if a.Content != "first" {
		t.Errorf("Content = %q, want trimmed", a.Content)
	}
	got := e.sess.Board().Columns[board.DefaultColumn].TaskIDs
	if !slices.Equal(got, []string{b.ID, a.ID}) {
		t.Errorf("queue = %v, want newest first", got)
	}

	entries, err := board.ReadLog(e.dir, board.LogFilterOptions{Action: board.ActionCreate})
	if err != nil || len(entries) != 2 {
		t.Errorf("create log entries = %d, %v; want 2", len(entries), err)
	}
}

func TestCommitIntoInProgressSelects(t *testing.T) {
	e := newEnv(t)
	a := mustCreate(t, e.sess, "a")

	moved, err := e.sess.Commit(context.Background(), a.ID, board.InProgressColumn)
	if err != nil || !moved {
		t.Fatalf("Commit = %v, %v", moved, err)
	}
	if e.sess.ActiveTaskID() != a.ID || e.sess.Phase() != timer.Selected {
		t.Errorf("after entering in-progress: active=%q phase=%v", e.sess.ActiveTaskID(), e.sess.Phase())
	}

	reopened := e.open(t)
	if reopened.ActiveTaskID() != a.ID {
		t.Errorf("persisted active = %q, want %q", reopened.ActiveTaskID(), a.ID)
	}
}

func TestCommitCancelledAndUnknown(t *testing.T) {
	e := newEnv(t)
	a := mustCreate(t, e.sess, "a")
	before := e.sess.Board()

	moved, err := e.sess.Commit(context.Background(), a.ID, a.ID)
	if err != nil || moved {
		t.Errorf("self drop = %v, %v; want false, nil", moved, err)
	}

	// Gestures naming unknown ids are dropped without surfacing an error.
	for _, g := range [][2]string{{"ghost", board.ColumnDone}, {a.ID, "nowhere"}} {
		moved, err := e.sess.Commit(context.Background(), g[0], g[1])
		if err != nil || moved {
			t.Errorf("Commit(%s, %s) = %v, %v; want false, nil", g[0], g[1], moved, err)
		}
	}

	after := e.sess.Board()
	if !slices.Equal(before.Columns[board.DefaultColumn].TaskIDs, after.Columns[board.DefaultColumn].TaskIDs) {
		t.Error("board changed by rejected gestures")
	}
}

func TestRunningTaskLeavesInProgress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")
	mustCommit(t, e.sess, a.ID, board.InProgressColumn)

	if err := e.sess.TogglePlayPause(ctx); err != nil {
		t.Fatalf("TogglePlayPause: %v", err)
	}
	e.advance(3 * time.Second)
	if got := e.sess.Poll(ctx); got != 3000 {
		t.Errorf("Poll = %d, want 3000", got)
	}

	mustCommit(t, e.sess, a.ID, board.ColumnDone)
	if e.sess.Phase() != timer.Idle {
		t.Fatalf("Phase = %v, want idle", e.sess.Phase())
	}
	if got := e.sess.Board().Tasks[a.ID].TimeSpentMs; got != 3000 {
		t.Errorf("TimeSpentMs = %d, want 3000 merged from pause", got)
	}
	if el, ok, _ := e.auth.QueryElapsed(ctx); ok && el.Running {
		t.Error("authority still running after task left in-progress")
	}
}

func TestSelectRequiresInProgress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")

	wantCode(t, e.sess.Select(ctx, "ghost"), clierr.TaskNotFound)
	wantCode(t, e.sess.Select(ctx, a.ID), clierr.InvalidInput)

	mustCommit(t, e.sess, a.ID, board.InProgressColumn)
	if err := e.sess.Select(ctx, a.ID); err != nil {
		t.Errorf("Select in-progress task: %v", err)
	}
}

func TestSelectHandsOffRunningTimer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")
	b := mustCreate(t, e.sess, "b")
	mustCommit(t, e.sess, a.ID, board.InProgressColumn)
	mustCommit(t, e.sess, b.ID, board.InProgressColumn)
	if err := e.sess.Select(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.sess.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}
	e.advance(2 * time.Second)

	if err := e.sess.Select(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	st := e.sess.Snapshot()
	if st.Selection.ActiveTaskID != b.ID || st.Selection.Running {
		t.Errorf("Selection = %+v, want b selected and stopped", st.Selection)
	}
	if got := st.Board.Tasks[a.ID].TimeSpentMs; got != 2000 {
		t.Errorf("a TimeSpentMs = %d, want 2000", got)
	}
}

func TestToggleWithoutSelection(t *testing.T) {
	e := newEnv(t)
	wantCode(t, e.sess.TogglePlayPause(context.Background()), clierr.NoTaskSelected)
}

func TestTogglePersistsPausedTime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")
	mustCommit(t, e.sess, a.ID, board.InProgressColumn)

	if err := e.sess.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}
	e.advance(1500 * time.Millisecond)
	if err := e.sess.PauseRunning(ctx); err != nil {
		t.Fatal(err)
	}
	if e.sess.Phase() != timer.Selected {
		t.Errorf("Phase = %v, want selected", e.sess.Phase())
	}

	reopened := e.open(t)
	if got := reopened.Display(); got != 1500 {
		t.Errorf("reopened Display = %d, want 1500", got)
	}

	entries, _ := board.ReadLog(e.dir, board.LogFilterOptions{})
	var actions []string
	for _, en := range entries {
		actions = append(actions, en.Action)
	}
	for _, want := range []string{board.ActionStart, board.ActionPause} {
		if !slices.Contains(actions, want) {
			t.Errorf("activity log missing %q: %v", want, actions)
		}
	}
}

func TestDeleteActiveRunningTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")
	mustCommit(t, e.sess, a.ID, board.InProgressColumn)
	if err := e.sess.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}

	wantCode(t, e.sess.DeleteTask(ctx, "ghost"), clierr.TaskNotFound)
	if err := e.sess.DeleteTask(ctx, a.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if e.sess.Phase() != timer.Idle {
		t.Errorf("Phase = %v, want idle", e.sess.Phase())
	}
	if _, ok := e.sess.Board().Tasks[a.ID]; ok {
		t.Error("task still on board")
	}
	if el, ok, _ := e.auth.QueryElapsed(ctx); ok && el.Running {
		t.Error("authority still running deleted task")
	}
}

func TestApplyElapsedIgnoresStale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := mustCreate(t, e.sess, "a")
	mustCommit(t, e.sess, a.ID, board.InProgressColumn)
	if err := e.sess.TogglePlayPause(ctx); err != nil {
		t.Fatal(err)
	}

	if e.sess.ApplyElapsed(timer.Elapsed{TaskID: "other", ElapsedMs: 99, Running: true}) {
		t.Error("stale result applied")
	}
	if !e.sess.ApplyElapsed(timer.Elapsed{TaskID: a.ID, ElapsedMs: 4321, Running: true}) {
		t.Error("current result rejected")
	}
	if got := e.sess.Display(); got != 4321 {
		t.Errorf("Display = %d, want 4321", got)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	e := newEnv(t)
	a := mustCreate(t, e.sess, "a")

	preview := e.sess.Preview(a.ID, board.InProgressColumn)
	if col, _ := preview.FindColumnOf(a.ID); col != board.InProgressColumn {
		t.Errorf("preview column = %q", col)
	}
	if col, _ := e.sess.Board().FindColumnOf(a.ID); col != board.DefaultColumn {
		t.Errorf("session board changed by Preview: %q", col)
	}
}

func TestReloadPicksUpExternalChange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.sess
	a := mustCreate(t, first, "a")
	mustCommit(t, first, a.ID, board.InProgressColumn)

	second := e.open(t)
	b := mustCreate(t, second, "from elsewhere")

	if err := first.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := first.Board().Tasks[b.ID]; !ok {
		t.Error("reloaded board missing external task")
	}
	if first.ActiveTaskID() != a.ID {
		t.Errorf("active = %q, want kept %q", first.ActiveTaskID(), a.ID)
	}
}

type failingStore struct{ store.DocStore }

func (failingStore) Save(context.Context) error { return errors.New("read-only filesystem") }

func TestPersistFailureIsRemembered(t *testing.T) {
	dir := t.TempDir()
	js, err := store.OpenJSONFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.Open(context.Background(), session.Deps{
		Store:     failingStore{js},
		Authority: authority.NewService(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.LastSaveError() == nil {
		t.Error("expected save error from first-run persist")
	}

	task, err := sess.CreateTask(context.Background(), "kept in memory")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, ok := sess.Board().Tasks[task.ID]; !ok {
		t.Error("optimistic create lost after save failure")
	}
}

func TestOpenInvalidSnapshotFallsBack(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	js, err := store.OpenJSONFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatal(err)
	}
	bad := board.New()
	col := bad.Columns[board.DefaultColumn]
	col.TaskIDs = []string{"missing-task"}
	bad = bad.WithColumn(col)
	if err := store.SaveSnapshot(ctx, js, bad, "missing-task"); err != nil {
		t.Fatal(err)
	}

	sess, err := session.Open(ctx, session.Deps{Store: js, Authority: authority.NewService()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := sess.Board().Columns[board.DefaultColumn].TaskIDs; len(got) != 0 {
		t.Errorf("fallback board queue = %v, want empty", got)
	}
	if sess.Phase() != timer.Idle {
		t.Errorf("Phase = %v, want idle", sess.Phase())
	}
}
