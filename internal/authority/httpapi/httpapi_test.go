package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/antopolskiy/taskt/internal/authority"
	"github.com/antopolskiy/taskt/internal/board"
)

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHealthz(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := healthz()(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
}

func TestStartTimerRejectsMissingID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/timer/start", strings.NewReader(`{"content":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := startTimer(authority.NewService(), quietLogger())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestElapsedNoContentWhenNothingSelected(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/timer/elapsed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := queryElapsed(authority.NewService())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 got %d", rec.Code)
	}
}

func TestCreateTaskRequiresContent(t *testing.T) {
	srv := httptest.NewServer(NewServer(authority.NewService(), quietLogger()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/tasks", "application/json", strings.NewReader(`{"content":"  "}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/tasks", "application/json", strings.NewReader(`{"content":"write"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
}

func TestClientRoundTrip(t *testing.T) {
	svc := authority.NewService()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return now })

	srv := httptest.NewServer(NewServer(svc, quietLogger()))
	defer srv.Close()
	c := NewClient(strings.TrimPrefix(srv.URL, "http://"), time.Second)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, ok, err := c.QueryElapsed(ctx); ok || err != nil {
		t.Fatalf("QueryElapsed on empty authority = %v, %v", ok, err)
	}
	if p, err := c.PauseTimer(ctx); p != nil || err != nil {
		t.Fatalf("PauseTimer with nothing running = %v, %v", p, err)
	}

	started, err := c.StartTimer(ctx, board.Task{ID: "a", Content: "alpha", TimeSpentMs: 100})
	if err != nil || started.ID != "a" {
		t.Fatalf("StartTimer = %+v, %v", started, err)
	}
	now = now.Add(1500 * time.Millisecond)

	e, ok, err := c.QueryElapsed(ctx)
	if err != nil || !ok || e.TaskID != "a" || e.ElapsedMs != 1600 || !e.Running {
		t.Fatalf("QueryElapsed = %+v, %v, %v", e, ok, err)
	}

	paused, err := c.PauseTimer(ctx)
	if err != nil || paused == nil || paused.TimeSpentMs != 1600 {
		t.Fatalf("PauseTimer = %+v, %v", paused, err)
	}

	if err := c.SyncTask(ctx, board.Task{ID: "b", Content: "beta"}); err != nil {
		t.Fatalf("SyncTask: %v", err)
	}
	e, ok, _ = c.QueryElapsed(ctx)
	if !ok || e.TaskID != "b" || e.Running {
		t.Errorf("after sync QueryElapsed = %+v, %v", e, ok)
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, 200*time.Millisecond)
	if _, err := c.PauseTimer(context.Background()); err == nil {
		t.Error("expected error from closed server")
	}
	if _, _, err := c.QueryElapsed(context.Background()); err == nil {
		t.Error("expected error from closed server")
	}
}

func TestClientNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.SyncTask(context.Background(), board.Task{ID: "a"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("SyncTask err = %v, want boom", err)
	}
}
