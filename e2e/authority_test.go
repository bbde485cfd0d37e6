package e2e_test

import (
	"context"
	"net"
	"net/http"
	"os/exec"
	"testing"
	"time"
)

// freeAddr returns a loopback address with a currently unused port.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

// startServe runs 'taskt serve' until the test ends.
func startServe(t *testing.T, dir, addr string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, binPath, "--dir", dir, "serve", "--addr", addr) //nolint:gosec // e2e test binary
	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("starting serve: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		_ = cmd.Wait()
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/healthz") //nolint:noctx // readiness probe
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("authority at %s did not become ready", addr)
}

func TestAuthority_TimerSurvivesAcrossCommands(t *testing.T) {
	addr := freeAddr(t)
	dir := initDir(t, "--authority", "http", "--addr", addr)
	startServe(t, dir, addr)

	task := mustAdd(t, dir, "Deep work")
	if r := runTaskt(t, dir, "move", task.ID, colInProgress); r.exitCode != 0 {
		t.Fatalf("move failed: %s", r.stderr)
	}
	if r := runTaskt(t, dir, "toggle"); r.exitCode != 0 {
		t.Fatalf("toggle (start) failed: %s", r.stderr)
	}

	time.Sleep(1200 * time.Millisecond)

	st := mustStatus(t, dir)
	if st.Phase != "running" {
		t.Fatalf("phase = %s, want running", st.Phase)
	}
	if st.ElapsedMs < 1000 {
		t.Errorf("elapsed = %dms, want >= 1000", st.ElapsedMs)
	}

	if r := runTaskt(t, dir, "toggle"); r.exitCode != 0 {
		t.Fatalf("toggle (pause) failed: %s", r.stderr)
	}
	st = mustStatus(t, dir)
	if st.Phase != "selected" {
		t.Errorf("phase after pause = %s, want selected", st.Phase)
	}

	items := mustList(t, dir, "--column", colInProgress)
	if len(items) != 1 || items[0].TimeSpentMs < 1000 {
		t.Errorf("banked time = %+v, want >= 1000ms", items)
	}
}

func TestAuthority_DoctorReportsUnreachable(t *testing.T) {
	dir := initDir(t, "--authority", "http", "--addr", freeAddr(t))
	r := runTaskt(t, dir, "doctor")
	if r.exitCode != 1 {
		t.Errorf("doctor exit = %d, want 1\n%s", r.exitCode, r.stdout)
	}
}
