package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/antopolskiy/taskt/internal/board"
	"github.com/antopolskiy/taskt/internal/timer"
)

// DefaultTimeout bounds each authority request.
const DefaultTimeout = 2 * time.Second

// Client talks to a remote authority. Any transport failure or non-2xx
// status is returned as an error.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ timer.Authority = (*Client)(nil)

// NewClient creates a Client for addr, which may omit the scheme.
func NewClient(addr string, timeout time.Duration) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{BaseURL: base, HTTP: &http.Client{Timeout: timeout}}
}

// StartTimer implements timer.Authority.
func (c *Client) StartTimer(ctx context.Context, t board.Task) (board.Task, error) {
	var out board.Task
	if _, err := c.do(ctx, http.MethodPost, "/api/timer/start", t, &out); err != nil {
		return board.Task{}, err
	}
	return out, nil
}

// PauseTimer implements timer.Authority.
func (c *Client) PauseTimer(ctx context.Context) (*board.Task, error) {
	var out pauseResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/timer/pause", nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// QueryElapsed implements timer.Authority.
func (c *Client) QueryElapsed(ctx context.Context) (timer.Elapsed, bool, error) {
	var out timer.Elapsed
	status, err := c.do(ctx, http.MethodGet, "/api/timer/elapsed", nil, &out)
	if err != nil {
		return timer.Elapsed{}, false, err
	}
	if status == http.StatusNoContent {
		return timer.Elapsed{}, false, nil
	}
	return out, true, nil
}

// SyncTask implements timer.Authority.
func (c *Client) SyncTask(ctx context.Context, t board.Task) error {
	_, err := c.do(ctx, http.MethodPut, "/api/timer/task", t, nil)
	return err
}

// Ping checks that the authority is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		rd = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("authority %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("authority %s %s: %s: %s",
			method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
