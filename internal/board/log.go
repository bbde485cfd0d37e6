package board

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const logFileName = "activity.jsonl"

// Logged actions.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
	ActionMove   = "move"
	ActionSelect = "select"
	ActionStart  = "start"
	ActionPause  = "pause"
	ActionIdle   = "idle"
)

// LogEntry is a single line of the activity log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id"`
	Detail    string    `json:"detail,omitempty"`
}

// LogFilterOptions narrows ReadLog results.
type LogFilterOptions struct {
	Since  time.Time
	Action string
	TaskID string
	Limit  int // keep the most recent N entries
}

// AppendLog appends an entry to the activity log in dir.
func AppendLog(dir string, entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // path from config dir
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}
	return nil
}

// LogMutation records a mutation, ignoring failures.
func LogMutation(dir, action, taskID, detail string) {
	_ = AppendLog(dir, LogEntry{
		Timestamp: time.Now(),
		Action:    action,
		TaskID:    taskID,
		Detail:    detail,
	})
}

// ReadLog returns log entries matching opts in chronological order.
// A missing log file yields no entries. Malformed lines are skipped.
func ReadLog(dir string, opts LogFilterOptions) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(dir, logFileName)) //nolint:gosec // path from config dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if !opts.Since.IsZero() && e.Timestamp.Before(opts.Since) {
			continue
		}
		if opts.Action != "" && e.Action != opts.Action {
			continue
		}
		if opts.TaskID != "" && e.TaskID != opts.TaskID {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[len(entries)-opts.Limit:]
	}
	return entries, nil
}
