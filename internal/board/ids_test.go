package board_test

import (
	"errors"
	"testing"

	"github.com/antopolskiy/taskt/internal/board"
)

func TestShortID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"task-0123456789ab", "01234567"},
		{"task-abc", "abc"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := board.ShortID(tt.in); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveTaskID(t *testing.T) {
	b := board.New()
	b.Tasks["task-aaaa1111"] = board.Task{ID: "task-aaaa1111"}
	b.Tasks["task-aaaa2222"] = board.Task{ID: "task-aaaa2222"}
	b.Tasks["task-bbbb0000"] = board.Task{ID: "task-bbbb0000"}

	tests := []struct {
		ref     string
		want    string
		found   bool
		wantErr error
	}{
		{"task-aaaa1111", "task-aaaa1111", true, nil},
		{"bbbb", "task-bbbb0000", true, nil},
		{"task-bb", "task-bbbb0000", true, nil},
		{"aaaa2", "task-aaaa2222", true, nil},
		{"aaaa", "", false, board.ErrAmbiguous},
		{"zzz", "", false, nil},
		{"", "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, found, err := b.ResolveTaskID(tt.ref)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want || found != tt.found {
				t.Errorf("ResolveTaskID(%q) = %q, %v; want %q, %v", tt.ref, got, found, tt.want, tt.found)
			}
		})
	}
}
