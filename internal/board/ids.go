package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	idPrefix   = "task-"
	shortIDLen = 8
)

// ErrAmbiguous is returned when a reference matches more than one task.
var ErrAmbiguous = errors.New("ambiguous task reference")

// ShortID returns the abbreviated form of a task ID used in listings.
func ShortID(id string) string {
	s := strings.TrimPrefix(id, idPrefix)
	if len(s) > shortIDLen {
		return s[:shortIDLen]
	}
	return s
}

// ResolveTaskID finds the task that ref names: an exact ID, or a unique
// prefix of the ID with or without the "task-" prefix. It reports false when
// nothing matches.
func (b Board) ResolveTaskID(ref string) (string, bool, error) {
	if ref == "" {
		return "", false, nil
	}
	if _, ok := b.Tasks[ref]; ok {
		return ref, true, nil
	}
	bare := strings.TrimPrefix(ref, idPrefix)
	var match string
	for id := range b.Tasks {
		if !strings.HasPrefix(strings.TrimPrefix(id, idPrefix), bare) {
			continue
		}
		if match != "" {
			return "", false, fmt.Errorf("%w: %q matches %s and %s", ErrAmbiguous, ref, match, id)
		}
		match = id
	}
	return match, match != "", nil
}
