package reviews

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNoActiveEdit = errors.New("no review is being edited")

// ValidationError is raised locally, before any network call is issued.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}
