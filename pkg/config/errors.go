package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in a config file, rather
// than stopping at the first, so `jobmon daemon` can report the whole
// list in one pass the way ConfigHandler did in the source project.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) asError() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
