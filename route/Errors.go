package route

import (
	"errors"
	"fmt"
)

// NoPathError reports that a destination cannot be reached from a
// source in a topology
type NoPathError struct {
	Source      string
	Destination string
}

// Error satisfies the error interface
func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %q to %q", e.Source, e.Destination)
}

// IsNoPath returns whether an error reports an unreachable destination
func IsNoPath(err error) bool {
	var e *NoPathError
	return errors.As(err, &e)
}
