package topology

import (
	"errors"
	"fmt"
)

// ErrNoLink is returned when two nodes are not adjacent
var ErrNoLink = errors.New("nodes are not adjacent")

// UnknownNodeError reports a node that does not exist in a Topology
type UnknownNodeError struct {
	Node string
}

// Error satisfies the error interface
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.Node)
}

// NoNeighborsError reports a dead end: a node with no links. It is only
// ever reported during training, where it ends the current episode.
type NoNeighborsError struct {
	Node string
}

// Error satisfies the error interface
func (e *NoNeighborsError) Error() string {
	return fmt.Sprintf("node %q has no neighbors", e.Node)
}

// IsUnknownNode returns whether an error reports an unknown node
func IsUnknownNode(err error) bool {
	var e *UnknownNodeError
	return errors.As(err, &e)
}

// IsNoLink returns whether an error reports two non-adjacent nodes
func IsNoLink(err error) bool {
	return errors.Is(err, ErrNoLink)
}
