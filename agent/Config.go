package agent

import (
	"fmt"
	"strings"
)

// Config represents a configuration of an agent
type Config interface {
	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}

// ActionMasking determines which nodes an agent may choose to move to.
//
// Agents choose among every node of the topology, so an unmasked agent
// may choose a node which is not adjacent to its current node. Masking
// restricts or remaps these choices.
type ActionMasking int

const (
	// MaskNone allows any node to be chosen. Invalid hops are penalized
	// and the agent stays where it is.
	MaskNone ActionMasking = iota

	// MaskNeighbors only allows neighbors of the current node to be
	// chosen.
	MaskNeighbors

	// MaskModulo allows any node to be chosen, but remaps a node which
	// is not a neighbor of the current node to neighbors[node % degree].
	MaskModulo
)

func (m ActionMasking) String() string {
	switch m {
	case MaskNone:
		return "none"
	case MaskNeighbors:
		return "neighbors"
	case MaskModulo:
		return "modulo"
	default:
		return fmt.Sprintf("ActionMasking(%d)", int(m))
	}
}

// ParseActionMasking returns the ActionMasking named s
func ParseActionMasking(s string) (ActionMasking, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MaskNone, nil
	case "neighbors":
		return MaskNeighbors, nil
	case "modulo":
		return MaskModulo, nil
	default:
		return MaskNone, fmt.Errorf("unknown action masking %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (m ActionMasking) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *ActionMasking) UnmarshalText(text []byte) error {
	parsed, err := ParseActionMasking(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Mask maps a chosen node to the node actually moved to, given the
// neighbors of the current node. MaskNone returns the chosen node as is.
// Nodes without neighbors always keep the chosen node.
func (m ActionMasking) Mask(chosen int, neighbors []int) int {
	if m != MaskModulo || len(neighbors) == 0 {
		return chosen
	}

	for _, n := range neighbors {
		if n == chosen {
			return chosen
		}
	}
	return neighbors[chosen%len(neighbors)]
}
