// Package checkpointer implements Trackers which periodically save an
// agent during training
package checkpointer

import (
	"github.com/samuelfneumann/rlroute/experiment/tracker"
)

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps. A Checkpointer is registered with an agent like
// any other Tracker. Its Save method reports the first error that
// occurred while checkpointing.
type Checkpointer interface {
	tracker.Tracker

	// Filename returns the file of the checkpoint taken after a number
	// of episodes
	Filename(episodes int) string
}
