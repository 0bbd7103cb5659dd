package checkpointer

import (
	"fmt"
	"path/filepath"

	ts "github.com/samuelfneumann/rlroute/timestep"
)

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable // Object to save
	err      error

	// Checkpoints are saved to dir/<prefix><episode><extension>
	dir       string
	prefix    string
	extension string
}

// NewNEpisode returns a checkpointer that saves object every n
// episodes. Each checkpoint is saved to its own file in dir, named by
// prefix and extension around the number of episodes completed, e.g.
// qtable100.bin, qtable200.bin, ...
func NewNEpisode(n int, object Serializable, dir, prefix,
	extension string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNEpisode: interval must be positive, "+
			"have(%v)", n)
	}
	if object == nil {
		return nil, fmt.Errorf("newNEpisode: nothing to checkpoint")
	}
	return &nEpisode{
		interval:  n,
		object:    object,
		dir:       dir,
		prefix:    prefix,
		extension: extension,
	}, nil
}

// Filename returns the name of the checkpoint taken after some number
// of episodes
func (n *nEpisode) Filename(episodes int) string {
	return filepath.Join(n.dir, fmt.Sprintf("%v%d%v", n.prefix, episodes,
		n.extension))
}

// Track checkpoints the Checkpointer's tracked object by calling
// its Save() method at the end of every n-th episode. Once a checkpoint
// fails no further checkpoints are taken.
func (n *nEpisode) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}

	n.episodes++
	if n.episodes%n.interval == 0 && n.err == nil {
		if err := n.object.Save(n.Filename(n.episodes)); err != nil {
			n.err = fmt.Errorf("checkpoint after episode %v: %w", n.episodes,
				err)
		}
	}
}

// Save returns the first error that occurred while checkpointing
func (n *nEpisode) Save() error {
	return n.err
}
