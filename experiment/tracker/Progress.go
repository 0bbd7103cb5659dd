package tracker

import (
	"io"

	"github.com/schollz/progressbar/v3"

	ts "github.com/samuelfneumann/rlroute/timestep"
)

// Progress displays a progress bar which advances each time an episode
// finishes
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns a new Progress Tracker for a run of the given
// number of episodes which writes its bar to w
func NewProgress(w io.Writer, episodes int, description string) *Progress {
	bar := progressbar.NewOptions(
		episodes,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { io.WriteString(w, "\n") }),
	)
	return &Progress{bar: bar}
}

// Track advances the bar at the end of each episode
func (p *Progress) Track(t ts.TimeStep) {
	if t.Last() {
		p.bar.Add(1)
	}
}

// Save finishes the progress bar
func (p *Progress) Save() error {
	return p.bar.Finish()
}
