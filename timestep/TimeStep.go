// Package timestep implements timesteps of the agent-topology interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// step of an episode, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep of a routing episode.
// Observation is the index of the node the agent is at after the step,
// and Action is the index of the node it tried to move to.
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Discount    float64
	Observation int
	Action      int
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o, a, n int) TimeStep {
	return TimeStep{t, r, d, o, a, n}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

// Type returns the type of the TimeStep
func (t *TimeStep) Type() StepType {
	return t.stepType
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Node: %v  |  Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Discount,
		t.Observation, t.Number)
}
