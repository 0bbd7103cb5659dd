package timestep

import "fmt"

// Transition is a single transition of a routing episode. The agent at
// node Node, with features State, chose node Action, received Reward
// and ended up at node NextNode with features NextState.
//
// Discount is the discount applied to the value of NextState, and is
// zero for transitions which end an episode at the destination.
type Transition struct {
	Node      int
	State     []float64
	Action    int
	Reward    float64
	Discount  float64
	NextNode  int
	NextState []float64
}

// NewTransition returns a new Transition
func NewTransition(node int, state []float64, action int, reward,
	discount float64, nextNode int, nextState []float64) Transition {
	return Transition{
		Node:      node,
		State:     state,
		Action:    action,
		Reward:    reward,
		Discount:  discount,
		NextNode:  nextNode,
		NextState: nextState,
	}
}

// Terminal returns whether the transition ends its episode
func (t Transition) Terminal() bool {
	return t.Discount == 0
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | %v --(%v)--> %v  |  Reward: %.2f  |  "+
		"Discount: %.2f", t.Node, t.Action, t.NextNode, t.Reward, t.Discount)
}
