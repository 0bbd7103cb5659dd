// Package network implements neural network function approximators
// using Gorgonia
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a neural network which lives in a Gorgonia
// computational graph. A NeuralNet does not run its own graph: an
// external VM must be run on Graph() after calling SetInput() and before
// reading Output().
type NeuralNet interface {
	Graph() *G.ExprGraph
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Polyak(NeuralNet, float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Params() [][]float64
	Output() G.Value
	Prediction() *G.Node
}
