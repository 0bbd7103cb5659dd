package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer is a single layer of a feed forward neural network
type Layer interface {
	fwd(x *G.Node) (*G.Node, error)
	CloneTo(g *G.ExprGraph) Layer
	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// addFCLayers adds fully connected layers of the given sizes to g. The
// first layer takes features inputs.
func addFCLayers(g *G.ExprGraph, features int, sizes []int, biases []bool,
	activations []*Activation, init G.InitWFn) []Layer {
	layers := make([]Layer, len(sizes))

	in := features
	for i, out := range sizes {
		weights := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(in, out),
			G.WithName(fmt.Sprintf("L%dW", i)),
			G.WithInit(init),
		)

		var bias *G.Node
		if biases[i] {
			bias = G.NewMatrix(
				g,
				tensor.Float64,
				G.WithShape(1, out),
				G.WithName(fmt.Sprintf("L%dB", i)),
				G.WithInit(G.Zeroes()),
			)
		}

		layers[i] = &fcLayer{weights: weights, bias: bias, act: activations[i]}
		in = out
	}
	return layers
}

// Fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	if f.Weights() != nil {
		x = G.Must(G.Mul(x, f.Weights()))
	}
	if f.Bias() != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.Bias(), nil, []byte{0}))
	}
	if f.Activation() == nil {
		return x, nil
	}
	return f.Activation().fwd(x)
}

// CloneTo clones an fcLayer to a new computational graph. The values of
// the cloned weights are copies, so the two layers do not share memory.
func (f *fcLayer) CloneTo(g *G.ExprGraph) Layer {
	return &fcLayer{
		weights: cloneParam(g, f.Weights()),
		bias:    cloneParam(g, f.Bias()),
		act:     f.act,
	}
}

// cloneParam creates a copy of a parameter node in graph g
func cloneParam(g *G.ExprGraph, n *G.Node) *G.Node {
	if n == nil {
		return nil
	}

	value := n.Value().(*tensor.Dense).Clone().(*tensor.Dense)
	return G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(n.Shape()...),
		G.WithName(n.Name()),
		G.WithValue(value),
	)
}

func (f *fcLayer) Activation() *Activation {
	return f.act
}

func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

func (f *fcLayer) Weights() *G.Node {
	return f.weights
}
