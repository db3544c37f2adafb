// Package network implements neural network function approximators
// using Gorgonia
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network whose forward pass lives in a
// Gorgonia computational graph. A NeuralNet holds no VM of its own; an
// external VM runs the graph. Use SetInput() to set the network input,
// run the VM, then read predictions with Output().
type NeuralNet interface {
	// Graph returns the computational graph containing the network
	Graph() *G.ExprGraph

	// Clone clones the network to a new graph with the same batch size
	Clone() (NeuralNet, error)

	// CloneWithBatch clones the network to a new graph with a new
	// input batch size
	CloneWithBatch(int) (NeuralNet, error)

	// CloneWithInputsTo clones the network onto the graph g, using the
	// argument nodes as the network input. Multiple input nodes are
	// concatenated along axis before being fed through the network.
	// This allows networks to be composed, e.g. mounting a critic on
	// top of an actor's output node.
	CloneWithInputsTo(axis int, inputs []*G.Node,
		g *G.ExprGraph) (NeuralNet, error)

	// BatchSize returns the number of inputs in an input batch
	BatchSize() int

	// Features returns the number of features in a single input vector
	Features() int

	// Outputs returns the number of outputs predicted per input vector
	Outputs() int

	// SetInput sets the value of the input node before running the
	// forward pass
	SetInput([]float64) error

	// Set sets the weights of the network to equal those of another
	// network
	Set(NeuralNet) error

	// Polyak sets the weights of the network to a Polyak average
	// between its existing weights and the weights of another network
	Polyak(NeuralNet, float64) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes with their gradients
	Model() []G.ValueGrad

	// Output returns the value of the prediction node after the last
	// run of the network's graph
	Output() G.Value

	// Prediction returns the node of the computational graph that
	// stores the network's output
	Prediction() *G.Node
}
