package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// mlp implements a single-headed multi-layered perceptron. The same
// type serves as both the actor (bounded action head) and the critic
// (scalar value head) depending on its output activation.
type mlp struct {
	g      *G.ExprGraph
	layers []Layer
	input  *G.Node

	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for gobbing and cloning
	layerSizes  []int
	biases      []bool
	activations []*Activation
	prefix      string

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMLP creates and returns a new multi-layered perceptron with a
// single output head of size outputs. The graph g is populated with
// the MLP.
//
// The MLP has a number of layers equal to len(hiddenSizes) + 1. A
// final layer of size outputs, with a bias unit and the outputAct
// activation, is always added. For index i, hiddenSizes[i] is the
// number of nodes in hidden layer i; biases[i] is true if hidden
// layer i contains a bias unit; and activations[i] is the activation
// function of hidden layer i. The init parameter determines the
// weight initialization scheme, and prefix disambiguates node names
// when multiple networks share one graph.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*Activation,
	outputAct *Activation, init G.InitWFn,
	prefix string) (NeuralNet, error) {
	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName(prefix+"Input"), G.WithInit(G.Zeroes()))

	return NewMLPFromInputs([]*G.Node{input}, outputs, g, hiddenSizes,
		biases, activations, outputAct, init, prefix)
}

// NewMLPFromInputs returns a new MLP that uses specific graph nodes as
// its input. If multiple input nodes are given, they are first
// concatenated along the feature (column) dimension. This constructor
// allows networks to be composed, e.g. a critic taking separate state
// and action nodes, or a critic mounted directly on an actor's output.
func NewMLPFromInputs(inputs []*G.Node, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, activations []*Activation,
	outputAct *Activation, init G.InitWFn,
	prefix string) (NeuralNet, error) {
	// Ensure we have one activation per layer
	if len(hiddenSizes) != len(activations) {
		msg := "newmlp: invalid number of activations\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias bool per layer
	if len(hiddenSizes) != len(biases) {
		msg := "newmlp: invalid number of biases\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	// Concatenate inputs if necessary
	var input *G.Node
	if len(inputs) > 1 {
		input = G.Must(G.Concat(1, inputs...))
	} else {
		input = inputs[0]
	}

	if !input.IsMatrix() {
		return nil, fmt.Errorf("newmlp: input must be a matrix")
	}

	batch := input.Shape()[0]
	features := input.Shape()[1]

	// Add the final output layer
	layerSizes := make([]int, len(hiddenSizes), len(hiddenSizes)+1)
	copy(layerSizes, hiddenSizes)
	layerSizes = append(layerSizes, outputs)
	layerBiases := make([]bool, len(biases), len(biases)+1)
	copy(layerBiases, biases)
	layerBiases = append(layerBiases, true)
	layerActivations := make([]*Activation, len(activations),
		len(activations)+1)
	copy(layerActivations, activations)
	layerActivations = append(layerActivations, outputAct)

	layers := addfcLayers(g, layerSizes, layerBiases, layerActivations, init,
		features, prefix)

	network := mlp{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		layerSizes:  layerSizes,
		biases:      layerBiases,
		activations: layerActivations,
		prefix:      prefix,
	}
	_, err := network.fwd(input)
	if err != nil {
		return nil, fmt.Errorf("newmlp: could not compute forward pass: %v",
			err)
	}

	return &network, nil
}

// Graph returns the computational graph of the mlp
func (e *mlp) Graph() *G.ExprGraph {
	return e.g
}

// Clone clones an mlp to a new graph with the same batch size
func (e *mlp) Clone() (NeuralNet, error) {
	return e.CloneWithBatch(e.batchSize)
}

// CloneWithBatch clones an mlp to a new graph with a new input batch
// size
func (e *mlp) CloneWithBatch(batchSize int) (NeuralNet, error) {
	graph := G.NewGraph()

	// Create the input node
	inputShape := e.input.Shape()
	if !e.input.IsMatrix() {
		return nil, fmt.Errorf("clonewithbatch: invalid input type")
	}
	batchShape := append([]int{batchSize}, inputShape[1:]...)
	input := G.NewMatrix(
		graph,
		tensor.Float64,
		G.WithShape(batchShape...),
		G.WithName(e.prefix+"Input"),
		G.WithInit(G.Zeroes()),
	)

	return e.CloneWithInputsTo(1, []*G.Node{input}, graph)
}

// CloneWithInputsTo clones an mlp onto the graph g using the argument
// nodes as the network input. If multiple input nodes are given, they
// are first concatenated along axis.
func (e *mlp) CloneWithInputsTo(axis int, inputs []*G.Node,
	graph *G.ExprGraph) (NeuralNet, error) {
	// Ensure inputs share the same graph
	for _, input := range inputs {
		if input.Graph() != graph {
			return nil, fmt.Errorf("clonewithinputsto: not all inputs " +
				"have the same graph")
		}
	}

	// Concatenate inputs if necessary
	var input *G.Node
	if len(inputs) > 1 {
		input = G.Must(G.Concat(axis, inputs...))
	} else {
		input = inputs[0]
	}

	if !input.IsMatrix() {
		return nil, fmt.Errorf("clonewithinputsto: input must be a matrix " +
			"node")
	}

	// Copy fully connected layers
	l := make([]Layer, len(e.layers))
	for i := range e.layers {
		l[i] = e.layers[i].CloneTo(graph)
	}

	batchSize := input.Shape()[0]

	network := mlp{
		g:           graph,
		layers:      l,
		input:       input,
		numOutputs:  e.numOutputs,
		numInputs:   e.numInputs,
		batchSize:   batchSize,
		layerSizes:  e.layerSizes,
		biases:      e.biases,
		activations: e.activations,
		prefix:      e.prefix,
	}
	_, err := network.fwd(input)
	if err != nil {
		return nil, fmt.Errorf("clonewithinputsto: could not clone: %v", err)
	}

	return &network, nil
}

// BatchSize returns the number of inputs in an input batch
func (e *mlp) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single input vector
func (e *mlp) Features() int {
	return e.numInputs
}

// Outputs returns the number of outputs predicted per input vector
func (e *mlp) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass
func (e *mlp) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of the mlp to be equal to the weights of
// another NeuralNet
func (dest *mlp) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Polyak sets the weights of the mlp to a Polyak average between its
// existing weights and the weights of another NeuralNet:
//
//	θ_dest = τ*θ_source + (1-τ)*θ_dest
func (dest *mlp) Polyak(source NeuralNet, tau float64) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	for i := range nodes {
		weights := nodes[i].Value().(*tensor.Dense)
		sourceWeights := sourceNodes[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return err
		}

		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return err
		}

		var newWeights *tensor.Dense
		newWeights, err = weights.Add(sourceWeights)
		if err != nil {
			return err
		}

		err = G.Let(nodes[i], newWeights)
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the mlp
func (e *mlp) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		e.learnables = e.computeLearnables()
	}
	return e.learnables
}

// computeLearnables computes all the learnables for the network
func (e *mlp) computeLearnables() G.Nodes {
	learnables := make([]*G.Node, 0, 2*len(e.layers))

	for i := range e.layers {
		learnables = append(learnables, e.layers[i].Weights())
		if bias := e.layers[i].Bias(); bias != nil {
			learnables = append(learnables, bias)
		}
	}
	return G.Nodes(learnables)
}

// Model returns the learnable nodes with their gradients
func (e *mlp) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		e.model = e.computeModel()
	}
	return e.model
}

// computeModel computes the model for the network
func (e *mlp) computeModel() []G.ValueGrad {
	model := make([]G.ValueGrad, 0, 2*len(e.layers))
	for _, node := range e.Learnables() {
		model = append(model, node)
	}
	return model
}

// fwd performs the forward pass of the mlp on the input node
func (e *mlp) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Output returns the output of the mlp after the last graph run
func (e *mlp) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the mlp
func (e *mlp) Prediction() *G.Node {
	return e.prediction
}

// GobEncode implements the gob.GobEncoder interface
func (e *mlp) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(e.numOutputs); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number of " +
			"outputs")
	}

	if err := enc.Encode(e.numInputs); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode number of " +
			"inputs")
	}

	if err := enc.Encode(e.batchSize); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode batch size")
	}

	if err := enc.Encode(e.layerSizes); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode layer sizes")
	}

	if err := enc.Encode(e.biases); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode biases")
	}

	if err := enc.Encode(e.activations); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode activations")
	}

	if err := enc.Encode(e.prefix); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode prefix")
	}

	for i, layer := range e.layers {
		fc, ok := layer.(*fcLayer)
		if !ok {
			return nil, fmt.Errorf("gobencode: layer %v is not a fully "+
				"connected layer", i)
		}
		if err := enc.Encode(fc); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode layer %v: %v",
				i, err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *mlp) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var numOutputs int
	if err := dec.Decode(&numOutputs); err != nil {
		return fmt.Errorf("gobdecode: could not decode number of outputs")
	}

	var numInputs int
	if err := dec.Decode(&numInputs); err != nil {
		return fmt.Errorf("gobdecode: could not decode number of inputs")
	}

	var batchSize int
	if err := dec.Decode(&batchSize); err != nil {
		return fmt.Errorf("gobdecode: could not decode batch size")
	}

	var layerSizes []int
	if err := dec.Decode(&layerSizes); err != nil {
		return fmt.Errorf("gobdecode: could not decode layer sizes")
	}

	var biases []bool
	if err := dec.Decode(&biases); err != nil {
		return fmt.Errorf("gobdecode: could not decode biases")
	}

	var activations []*Activation
	if err := dec.Decode(&activations); err != nil {
		return fmt.Errorf("gobdecode: could not decode activations")
	}

	var prefix string
	if err := dec.Decode(&prefix); err != nil {
		return fmt.Errorf("gobdecode: could not decode prefix")
	}

	// The encoded layer specs include the output layer, which NewMLP
	// always appends
	last := len(layerSizes) - 1
	g := G.NewGraph()
	newNet, err := NewMLP(numInputs, batchSize, numOutputs, g,
		layerSizes[:last], biases[:last], activations[:last],
		activations[last], G.Zeroes(), prefix)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct new MLP: %v", err)
	}
	newMLP := newNet.(*mlp)

	for i := range newMLP.layers {
		if err := dec.Decode(newMLP.layers[i].(*fcLayer)); err != nil {
			return fmt.Errorf("gobdecode: could not decode layer %v: %v", i,
				err)
		}
	}

	*e = *newMLP
	return nil
}
