package network

import (
	"encoding/gob"
	"fmt"
	"io"
)

// Save gob-encodes a NeuralNet's architecture and weights to w
func Save(w io.Writer, net NeuralNet) error {
	encodable, ok := net.(gob.GobEncoder)
	if !ok {
		return fmt.Errorf("save: network is not gob encodable")
	}

	enc := gob.NewEncoder(w)
	if err := enc.Encode(encodable); err != nil {
		return fmt.Errorf("save: could not encode network: %v", err)
	}
	return nil
}

// Load decodes a NeuralNet previously written with Save. The returned
// network lives on a fresh graph; use Set() to copy its weights into
// an existing network of the same architecture.
func Load(r io.Reader) (NeuralNet, error) {
	var net mlp
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&net); err != nil {
		return nil, fmt.Errorf("load: could not decode network: %v", err)
	}
	return &net, nil
}
