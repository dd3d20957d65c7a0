package operators

import (
	"github.com/born-ml/onnxifi/internal/graph"
)

// registerUtilityOps adds pass-through operators to the registry.
func (r *Registry) registerUtilityOps() {
	r.Register("Identity", handleIdentity)
	r.Register("Dropout", handleDropout)
}

// handleIdentity binds the output to the operand; no node is created.
func handleIdentity(_ *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	return single(inputs[0]), nil
}

// handleDropout is the identity at inference time. The optional mask
// output is left unbound.
func handleDropout(_ *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 3); err != nil {
		return nil, err
	}
	return single(inputs[0]), nil
}
