package operators

import (
	"github.com/born-ml/onnxifi/internal/graph"
)

// registerActivations adds activation operators to the registry.
func (r *Registry) registerActivations() {
	r.Register("Relu", unary(graph.ReluNodeKind))
	r.Register("Sigmoid", unary(graph.SigmoidNodeKind))
	r.Register("Tanh", unary(graph.TanhNodeKind))
	r.Register("LeakyRelu", handleLeakyRelu)
	r.Register("Softmax", handleSoftmax)
}

func handleLeakyRelu(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	params := &graph.LeakyReluParams{Alpha: GetAttrFloat(node, "alpha", 0.01)}
	return single(ctx.Function.AddNode(node.Name, graph.LeakyReluNodeKind, params, inputs[0])), nil
}

// handleSoftmax reads the axis; its default moved from 1 to -1 in opset 13.
func handleSoftmax(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	defaultAxis := int64(1)
	if ctx.OpsetVersion >= 13 {
		defaultAxis = -1
	}
	params := &graph.AxisParams{Axis: int(GetAttrInt(node, "axis", defaultAxis))}
	return single(ctx.Function.AddNode(node.Name, graph.SoftMaxNodeKind, params, inputs[0])), nil
}
