package operators

import (
	"github.com/born-ml/onnxifi/internal/graph"
)

// registerMathOps adds arithmetic and matrix operators to the registry.
func (r *Registry) registerMathOps() {
	r.Register("Add", binary(graph.AddNodeKind))
	r.Register("Sub", binary(graph.SubNodeKind))
	r.Register("Mul", binary(graph.MulNodeKind))
	r.Register("Div", binary(graph.DivNodeKind))
	r.Register("MatMul", binary(graph.MatMulNodeKind))
	r.Register("Gemm", handleGemm)
}

// handleGemm maps Gemm (alpha*A'*B' + beta*C) to a FullyConnected node.
func handleGemm(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 2, 3); err != nil {
		return nil, err
	}
	params := &graph.FullyConnectedParams{
		Alpha:  GetAttrFloat(node, "alpha", 1.0),
		Beta:   GetAttrFloat(node, "beta", 1.0),
		TransA: GetAttrInt(node, "transA", 0) != 0,
		TransB: GetAttrInt(node, "transB", 0) != 0,
	}
	return single(ctx.Function.AddNode(node.Name, graph.FullyConnectedNodeKind, params, inputs...)), nil
}
