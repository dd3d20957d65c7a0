package operators

import (
	"fmt"

	"github.com/born-ml/onnxifi/internal/graph"
	"github.com/born-ml/onnxifi/internal/tensor"
)

// registerShapeOps adds shape manipulation operators to the registry.
func (r *Registry) registerShapeOps() {
	r.Register("Reshape", handleReshape)
	r.Register("Transpose", handleTranspose)
	r.Register("Flatten", handleFlatten)
	r.Register("Concat", handleConcat)
}

// handleReshape reads the target shape from a constant second operand
// (opset >= 5) or from the "shape" attribute (older opsets).
func handleReshape(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 2); err != nil {
		return nil, err
	}

	var dims []int
	if len(inputs) == 2 && inputs[1] != nil {
		t := inputs[1].Tensor()
		if inputs[1].Kind() != graph.ConstantKind || t == nil || !t.HasData() {
			return nil, fmt.Errorf("reshape: shape operand %q must be a constant", inputs[1].Name())
		}
		if t.Kind() != tensor.Index {
			return nil, fmt.Errorf("reshape: shape operand has kind %s, want index", t.Kind())
		}
		dims = append(dims, t.AsIndex()...)
	} else {
		if !HasAttr(node, "shape") {
			return nil, fmt.Errorf("reshape: no shape operand or attribute")
		}
		dims = getAttrDims(node, "shape", nil)
	}

	params := &graph.ReshapeParams{Dims: dims}
	return single(ctx.Function.AddNode(node.Name, graph.ReshapeNodeKind, params, inputs[0])), nil
}

func handleTranspose(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	params := &graph.TransposeParams{Perm: getAttrDims(node, "perm", nil)}
	return single(ctx.Function.AddNode(node.Name, graph.TransposeNodeKind, params, inputs[0])), nil
}

func handleFlatten(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	params := &graph.AxisParams{Axis: int(GetAttrInt(node, "axis", 1))}
	return single(ctx.Function.AddNode(node.Name, graph.FlattenNodeKind, params, inputs[0])), nil
}

func handleConcat(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("concat requires at least 1 input")
	}
	if err := requireInputs(node, inputs, len(inputs), len(inputs)); err != nil {
		return nil, err
	}
	if !HasAttr(node, "axis") {
		return nil, fmt.Errorf("concat: axis is required")
	}
	params := &graph.AxisParams{Axis: int(GetAttrInt(node, "axis", 0))}
	return single(ctx.Function.AddNode(node.Name, graph.ConcatNodeKind, params, inputs...)), nil
}
