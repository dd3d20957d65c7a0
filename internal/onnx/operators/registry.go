package operators

import (
	"fmt"
	"slices"

	"github.com/born-ml/onnxifi/internal/graph"
)

// OpHandler adds the graph nodes for one ONNX node and returns the values
// bound to the node's outputs, in order. A handler may return fewer values
// than the node declares; unbound trailing outputs stay undefined.
type OpHandler func(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error)

// Context provides the function under construction and model metadata.
type Context struct {
	Function     *graph.Function
	OpsetVersion int64
}

// Registry maps ONNX operator types to handler functions.
type Registry struct {
	handlers map[string]OpHandler
}

// NewRegistry creates a new operator registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]OpHandler),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerNNOps()
	r.registerShapeOps()
	r.registerUtilityOps()

	return r
}

// Register adds a custom operator handler.
func (r *Registry) Register(opType string, handler OpHandler) {
	r.handlers[opType] = handler
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	h, ok := r.handlers[opType]
	return h, ok
}

// Execute runs the handler for node.OpType.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	handler, ok := r.handlers[node.OpType]
	if !ok {
		return nil, fmt.Errorf("unsupported operator: %s", node.OpType)
	}
	return handler(ctx, node, inputs)
}

// SupportedOps returns all supported operator types, sorted.
func (r *Registry) SupportedOps() []string {
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// requireInputs checks the operand count and that the first minCount
// operands are present.
func requireInputs(node *Node, inputs []*graph.Node, minCount, maxCount int) error {
	if len(inputs) < minCount || len(inputs) > maxCount {
		if minCount == maxCount {
			return fmt.Errorf("%s requires %d inputs, got %d", node.OpType, minCount, len(inputs))
		}
		return fmt.Errorf("%s requires %d to %d inputs, got %d", node.OpType, minCount, maxCount, len(inputs))
	}
	for i := 0; i < minCount; i++ {
		if inputs[i] == nil {
			return fmt.Errorf("%s: input %d is required", node.OpType, i)
		}
	}
	return nil
}

func single(n *graph.Node) []*graph.Node {
	return []*graph.Node{n}
}

// unary returns a handler for a one-operand node without parameters.
func unary(kind graph.Kind) OpHandler {
	return func(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
		if err := requireInputs(node, inputs, 1, 1); err != nil {
			return nil, err
		}
		return single(ctx.Function.AddNode(node.Name, kind, nil, inputs[0])), nil
	}
}

// binary returns a handler for a two-operand node without parameters.
func binary(kind graph.Kind) OpHandler {
	return func(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
		if err := requireInputs(node, inputs, 2, 2); err != nil {
			return nil, err
		}
		return single(ctx.Function.AddNode(node.Name, kind, nil, inputs[0], inputs[1])), nil
	}
}
