package graph

import (
	"fmt"
	"strings"

	"github.com/born-ml/onnxifi/internal/tensor"
)

// Node is a single node of a Function. Nodes are immutable once created.
//
// Variables and constants carry a tensor payload; operator nodes carry
// their inputs and kind-specific parameters (see params.go).
type Node struct {
	name       string
	kind       Kind
	inputs     []*Node
	params     any
	payload    *tensor.Tensor
	visibility Visibility
}

// Name returns the node name.
func (n *Node) Name() string {
	return n.name
}

// Kind returns the node kind.
func (n *Node) Kind() Kind {
	return n.kind
}

// Inputs returns the node's operands in order.
// Optional operands that were omitted are nil.
func (n *Node) Inputs() []*Node {
	return n.inputs
}

// Params returns the kind-specific parameters, or nil.
func (n *Node) Params() any {
	return n.params
}

// Tensor returns the payload of a variable or constant, or nil.
func (n *Node) Tensor() *tensor.Tensor {
	return n.payload
}

// Visibility returns the visibility of a variable.
func (n *Node) Visibility() Visibility {
	return n.visibility
}

// IsVariable reports whether the node is a variable.
func (n *Node) IsVariable() bool {
	return n.kind == VariableKind
}

// String returns a one-line description of the node.
func (n *Node) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q", n.kind, n.name)
	switch n.kind {
	case VariableKind:
		fmt.Fprintf(&sb, " %s %s", n.visibility, n.payload.Type())
	case ConstantKind:
		fmt.Fprintf(&sb, " %s", n.payload.Type())
	default:
		names := make([]string, len(n.inputs))
		for i, in := range n.inputs {
			if in != nil {
				names[i] = in.name
			}
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(names, ", "))
	}
	return sb.String()
}
