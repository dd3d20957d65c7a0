package onnx

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/onnxifi/internal/graph"
	"github.com/born-ml/onnxifi/internal/onnx/operators"
)

// SymbolTable resolves names that no node of the graph produces:
// graph inputs and weights.
type SymbolTable interface {
	// Lookup returns the node bound to name, or an error wrapping
	// ErrUnresolvedInput.
	Lookup(name string) (*graph.Node, error)
}

// Builder turns a decoded graph topology into function nodes.
// It returns the node bound to every value name the graph defines.
type Builder interface {
	Build(fn *graph.Function, g *GraphProto, opsetVersion int64, symbols SymbolTable) (map[string]*graph.Node, error)
}

// NodeBuilder is the default Builder. It visits nodes in dependency order and
// lowers each through an operator registry.
type NodeBuilder struct {
	Registry *operators.Registry
	Logger   *slog.Logger

	// SkipUnsupported drops nodes without a handler instead of failing.
	// Their outputs stay unbound.
	SkipUnsupported bool
}

// NewNodeBuilder creates a builder over the default registry plus customOps.
func NewNodeBuilder(customOps map[string]operators.OpHandler, logger *slog.Logger) *NodeBuilder {
	registry := operators.NewRegistry()
	for opType, handler := range customOps {
		registry.Register(opType, handler)
	}
	return &NodeBuilder{Registry: registry, Logger: logger}
}

// Build implements Builder.
func (b *NodeBuilder) Build(fn *graph.Function, g *GraphProto, opsetVersion int64, symbols SymbolTable) (map[string]*graph.Node, error) {
	logger := b.Logger
	if logger == nil {
		logger = discardLogger
	}
	if b.Registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if !b.SkipUnsupported {
		if err := validateOperators(g, b.Registry); err != nil {
			return nil, err
		}
	}

	values := make(map[string]*graph.Node)
	ctx := &operators.Context{Function: fn, OpsetVersion: opsetVersion}
	sorted := topologicalSort(g.Nodes)
	for i := range sorted {
		node := &sorted[i]
		opNode := nodeProtoToOperatorNode(node)
		if _, ok := b.Registry.Get(node.OpType); !ok {
			logger.Warn("skipping unsupported operator", "name", opNode.Name, "op", node.OpType)
			continue
		}

		inputs := make([]*graph.Node, len(node.Inputs))
		for j, name := range node.Inputs {
			if name == "" {
				continue // Optional input not provided
			}
			if v, ok := values[name]; ok {
				inputs[j] = v
				continue
			}
			v, err := symbols.Lookup(name)
			if err != nil {
				return nil, &LoadError{Stage: StageBuild, Name: opNode.Name, Err: err}
			}
			inputs[j] = v
		}

		outputs, err := b.Registry.Execute(ctx, opNode, inputs)
		if err != nil {
			return nil, &LoadError{Stage: StageBuild, Name: opNode.Name, Err: fmt.Errorf("%s: %w", node.OpType, err)}
		}
		for j, name := range node.Outputs {
			if j < len(outputs) && name != "" {
				values[name] = outputs[j]
			}
		}
		logger.Debug("built node", "name", opNode.Name, "op", node.OpType, "outputs", len(outputs))
	}

	return values, nil
}

// validateOperators checks that all operators are supported before any
// node is built. Unsupported types are reported once, in graph order.
func validateOperators(g *GraphProto, registry *operators.Registry) error {
	if registry == nil {
		return fmt.Errorf("registry is nil")
	}

	var unsupported []string
	seen := make(map[string]bool)
	for i := range g.Nodes {
		op := g.Nodes[i].OpType
		if _, ok := registry.Get(op); !ok && !seen[op] {
			seen[op] = true
			unsupported = append(unsupported, op)
		}
	}

	if len(unsupported) > 0 {
		return &LoadError{Stage: StageBuild, Err: fmt.Errorf("%w: %v", ErrUnsupportedOperator, unsupported)}
	}
	return nil
}

// nodeProtoToOperatorNode converts NodeProto to operators.Node.
// Unnamed nodes take the name of their first output.
func nodeProtoToOperatorNode(proto *NodeProto) *operators.Node {
	attrs := make([]operators.Attribute, len(proto.Attributes))
	for i := range proto.Attributes {
		attr := &proto.Attributes[i]
		attrs[i] = operators.Attribute{
			Name:    attr.Name,
			Type:    attr.Type,
			F:       attr.F,
			I:       attr.I,
			S:       attr.S,
			Floats:  attr.Floats,
			Ints:    attr.Ints,
			Strings: attr.Strings,
		}
	}
	name := proto.Name
	if name == "" && len(proto.Outputs) > 0 {
		name = proto.Outputs[0]
	}
	return &operators.Node{
		Name:       name,
		OpType:     proto.OpType,
		Inputs:     proto.Inputs,
		Outputs:    proto.Outputs,
		Attributes: attrs,
		Domain:     proto.Domain,
	}
}

// topologicalSort sorts nodes in execution order.
// Ensures dependencies are visited before dependents; declaration order
// breaks ties.
func topologicalSort(nodes []NodeProto) []NodeProto {
	outputToNode := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			outputToNode[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true

		for _, input := range nodes[i].Inputs {
			if depIdx, ok := outputToNode[input]; ok {
				visit(depIdx)
			}
		}

		result = append(result, nodes[i])
	}

	for i := range nodes {
		visit(i)
	}

	return result
}
