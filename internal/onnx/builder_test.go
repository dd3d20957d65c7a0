package onnx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxifi/internal/graph"
	"github.com/born-ml/onnxifi/internal/onnx/operators"
	"github.com/born-ml/onnxifi/internal/tensor"
)

// mapSymbols is a SymbolTable over a fixed map.
type mapSymbols map[string]*graph.Node

func (m mapSymbols) Lookup(name string) (*graph.Node, error) {
	if n, ok := m[name]; ok {
		return n, nil
	}
	return nil, ErrUnresolvedInput
}

func TestTopologicalSort(t *testing.T) {
	// C depends on B, B depends on A; declared in reverse.
	nodes := []NodeProto{
		{Name: "C", OpType: "Add", Inputs: []string{"b_out"}, Outputs: []string{"c_out"}},
		{Name: "B", OpType: "Mul", Inputs: []string{"a_out"}, Outputs: []string{"b_out"}},
		{Name: "A", OpType: "Relu", Inputs: []string{"input"}, Outputs: []string{"a_out"}},
	}

	sorted := topologicalSort(nodes)
	require.Len(t, sorted, 3)
	assert.Equal(t, "A", sorted[0].Name)
	assert.Equal(t, "B", sorted[1].Name)
	assert.Equal(t, "C", sorted[2].Name)
}

func TestTopologicalSortKeepsIndependentOrder(t *testing.T) {
	nodes := []NodeProto{
		{Name: "x", OpType: "Relu", Inputs: []string{"in"}, Outputs: []string{"x_out"}},
		{Name: "y", OpType: "Relu", Inputs: []string{"in"}, Outputs: []string{"y_out"}},
		{Name: "z", OpType: "Add", Inputs: []string{"y_out", "x_out"}, Outputs: []string{"z_out"}},
	}

	sorted := topologicalSort(nodes)
	names := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	assert.Equal(t, []string{"x", "y", "z"}, names)
}

func TestValidateOperators(t *testing.T) {
	g := &GraphProto{Nodes: []NodeProto{
		{OpType: "Relu"}, {OpType: "Foo"}, {OpType: "Bar"}, {OpType: "Foo"},
	}}

	err := validateOperators(g, operators.NewRegistry())
	require.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), "[Foo Bar]")

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, StageBuild, le.Stage)

	require.NoError(t, validateOperators(&GraphProto{Nodes: []NodeProto{{OpType: "Relu"}}}, operators.NewRegistry()))
	require.Error(t, validateOperators(g, nil))
}

func TestNodeProtoToOperatorNode(t *testing.T) {
	proto := &NodeProto{
		OpType:  "Gemm",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"gemm_out"},
		Domain:  "ai.onnx",
		Attributes: []AttributeProto{
			{Name: "alpha", Type: AttributeProtoFloat, F: 0.5},
			{Name: "transB", Type: AttributeProtoInt, I: 1},
		},
	}

	node := nodeProtoToOperatorNode(proto)
	assert.Equal(t, "gemm_out", node.Name)
	assert.Equal(t, "Gemm", node.OpType)
	assert.Equal(t, "ai.onnx", node.Domain)
	assert.InDelta(t, 0.5, operators.GetAttrFloat(node, "alpha", 1), 1e-6)
	assert.Equal(t, int64(1), operators.GetAttrInt(node, "transB", 0))

	proto.Name = "gemm"
	assert.Equal(t, "gemm", nodeProtoToOperatorNode(proto).Name)
}

func TestNodeBuilderBuild(t *testing.T) {
	fn := graph.NewFunction("main")
	x, err := fn.CreateVariable("x", tensor.NewPlaceholder(mustType(t, tensor.Float32, 2, 2)), graph.Public)
	require.NoError(t, err)
	y, err := fn.CreateVariable("y", tensor.NewPlaceholder(mustType(t, tensor.Float32, 2, 2)), graph.Public)
	require.NoError(t, err)

	g := &GraphProto{Nodes: []NodeProto{
		{Name: "gemm", OpType: "Gemm", Inputs: []string{"x", "y", ""}, Outputs: []string{"out"},
			Attributes: []AttributeProto{{Name: "transB", Type: AttributeProtoInt, I: 1}}},
	}}

	values, err := NewNodeBuilder(nil, nil).Build(fn, g, 13, mapSymbols{"x": x, "y": y})
	require.NoError(t, err)

	out := values["out"]
	require.NotNil(t, out)
	assert.Equal(t, graph.FullyConnectedNodeKind, out.Kind())
	assert.Equal(t, &graph.FullyConnectedParams{Alpha: 1, Beta: 1, TransB: true}, out.Params())
	require.Len(t, out.Inputs(), 3)
	assert.Same(t, x, out.Inputs()[0])
	assert.Nil(t, out.Inputs()[2])
}

func TestNodeBuilderHandlerError(t *testing.T) {
	fn := graph.NewFunction("main")
	g := &GraphProto{Nodes: []NodeProto{
		{Name: "bad", OpType: "Relu", Inputs: []string{"x", "y"}, Outputs: []string{"out"}},
	}}
	x, err := fn.CreateVariable("x", tensor.NewPlaceholder(mustType(t, tensor.Float32)), graph.Public)
	require.NoError(t, err)

	_, err = NewNodeBuilder(nil, nil).Build(fn, g, 13, mapSymbols{"x": x, "y": x})
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, StageBuild, le.Stage)
	assert.Equal(t, "bad", le.Name)
	assert.Contains(t, err.Error(), "Relu")
}

func mustType(t *testing.T, kind tensor.ElemKind, dims ...int) tensor.Type {
	t.Helper()
	typ, err := tensor.NewType(kind, dims)
	require.NoError(t, err)
	return typ
}
