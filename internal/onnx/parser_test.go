package onnx

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func addModel() testModel {
	return testModel{
		irVersion: 7,
		opset:     13,
		producer:  "onnxifi-test",
		graph: testGraph{
			name:    "add",
			inputs:  []testValue{floatValue("X", 2, 3), floatValue("Y", 2, 3)},
			outputs: []testValue{floatValue("Z", 2, 3)},
			nodes: []testNode{
				{name: "add0", opType: "Add", inputs: []string{"X", "Y"}, outputs: []string{"Z"}},
			},
		},
	}
}

func TestDecodeSimpleAdd(t *testing.T) {
	model, err := Decode(addModel().encode())
	require.NoError(t, err)

	assert.Equal(t, int64(7), model.IRVersion)
	assert.Equal(t, "onnxifi-test", model.ProducerName)
	assert.Equal(t, int64(13), model.opsetVersion())
	require.NotNil(t, model.Graph)
	assert.Equal(t, "add", model.Graph.Name)

	require.Len(t, model.Graph.Nodes, 1)
	node := model.Graph.Nodes[0]
	assert.Equal(t, "Add", node.OpType)
	assert.Equal(t, "add0", node.Name)
	assert.Equal(t, []string{"X", "Y"}, node.Inputs)
	assert.Equal(t, []string{"Z"}, node.Outputs)
}

func TestDecodeInputOutput(t *testing.T) {
	model, err := Decode(addModel().encode())
	require.NoError(t, err)

	require.Len(t, model.Graph.Inputs, 2)
	require.Len(t, model.Graph.Outputs, 1)

	input := model.Graph.Inputs[0]
	assert.Equal(t, "X", input.Name)
	require.NotNil(t, input.Type)
	require.NotNil(t, input.Type.TensorType)
	assert.Equal(t, int32(TensorProtoFloat), input.Type.TensorType.ElemType)
	require.NotNil(t, input.Type.TensorType.Shape)
	require.Len(t, input.Type.TensorType.Shape.Dims, 2)
	assert.Equal(t, int64(2), input.Type.TensorType.Shape.Dims[0].DimValue)
	assert.Equal(t, int64(3), input.Type.TensorType.Shape.Dims[1].DimValue)
}

func TestDecodeInitializer(t *testing.T) {
	raw := float32Bytes(binary.LittleEndian, 1, 2, 3, 4)
	m := testModel{graph: testGraph{initializers: []testTensor{
		{name: "W", dataType: TensorProtoFloat, dims: []int64{2, 2}, raw: raw},
		{name: "S", dataType: TensorProtoInt64, dims: []int64{2}, int64s: []int64{-1, 6}},
		{name: "F", dataType: TensorProtoFloat, dims: []int64{2}, floats: []float32{0.5, 1.5}},
	}}}

	model, err := Decode(m.encode())
	require.NoError(t, err)
	require.Len(t, model.Graph.Initializers, 3)

	w := model.Graph.Initializers[0]
	assert.Equal(t, "W", w.Name)
	assert.Equal(t, int32(TensorProtoFloat), w.DataType)
	assert.Equal(t, []int64{2, 2}, w.Dims)
	assert.Equal(t, raw, w.RawData)

	assert.Equal(t, []int64{-1, 6}, model.Graph.Initializers[1].Int64Data)
	assert.Equal(t, []float32{0.5, 1.5}, model.Graph.Initializers[2].FloatData)
}

func TestDecodeUnpackedDims(t *testing.T) {
	var tensor []byte
	tensor = appendVarint(tensor, 1, 3)
	tensor = appendVarint(tensor, 1, 5)
	tensor = appendVarint(tensor, 2, TensorProtoFloat)
	tensor = appendString(tensor, 8, "T")

	var g []byte
	g = appendMessage(g, 5, tensor)

	model, err := Decode(appendMessage(nil, 7, g))
	require.NoError(t, err)
	require.Len(t, model.Graph.Initializers, 1)
	assert.Equal(t, []int64{3, 5}, model.Graph.Initializers[0].Dims)
}

func TestDecodeAttributes(t *testing.T) {
	m := singleOpModel("Conv")
	m.graph.nodes[0].attrs = []testAttr{
		intsAttr("kernel_shape", 3, 3),
		intAttr("group", 2),
		{name: "alpha", typ: AttributeProtoFloat, f: 0.25},
		{name: "auto_pad", typ: AttributeProtoString, s: "NOTSET"},
		{name: "scales", typ: AttributeProtoFloats, floats: []float32{1, 2}},
	}

	model, err := Decode(m.encode())
	require.NoError(t, err)

	attrs := model.Graph.Nodes[0].Attributes
	require.Len(t, attrs, 5)
	assert.Equal(t, "kernel_shape", attrs[0].Name)
	assert.Equal(t, int32(AttributeProtoInts), attrs[0].Type)
	assert.Equal(t, []int64{3, 3}, attrs[0].Ints)
	assert.Equal(t, int64(2), attrs[1].I)
	assert.InDelta(t, 0.25, attrs[2].F, 1e-7)
	assert.Equal(t, []byte("NOTSET"), attrs[3].S)
	assert.Equal(t, []float32{1, 2}, attrs[4].Floats)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	b := addModel().encode()
	b = appendString(b, 99, "future field")
	b = protowire.AppendTag(b, 100, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 42)

	model, err := Decode(b)
	require.NoError(t, err)
	assert.Len(t, model.Graph.Nodes, 1)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated varint", []byte{0xff, 0xff, 0xff}},
		{"text", []byte("not an onnx model")},
		{"length past end", []byte{0x3a, 0x10, 0x01}},
		{"wrong wire type", appendVarint(nil, 7, 1)},
		{"truncated graph", addModel().encode()[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := Decode(tt.data)
			require.ErrorIs(t, err, ErrMalformedModel)
			assert.Nil(t, model)
		})
	}
}

func TestDecodeEmptyData(t *testing.T) {
	// An empty message is valid protobuf: every field takes its default.
	model, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, model.Graph)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.onnx")
	require.NoError(t, os.WriteFile(path, addModel().encode(), 0o600))

	model, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, model.Graph.Nodes, 1)

	info, err := GetModelInfo(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, info.InputNames)
	assert.Equal(t, []string{"Z"}, info.OutputNames)
	assert.Equal(t, []string{"Add"}, info.OpTypes)
	assert.Equal(t, int64(13), info.OpsetVersion)
}

func TestGetModelInfoEdgeFiles(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.onnx")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	info, err := GetModelInfo(empty)
	require.NoError(t, err)
	assert.Zero(t, info.NodeCount)

	garbage := filepath.Join(dir, "garbage.onnx")
	require.NoError(t, os.WriteFile(garbage, []byte{0xff, 0xff}, 0o600))
	_, err = GetModelInfo(garbage)
	require.ErrorIs(t, err, ErrMalformedModel)

	_, err = GetModelInfo(filepath.Join(dir, "missing.onnx"))
	require.Error(t, err)
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.onnx"))
	require.Error(t, err)
}

func TestModelInfoExcludesInitializers(t *testing.T) {
	m := addModel()
	m.graph.initializers = []testTensor{{name: "Y", dataType: TensorProtoFloat, dims: []int64{2, 3}, raw: make([]byte, 24)}}

	proto, err := Decode(m.encode())
	require.NoError(t, err)

	info := modelInfo(proto)
	assert.Equal(t, []string{"X"}, info.InputNames)
	assert.Equal(t, 1, info.WeightCount)
	assert.Equal(t, 1, info.NodeCount)
}
