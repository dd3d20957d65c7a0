package onnx_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/onnxifi/graph"
	"github.com/born-ml/onnxifi/onnx"
	"github.com/born-ml/onnxifi/tensor"
)

func message(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func str(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func varint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// floatInput encodes a ValueInfoProto of a float tensor.
func floatInput(name string, dims ...uint64) []byte {
	var shape []byte
	for _, d := range dims {
		shape = message(shape, 1, varint(nil, 1, d))
	}
	tensorType := message(varint(nil, 1, 1), 2, shape)
	return message(str(nil, 1, name), 2, message(nil, 1, tensorType))
}

// opModel encodes Y = opType(X, extra...) with X float[1,4].
func opModel(opType string, extra ...string) []byte {
	var node []byte
	node = str(node, 1, "X")
	for _, in := range extra {
		node = str(node, 1, in)
	}
	node = str(node, 2, "Y")
	node = str(node, 4, opType)

	var g []byte
	g = message(g, 1, node)
	g = message(g, 11, floatInput("X", 1, 4))
	g = message(g, 12, floatInput("Y", 1, 4))

	var m []byte
	m = varint(m, 1, 8)
	m = message(m, 7, g)
	return message(m, 8, varint(str(nil, 1, ""), 2, 13))
}

func float32Buffer(vs ...float32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.NativeEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func TestParse(t *testing.T) {
	fn := graph.NewFunction("main")
	bias := onnx.TensorDescriptor{
		Name:       "B",
		MemoryType: onnx.MemoryTypeCPU,
		DataType:   onnx.DataTypeFloat32,
		Dimensions: 2,
		Shape:      []uint64{1, 4},
		Buffer:     float32Buffer(1, 2, 3, 4),
	}

	loader, err := onnx.Parse(opModel("Add", "B"), []onnx.TensorDescriptor{bias}, fn)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := loader.InputNames(); len(got) != 1 || got[0] != "X" {
		t.Errorf("InputNames() = %v, want [X]", got)
	}
	if loader.OpsetVersion() != 13 {
		t.Errorf("OpsetVersion() = %d, want 13", loader.OpsetVersion())
	}

	y, ok := loader.Output("Y")
	if !ok {
		t.Fatal("output Y not resolved")
	}
	if y.Kind() != graph.AddNodeKind {
		t.Errorf("Y kind = %s, want Add", y.Kind())
	}
	b := y.Inputs()[1]
	if b.Kind() != graph.ConstantKind {
		t.Errorf("B kind = %s, want Constant", b.Kind())
	}
	if got := b.Tensor().AsFloat32(); got[3] != 4 {
		t.Errorf("B data = %v", got)
	}
}

func TestParseFailureLeavesFunction(t *testing.T) {
	fn := graph.NewFunction("main")
	gpu := onnx.TensorDescriptor{Name: "B", MemoryType: onnx.MemoryTypeCUDABuffer, DataType: onnx.DataTypeFloat32}

	loader, err := onnx.Parse(opModel("Add", "B"), []onnx.TensorDescriptor{gpu}, fn)
	if !errors.Is(err, onnx.ErrUnsupportedMemoryType) {
		t.Fatalf("Parse() error = %v, want ErrUnsupportedMemoryType", err)
	}
	if loader != nil {
		t.Error("Parse() returned a loader on failure")
	}
	if len(fn.Nodes()) != 0 {
		t.Errorf("function has %d nodes after a failed load", len(fn.Nodes()))
	}

	var le *onnx.LoadError
	if !errors.As(err, &le) || le.Stage != onnx.StageWeights || le.Name != "B" {
		t.Errorf("LoadError = %+v", le)
	}
}

func TestParseOperator(t *testing.T) {
	sig, err := onnx.ParseOperator(opModel("Relu"))
	if err != nil {
		t.Fatalf("ParseOperator() error = %v", err)
	}
	if sig.Kind != graph.ReluNodeKind || sig.Elem != tensor.Float32 {
		t.Errorf("ParseOperator() = %v", sig)
	}

	if _, err := onnx.ParseOperator(opModel("Gemm", "W")); !errors.Is(err, onnx.ErrUnknownOperator) {
		t.Errorf("ParseOperator(Gemm) error = %v, want ErrUnknownOperator", err)
	}
	if _, err := onnx.ParseOperator([]byte{0x0a}); !errors.Is(err, onnx.ErrMalformedModel) {
		t.Errorf("ParseOperator(garbage) error = %v, want ErrMalformedModel", err)
	}
}

func TestMaterialize(t *testing.T) {
	w, err := onnx.Materialize(onnx.TensorDescriptor{
		Name:       "w",
		MemoryType: onnx.MemoryTypeCPU,
		DataType:   onnx.DataTypeFloat32,
		Dimensions: 1,
		Shape:      []uint64{2},
		Buffer:     float32Buffer(0.5, -1),
	})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	defer w.Release()

	if !w.Shape().Equal(tensor.Shape{2}) || w.AsFloat32()[1] != -1 {
		t.Errorf("Materialize() = %v %v", w.Shape(), w.AsFloat32())
	}
}

func TestListSupportedOps(t *testing.T) {
	ops := onnx.ListSupportedOps()
	found := make(map[string]bool, len(ops))
	for _, op := range ops {
		found[op] = true
	}
	for _, op := range []string{"Conv", "Relu", "Softmax", "Gemm"} {
		if !found[op] {
			t.Errorf("ListSupportedOps() is missing %s", op)
		}
	}
}
