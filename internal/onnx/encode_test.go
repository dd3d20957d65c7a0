package onnx

import (
	"encoding/binary"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Test models are described with the structs below and encoded with
// protowire, so the decoder is exercised against the real wire format.

type testModel struct {
	irVersion int64
	opset     int64
	producer  string
	noGraph   bool
	graph     testGraph
}

type testGraph struct {
	name         string
	inputs       []testValue
	outputs      []testValue
	nodes        []testNode
	initializers []testTensor
}

type testValue struct {
	name     string
	elemType int32
	dims     []int64
	param    string // appended as a symbolic dim when set
	noType   bool
}

type testNode struct {
	name    string
	opType  string
	inputs  []string
	outputs []string
	attrs   []testAttr
}

type testAttr struct {
	name   string
	typ    int32
	f      float32
	i      int64
	s      string
	ints   []int64
	floats []float32
}

type testTensor struct {
	name     string
	dataType int32
	dims     []int64
	raw      []byte
	floats   []float32
	int64s   []int64
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendPackedVarints(b []byte, num protowire.Number, vs []int64) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return appendMessage(b, num, packed)
}

func appendPackedFloats(b []byte, num protowire.Number, vs []float32) []byte {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	return appendMessage(b, num, packed)
}

func (m testModel) encode() []byte {
	var b []byte
	b = appendVarint(b, 1, m.irVersion)
	if m.producer != "" {
		b = appendString(b, 2, m.producer)
	}
	if !m.noGraph {
		b = appendMessage(b, 7, m.graph.encode())
	}
	if m.opset != 0 {
		var opset []byte
		opset = appendString(opset, 1, "")
		opset = appendVarint(opset, 2, m.opset)
		b = appendMessage(b, 8, opset)
	}
	return b
}

func (g testGraph) encode() []byte {
	var b []byte
	for _, n := range g.nodes {
		b = appendMessage(b, 1, n.encode())
	}
	if g.name != "" {
		b = appendString(b, 2, g.name)
	}
	for _, t := range g.initializers {
		b = appendMessage(b, 5, t.encode())
	}
	for _, v := range g.inputs {
		b = appendMessage(b, 11, v.encode())
	}
	for _, v := range g.outputs {
		b = appendMessage(b, 12, v.encode())
	}
	return b
}

func (v testValue) encode() []byte {
	var b []byte
	b = appendString(b, 1, v.name)
	if v.noType {
		return b
	}

	var shape []byte
	for _, d := range v.dims {
		shape = appendMessage(shape, 1, appendVarint(nil, 1, d))
	}
	if v.param != "" {
		shape = appendMessage(shape, 1, appendString(nil, 2, v.param))
	}

	var tensorType []byte
	tensorType = appendVarint(tensorType, 1, int64(v.elemType))
	tensorType = appendMessage(tensorType, 2, shape)

	return appendMessage(b, 2, appendMessage(nil, 1, tensorType))
}

func (n testNode) encode() []byte {
	var b []byte
	for _, in := range n.inputs {
		b = appendString(b, 1, in)
	}
	for _, out := range n.outputs {
		b = appendString(b, 2, out)
	}
	if n.name != "" {
		b = appendString(b, 3, n.name)
	}
	b = appendString(b, 4, n.opType)
	for _, a := range n.attrs {
		b = appendMessage(b, 5, a.encode())
	}
	return b
}

func (a testAttr) encode() []byte {
	var b []byte
	b = appendString(b, 1, a.name)
	switch a.typ {
	case AttributeProtoFloat:
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(a.f))
	case AttributeProtoInt:
		b = appendVarint(b, 3, a.i)
	case AttributeProtoString:
		b = appendString(b, 4, a.s)
	case AttributeProtoFloats:
		b = appendPackedFloats(b, 7, a.floats)
	case AttributeProtoInts:
		b = appendPackedVarints(b, 8, a.ints)
	}
	return appendVarint(b, 20, int64(a.typ))
}

func (t testTensor) encode() []byte {
	var b []byte
	if len(t.dims) > 0 {
		b = appendPackedVarints(b, 1, t.dims)
	}
	b = appendVarint(b, 2, int64(t.dataType))
	if len(t.floats) > 0 {
		b = appendPackedFloats(b, 4, t.floats)
	}
	if len(t.int64s) > 0 {
		b = appendPackedVarints(b, 7, t.int64s)
	}
	b = appendString(b, 8, t.name)
	if len(t.raw) > 0 {
		b = appendMessage(b, 9, t.raw)
	}
	return b
}

func intAttr(name string, v int64) testAttr {
	return testAttr{name: name, typ: AttributeProtoInt, i: v}
}

func intsAttr(name string, vs ...int64) testAttr {
	return testAttr{name: name, typ: AttributeProtoInts, ints: vs}
}

func floatValue(name string, dims ...int64) testValue {
	return testValue{name: name, elemType: TensorProtoFloat, dims: dims}
}

// singleOpModel returns a model with one node of opType reading X and
// writing Y.
func singleOpModel(opType string) testModel {
	return testModel{
		irVersion: 7,
		opset:     13,
		graph: testGraph{
			inputs:  []testValue{floatValue("X", 1, 4)},
			outputs: []testValue{floatValue("Y", 1, 4)},
			nodes:   []testNode{{name: "op", opType: opType, inputs: []string{"X"}, outputs: []string{"Y"}}},
		},
	}
}

// float32Bytes encodes vs in the given byte order.
func float32Bytes(order binary.ByteOrder, vs ...float32) []byte {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		order.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// int64Bytes encodes vs in the given byte order.
func int64Bytes(order binary.ByteOrder, vs ...int64) []byte {
	b := make([]byte, 8*len(vs))
	for i, v := range vs {
		order.PutUint64(b[8*i:], uint64(v))
	}
	return b
}
