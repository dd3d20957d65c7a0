package onnx

import (
	"fmt"
	"maps"

	"github.com/born-ml/onnxifi/internal/graph"
	"github.com/born-ml/onnxifi/internal/tensor"
)

// OperatorSignature identifies a single operator for kernel dispatch.
type OperatorSignature struct {
	Kind graph.Kind
	Elem tensor.ElemKind
}

// String returns "Kind/elem", or "none" for the zero signature.
func (s OperatorSignature) String() string {
	if s.Kind == graph.InvalidKind {
		return "none"
	}
	return fmt.Sprintf("%s/%s", s.Kind, s.Elem)
}

// defaultSignatures maps ONNX operator types to signatures.
// Quantized operators use distinct ONNX op types; only float32 is mapped.
var defaultSignatures = map[string]OperatorSignature{
	"Conv":    {Kind: graph.ConvolutionNodeKind, Elem: tensor.Float32},
	"conv":    {Kind: graph.ConvolutionNodeKind, Elem: tensor.Float32}, // legacy spelling
	"Relu":    {Kind: graph.ReluNodeKind, Elem: tensor.Float32},
	"Softmax": {Kind: graph.SoftMaxNodeKind, Elem: tensor.Float32},
}

// Inspector classifies single-operator models. The zero value is not
// usable; create one with NewInspector.
type Inspector struct {
	signatures map[string]OperatorSignature
}

// NewInspector creates an inspector with the default signature table.
func NewInspector() *Inspector {
	return &Inspector{signatures: maps.Clone(defaultSignatures)}
}

// Register adds or replaces the signature of an operator type.
func (in *Inspector) Register(opType string, sig OperatorSignature) {
	in.signatures[opType] = sig
}

// Signature returns the signature of an operator type.
func (in *Inspector) Signature(opType string) (OperatorSignature, bool) {
	sig, ok := in.signatures[opType]
	return sig, ok
}

// ParseOperator decodes a model that must contain exactly one node and
// returns that node's signature. It builds nothing and has no side effects.
func (in *Inspector) ParseOperator(model []byte) (OperatorSignature, error) {
	proto, err := Decode(model)
	if err != nil {
		return OperatorSignature{}, err
	}

	var nodes []NodeProto
	if proto.Graph != nil {
		nodes = proto.Graph.Nodes
	}
	if len(nodes) != 1 {
		return OperatorSignature{}, fmt.Errorf("%w: got %d", ErrOperatorCount, len(nodes))
	}

	opType := nodes[0].OpType
	sig, ok := in.signatures[opType]
	if !ok {
		return OperatorSignature{}, fmt.Errorf("%w: %q", ErrUnknownOperator, opType)
	}
	return sig, nil
}

// ParseOperator classifies a single-operator model with the default table.
func ParseOperator(model []byte) (OperatorSignature, error) {
	return (&Inspector{signatures: defaultSignatures}).ParseOperator(model)
}
