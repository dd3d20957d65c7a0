package onnx

import (
	internalonnx "github.com/born-ml/onnxifi/internal/onnx"
	"github.com/born-ml/onnxifi/tensor"
)

// TensorDescriptor describes a weight tensor owned by the host.
//
// The buffer must be host-addressable (MemoryTypeCPU) and hold elements in
// native byte order. It is never retained past the call it is passed to.
type TensorDescriptor = internalonnx.TensorDescriptor

// MemoryType tags where a descriptor's buffer lives.
type MemoryType = internalonnx.MemoryType

// ONNXIFI memory types. Only MemoryTypeCPU can be loaded.
const (
	MemoryTypeCPU             = internalonnx.MemoryTypeCPU
	MemoryTypeCUDABuffer      = internalonnx.MemoryTypeCUDABuffer
	MemoryTypeOpenCLBuffer    = internalonnx.MemoryTypeOpenCLBuffer
	MemoryTypeOpenGLESTexture = internalonnx.MemoryTypeOpenGLESTexture
	MemoryTypeD3DResource     = internalonnx.MemoryTypeD3DResource
)

// DataType tags the element type of a descriptor's buffer.
type DataType = internalonnx.DataType

// ONNXIFI data types. Float32 and Float16 load as float32 tensors;
// Int64 and Uint64 load as index tensors.
const (
	DataTypeUndefined = internalonnx.DataTypeUndefined
	DataTypeFloat32   = internalonnx.DataTypeFloat32
	DataTypeUint8     = internalonnx.DataTypeUint8
	DataTypeInt8      = internalonnx.DataTypeInt8
	DataTypeUint16    = internalonnx.DataTypeUint16
	DataTypeInt16     = internalonnx.DataTypeInt16
	DataTypeInt32     = internalonnx.DataTypeInt32
	DataTypeInt64     = internalonnx.DataTypeInt64
	DataTypeFloat16   = internalonnx.DataTypeFloat16
	DataTypeFloat64   = internalonnx.DataTypeFloat64
	DataTypeUint32    = internalonnx.DataTypeUint32
	DataTypeUint64    = internalonnx.DataTypeUint64
)

// Materialize copies a descriptor's data into a new tensor without
// loading a model.
func Materialize(d TensorDescriptor) (*tensor.Tensor, error) {
	return internalonnx.Materialize(d)
}

// OperatorSignature identifies a single operator for kernel dispatch.
type OperatorSignature = internalonnx.OperatorSignature

// Inspector classifies single-operator models against its own table.
type Inspector = internalonnx.Inspector

// NewInspector creates an inspector with the default table
// (Conv, Relu and Softmax over float32).
func NewInspector() *Inspector {
	return internalonnx.NewInspector()
}

// ParseOperator decodes a model that must contain exactly one node and
// returns that node's signature. It has no side effects.
func ParseOperator(model []byte) (OperatorSignature, error) {
	return internalonnx.ParseOperator(model)
}
