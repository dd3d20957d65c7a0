package onnx

import (
	"fmt"

	"github.com/born-ml/onnxifi/internal/tensor"
)

// elemKinds maps ONNX element types declared on graph values to tensor kinds.
// INT64 is narrowed to the native index width.
var elemKinds = map[int32]tensor.ElemKind{
	TensorProtoFloat: tensor.Float32,
	TensorProtoInt64: tensor.Index,
}

// ResolveType converts a declared value type into a tensor type.
// The shape is the declared dimension sequence; an empty sequence is a scalar.
func ResolveType(tp *TypeProto) (tensor.Type, error) {
	if tp == nil || tp.TensorType == nil {
		return tensor.Type{}, fmt.Errorf("%w: value has no tensor type", ErrMalformedModel)
	}
	tt := tp.TensorType

	kind, ok := elemKinds[tt.ElemType]
	if !ok {
		return tensor.Type{}, fmt.Errorf("%w: elem type %s", ErrUnsupportedElementKind, dataTypeName(tt.ElemType))
	}

	var shape tensor.Shape
	if tt.Shape != nil {
		shape = make(tensor.Shape, len(tt.Shape.Dims))
		for i, d := range tt.Shape.Dims {
			if d.DimParam != "" {
				return tensor.Type{}, fmt.Errorf("%w: dim %d is symbolic (%s)", ErrUnresolvedShape, i, d.DimParam)
			}
			if d.DimValue < 0 {
				return tensor.Type{}, fmt.Errorf("%w: dim %d is %d", ErrUnresolvedShape, i, d.DimValue)
			}
			shape[i] = int(d.DimValue)
		}
	}

	return tensor.NewType(kind, shape)
}

// dataTypeName returns the ONNX name of a data type for diagnostics.
func dataTypeName(dt int32) string {
	names := map[int32]string{
		TensorProtoUndefined: "UNDEFINED",
		TensorProtoFloat:     "FLOAT",
		TensorProtoUint8:     "UINT8",
		TensorProtoInt8:      "INT8",
		TensorProtoUint16:    "UINT16",
		TensorProtoInt16:     "INT16",
		TensorProtoInt32:     "INT32",
		TensorProtoInt64:     "INT64",
		TensorProtoString:    "STRING",
		TensorProtoBool:      "BOOL",
		TensorProtoFloat16:   "FLOAT16",
		TensorProtoDouble:    "DOUBLE",
		TensorProtoUint32:    "UINT32",
		TensorProtoUint64:    "UINT64",
	}
	if name, ok := names[dt]; ok {
		return name
	}
	return fmt.Sprintf("%d", dt)
}
