package onnx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/onnxifi/internal/parallel"
	"github.com/born-ml/onnxifi/internal/tensor"
	"github.com/x448/float16"
)

// MemoryType tags where a descriptor's buffer lives (ONNXIFI memory types).
type MemoryType uint32

// ONNXIFI memory types.
const (
	MemoryTypeCPU             MemoryType = 0
	MemoryTypeCUDABuffer      MemoryType = 1
	MemoryTypeOpenCLBuffer    MemoryType = 2
	MemoryTypeOpenGLESTexture MemoryType = 4
	MemoryTypeD3DResource     MemoryType = 0xD3D
)

// String returns the memory type name.
func (m MemoryType) String() string {
	switch m {
	case MemoryTypeCPU:
		return "cpu"
	case MemoryTypeCUDABuffer:
		return "cuda"
	case MemoryTypeOpenCLBuffer:
		return "opencl"
	case MemoryTypeOpenGLESTexture:
		return "opengles-texture-2d"
	case MemoryTypeD3DResource:
		return "d3d"
	default:
		return fmt.Sprintf("memory(%d)", uint32(m))
	}
}

// DataType tags the element type of a descriptor's buffer.
// Values match the ONNXIFI data types, which match ONNX TensorProto types.
type DataType uint32

// ONNXIFI data types.
const (
	DataTypeUndefined DataType = TensorProtoUndefined
	DataTypeFloat32   DataType = TensorProtoFloat
	DataTypeUint8     DataType = TensorProtoUint8
	DataTypeInt8      DataType = TensorProtoInt8
	DataTypeUint16    DataType = TensorProtoUint16
	DataTypeInt16     DataType = TensorProtoInt16
	DataTypeInt32     DataType = TensorProtoInt32
	DataTypeInt64     DataType = TensorProtoInt64
	DataTypeFloat16   DataType = TensorProtoFloat16
	DataTypeFloat64   DataType = TensorProtoDouble
	DataTypeUint32    DataType = TensorProtoUint32
	DataTypeUint64    DataType = TensorProtoUint64
)

// String returns the ONNX name of the data type.
func (d DataType) String() string {
	return dataTypeName(int32(d)) //nolint:gosec // G115: data types are small enums.
}

// TensorDescriptor describes an externally owned weight tensor.
//
// Buffer is a borrowed view of the caller's memory. It is read only while
// Materialize runs and is never retained.
type TensorDescriptor struct {
	Name       string
	MemoryType MemoryType
	DataType   DataType
	Dimensions uint32   // Number of leading Shape entries in use
	Shape      []uint64 // Dimension sizes
	Buffer     []byte   // Element data in native byte order
}

// weightConverter copies source elements [lo, hi) into a tensor of kind.
type weightConverter struct {
	kind    tensor.ElemKind
	srcSize int
	convert func(dst *tensor.Tensor, src []byte, lo, hi int, order binary.ByteOrder)
}

// weightConverters lists the supported weight data types.
// 64-bit integers are narrowed to the native index width; float16 is widened.
var weightConverters = map[DataType]weightConverter{
	DataTypeFloat32: {kind: tensor.Float32, srcSize: 4, convert: convertFloat32},
	DataTypeFloat16: {kind: tensor.Float32, srcSize: 2, convert: convertFloat16},
	DataTypeUint64:  {kind: tensor.Index, srcSize: 8, convert: convertUint64},
	DataTypeInt64:   {kind: tensor.Index, srcSize: 8, convert: convertInt64},
}

// convertConfig splits the conversion of large weights across CPUs.
var convertConfig = parallel.DefaultConfig()

func convertFloat32(dst *tensor.Tensor, src []byte, lo, hi int, order binary.ByteOrder) {
	out := dst.AsFloat32()
	for i := lo; i < hi; i++ {
		out[i] = math.Float32frombits(order.Uint32(src[4*i:]))
	}
}

func convertFloat16(dst *tensor.Tensor, src []byte, lo, hi int, order binary.ByteOrder) {
	out := dst.AsFloat32()
	for i := lo; i < hi; i++ {
		out[i] = float16.Frombits(order.Uint16(src[2*i:])).Float32()
	}
}

func convertUint64(dst *tensor.Tensor, src []byte, lo, hi int, order binary.ByteOrder) {
	out := dst.AsIndex()
	for i := lo; i < hi; i++ {
		out[i] = int(order.Uint64(src[8*i:])) //nolint:gosec // G115: narrowing to index width is intended.
	}
}

func convertInt64(dst *tensor.Tensor, src []byte, lo, hi int, order binary.ByteOrder) {
	out := dst.AsIndex()
	for i := lo; i < hi; i++ {
		out[i] = int(int64(order.Uint64(src[8*i:]))) //nolint:gosec // G115: narrowing to index width is intended.
	}
}

// elementCount returns the number of elements of shape, or false when it
// exceeds limit. The product is never computed past limit, so it cannot
// overflow.
func elementCount(shape tensor.Shape, limit int) (int, bool) {
	for _, d := range shape {
		if d == 0 {
			return 0, true
		}
	}
	count := 1
	for _, d := range shape {
		if count > limit/d {
			return 0, false
		}
		count *= d
	}
	if count > limit {
		return 0, false
	}
	return count, true
}

// Materialize copies a descriptor's data into a new tensor.
//
// Only host memory is accepted. The element count is taken from the first
// Dimensions entries of Shape, and the buffer must hold at least that many
// source elements.
func Materialize(d TensorDescriptor) (*tensor.Tensor, error) {
	if d.MemoryType != MemoryTypeCPU {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMemoryType, d.MemoryType)
	}
	if int(d.Dimensions) > len(d.Shape) {
		return nil, fmt.Errorf("%w: %d dimensions but %d shape entries", ErrMalformedDescriptor, d.Dimensions, len(d.Shape))
	}

	shape := make(tensor.Shape, d.Dimensions)
	for i := range shape {
		if d.Shape[i] > math.MaxInt32 {
			return nil, fmt.Errorf("%w: dim %d is %d", ErrMalformedDescriptor, i, d.Shape[i])
		}
		shape[i] = int(d.Shape[i])
	}

	conv, ok := weightConverters[d.DataType]
	if !ok {
		return nil, fmt.Errorf("%w: data type %s", ErrUnsupportedElementKind, d.DataType)
	}

	return materialize(conv, shape, d.Buffer, binary.NativeEndian)
}

// materialize sizes the destination from shape, checks src against it and
// runs the conversion loop.
func materialize(conv weightConverter, shape tensor.Shape, src []byte, order binary.ByteOrder) (*tensor.Tensor, error) {
	typ, err := tensor.NewType(conv.kind, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDescriptor, err)
	}

	n, ok := elementCount(shape, len(src)/conv.srcSize)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes for %v elements of %d bytes", ErrShortBuffer, len(src), shape, conv.srcSize)
	}

	t := tensor.New(typ)
	parallel.Ranges(n, func(lo, hi int) {
		conv.convert(t, src, lo, hi, order)
	}, convertConfig)
	return t, nil
}

// materializeInitializer converts a tensor embedded in the model.
// raw_data is little-endian; the legacy typed fields are also accepted.
func materializeInitializer(tp *TensorProto) (*tensor.Tensor, error) {
	shape := make(tensor.Shape, len(tp.Dims))
	for i, dim := range tp.Dims {
		if dim < 0 || dim > math.MaxInt32 {
			return nil, fmt.Errorf("%w: initializer dim %d is %d", ErrMalformedModel, i, dim)
		}
		shape[i] = int(dim)
	}

	dt := DataType(tp.DataType) //nolint:gosec // G115: data types are small enums.
	conv, ok := weightConverters[dt]
	if !ok {
		return nil, fmt.Errorf("%w: data type %s", ErrUnsupportedElementKind, dt)
	}

	if len(tp.RawData) > 0 {
		return materialize(conv, shape, tp.RawData, binary.LittleEndian)
	}

	// Legacy typed fields.
	typ, err := tensor.NewType(conv.kind, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedModel, err)
	}
	var have int
	switch dt {
	case DataTypeFloat32:
		have = len(tp.FloatData)
	case DataTypeFloat16:
		// float16 bit patterns are stored in int32_data.
		have = len(tp.Int32Data)
	default: // int64 and uint64 both use int64_data
		have = len(tp.Int64Data)
	}
	n, ok := elementCount(shape, have)
	if !ok {
		return nil, fmt.Errorf("%w: %d %s values for %v elements", ErrShortBuffer, have, dt, shape)
	}

	t := tensor.New(typ)
	switch dt {
	case DataTypeFloat32:
		copy(t.AsFloat32(), tp.FloatData[:n])
	case DataTypeFloat16:
		out := t.AsFloat32()
		for i := 0; i < n; i++ {
			out[i] = float16.Frombits(uint16(tp.Int32Data[i])).Float32() //nolint:gosec // G115: low 16 bits hold the value.
		}
	default:
		out := t.AsIndex()
		for i := 0; i < n; i++ {
			out[i] = int(tp.Int64Data[i])
		}
	}
	return t, nil
}
