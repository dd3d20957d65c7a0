package onnx

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// DecodeFile decodes an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func DecodeFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data)
}

// Decode decodes an ONNX model from its protobuf encoding.
// Any wire-format error is reported as ErrMalformedModel.
func Decode(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := readModelProto(data, model); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedModel, err)
	}
	return model, nil
}

// field is one decoded protobuf field. Exactly one of v or b is meaningful,
// depending on typ.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64 // varint, fixed32 or fixed64 value
	b   []byte // length-delimited payload
}

// walk calls fn for every top-level field of a message.
func walk(data []byte, fn func(f field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(data)
			f.v = uint64(v)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) want(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("field %d: wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

func (f field) bytes() ([]byte, error) {
	if err := f.want(protowire.BytesType); err != nil {
		return nil, err
	}
	return f.b, nil
}

func (f field) string() (string, error) {
	b, err := f.bytes()
	return string(b), err
}

func (f field) int64() (int64, error) {
	if err := f.want(protowire.VarintType); err != nil {
		return 0, err
	}
	return int64(f.v), nil //nolint:gosec // G115: protobuf int64 is two's complement.
}

func (f field) int32() (int32, error) {
	v, err := f.int64()
	return int32(v), err //nolint:gosec // G115: protobuf int32/enum fits in int32.
}

func (f field) float32() (float32, error) {
	if err := f.want(protowire.Fixed32Type); err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(f.v)), nil
}

// int64s decodes a repeated varint field, packed or not.
func (f field) int64s() ([]int64, error) {
	if f.typ == protowire.VarintType {
		return []int64{int64(f.v)}, nil //nolint:gosec // G115: protobuf int64 is two's complement.
	}
	data, err := f.bytes()
	if err != nil {
		return nil, err
	}
	var out []int64
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, fmt.Errorf("field %d: %w", f.num, protowire.ParseError(n))
		}
		out = append(out, int64(v)) //nolint:gosec // G115: protobuf int64 is two's complement.
		data = data[n:]
	}
	return out, nil
}

// float32s decodes a repeated float field, packed or not.
func (f field) float32s() ([]float32, error) {
	if f.typ == protowire.Fixed32Type {
		return []float32{math.Float32frombits(uint32(f.v))}, nil
	}
	data, err := f.bytes()
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("field %d: packed float length %d", f.num, len(data))
	}
	out := make([]float32, 0, len(data)/4)
	for len(data) > 0 {
		v, n := protowire.ConsumeFixed32(data)
		out = append(out, math.Float32frombits(v))
		data = data[n:]
	}
	return out, nil
}

// message decodes a length-delimited sub-message with read.
func message[T any](f field, read func([]byte, *T) error) (T, error) {
	var m T
	data, err := f.bytes()
	if err != nil {
		return m, err
	}
	err = read(data, &m)
	return m, err
}

func readModelProto(data []byte, m *ModelProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // ir_version
			m.IRVersion, err = f.int64()
		case 2: // producer_name
			m.ProducerName, err = f.string()
		case 3: // producer_version
			m.ProducerVersion, err = f.string()
		case 4: // domain
			m.Domain, err = f.string()
		case 5: // model_version
			m.ModelVersion, err = f.int64()
		case 6: // doc_string
			m.DocString, err = f.string()
		case 7: // graph
			var g GraphProto
			g, err = message(f, readGraphProto)
			m.Graph = &g
		case 8: // opset_import
			var opset OperatorSetID
			opset, err = message(f, readOperatorSetID)
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14: // metadata_props
			var entry StringStringEntry
			entry, err = message(f, readStringStringEntry)
			m.MetadataProps = append(m.MetadataProps, entry)
		}
		return err
	})
}

func readGraphProto(data []byte, m *GraphProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // node
			var node NodeProto
			node, err = message(f, readNodeProto)
			m.Nodes = append(m.Nodes, node)
		case 2: // name
			m.Name, err = f.string()
		case 5: // initializer
			var t TensorProto
			t, err = message(f, readTensorProto)
			m.Initializers = append(m.Initializers, t)
		case 10: // doc_string
			m.DocString, err = f.string()
		case 11: // input
			var vi ValueInfoProto
			vi, err = message(f, readValueInfoProto)
			m.Inputs = append(m.Inputs, vi)
		case 12: // output
			var vi ValueInfoProto
			vi, err = message(f, readValueInfoProto)
			m.Outputs = append(m.Outputs, vi)
		}
		return err
	})
}

func readNodeProto(data []byte, m *NodeProto) error {
	return walk(data, func(f field) (err error) {
		var s string
		switch f.num {
		case 1: // input
			s, err = f.string()
			m.Inputs = append(m.Inputs, s)
		case 2: // output
			s, err = f.string()
			m.Outputs = append(m.Outputs, s)
		case 3: // name
			m.Name, err = f.string()
		case 4: // op_type
			m.OpType, err = f.string()
		case 5: // attribute
			var attr AttributeProto
			attr, err = message(f, readAttributeProto)
			m.Attributes = append(m.Attributes, attr)
		case 7: // domain
			m.Domain, err = f.string()
		}
		return err
	})
}

func readTensorProto(data []byte, m *TensorProto) error {
	return walk(data, func(f field) (err error) {
		var ints []int64
		switch f.num {
		case 1: // dims
			ints, err = f.int64s()
			m.Dims = append(m.Dims, ints...)
		case 2: // data_type
			m.DataType, err = f.int32()
		case 4: // float_data
			var floats []float32
			floats, err = f.float32s()
			m.FloatData = append(m.FloatData, floats...)
		case 5: // int32_data
			ints, err = f.int64s()
			for _, v := range ints {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: int32_data holds int32 values.
			}
		case 7: // int64_data
			ints, err = f.int64s()
			m.Int64Data = append(m.Int64Data, ints...)
		case 8: // name
			m.Name, err = f.string()
		case 9: // raw_data
			m.RawData, err = f.bytes()
		}
		return err
	})
}

func readValueInfoProto(data []byte, m *ValueInfoProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // name
			m.Name, err = f.string()
		case 2: // type
			var tp TypeProto
			tp, err = message(f, readTypeProto)
			m.Type = &tp
		}
		return err
	})
}

func readTypeProto(data []byte, m *TypeProto) error {
	return walk(data, func(f field) (err error) {
		if f.num == 1 { // tensor_type
			var tt TensorTypeProto
			tt, err = message(f, readTensorTypeProto)
			m.TensorType = &tt
		}
		return err
	})
}

func readTensorTypeProto(data []byte, m *TensorTypeProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // elem_type
			m.ElemType, err = f.int32()
		case 2: // shape
			var shape TensorShapeProto
			shape, err = message(f, readTensorShapeProto)
			m.Shape = &shape
		}
		return err
	})
}

func readTensorShapeProto(data []byte, m *TensorShapeProto) error {
	return walk(data, func(f field) (err error) {
		if f.num == 1 { // dim
			var dim DimensionProto
			dim, err = message(f, readDimensionProto)
			m.Dims = append(m.Dims, dim)
		}
		return err
	})
}

func readDimensionProto(data []byte, m *DimensionProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // dim_value
			m.DimValue, err = f.int64()
		case 2: // dim_param
			m.DimParam, err = f.string()
		}
		return err
	})
}

func readAttributeProto(data []byte, m *AttributeProto) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // name
			m.Name, err = f.string()
		case 2: // f
			m.F, err = f.float32()
		case 3: // i
			m.I, err = f.int64()
		case 4: // s
			m.S, err = f.bytes()
		case 5: // t
			var t TensorProto
			t, err = message(f, readTensorProto)
			m.T = &t
		case 7: // floats
			var floats []float32
			floats, err = f.float32s()
			m.Floats = append(m.Floats, floats...)
		case 8: // ints
			var ints []int64
			ints, err = f.int64s()
			m.Ints = append(m.Ints, ints...)
		case 9: // strings
			var s []byte
			s, err = f.bytes()
			m.Strings = append(m.Strings, s)
		case 20: // type
			m.Type, err = f.int32()
		}
		return err
	})
}

func readOperatorSetID(data []byte, m *OperatorSetID) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // domain
			m.Domain, err = f.string()
		case 2: // version
			m.Version, err = f.int64()
		}
		return err
	})
}

func readStringStringEntry(data []byte, m *StringStringEntry) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // key
			m.Key, err = f.string()
		case 2: // value
			m.Value, err = f.string()
		}
		return err
	})
}
