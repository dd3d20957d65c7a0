// Package tensor provides the tensor types the loader hands to the graph:
// element kinds, shapes, resolved tensor types and host-resident buffers.
package tensor

import "unsafe"

// ElemKind represents the runtime element type of a tensor.
type ElemKind int

// Supported element kinds.
const (
	Float32 ElemKind = iota

	// Index is the native index width of the process (Go int).
	// 64-bit integers coming from a model are narrowed to it.
	// TODO: add a dedicated Int64 kind once the graph consumers accept one.
	Index
)

// Size returns the byte size of one element of the kind.
func (k ElemKind) Size() int {
	switch k {
	case Float32:
		return 4
	case Index:
		return int(unsafe.Sizeof(int(0)))
	default:
		panic("unknown element kind")
	}
}

// String returns a human-readable name for the element kind.
func (k ElemKind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Index:
		return "index"
	default:
		return "unknown"
	}
}
