package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted host buffer.
// Constants that share a weight's storage take a reference instead of copying.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newTensorBuffer creates a new reference-counted buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (for Share).
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// Tensor owns a contiguous host buffer sized for its Type.
//
// A tensor is either shape-only (a placeholder whose contents are not
// meaningful until execution) or materialized (its contents are real data).
type Tensor struct {
	buffer  *tensorBuffer
	typ     Type
	hasData bool
}

// New allocates a zeroed, materialized tensor of the given type.
func New(typ Type) *Tensor {
	return &Tensor{
		buffer:  newTensorBuffer(typ.ByteSize()),
		typ:     typ,
		hasData: true,
	}
}

// NewPlaceholder allocates a shape-only tensor of the given type.
// The buffer is sized for the type but holds no valid data.
func NewPlaceholder(typ Type) *Tensor {
	t := New(typ)
	t.hasData = false
	return t
}

// Type returns the tensor's type.
func (t *Tensor) Type() Type {
	return t.typ
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.typ.Shape()
}

// Kind returns the tensor's element kind.
func (t *Tensor) Kind() ElemKind {
	return t.typ.kind
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.typ.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return t.typ.ByteSize()
}

// HasData reports whether the tensor holds materialized data.
func (t *Tensor) HasData() bool {
	return t.hasData
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (t *Tensor) Data() []byte {
	return t.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's kind is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	if t.typ.kind != Float32 {
		panic(fmt.Sprintf("tensor kind is %s, not float32", t.typ.kind))
	}
	data := t.buffer.data
	if len(data) == 0 {
		return []float32{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), t.NumElements())
}

// AsIndex interprets the data as []int.
// Panics if the tensor's kind is not Index.
func (t *Tensor) AsIndex() []int {
	if t.typ.kind != Index {
		panic(fmt.Sprintf("tensor kind is %s, not index", t.typ.kind))
	}
	data := t.buffer.data
	if len(data) == 0 {
		return []int{}
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Share returns a second handle to the same buffer.
// Each handle must be released independently.
func (t *Tensor) Share() *Tensor {
	t.buffer.addRef()
	return &Tensor{
		buffer:  t.buffer,
		typ:     t.typ,
		hasData: t.hasData,
	}
}

// Release drops this handle's reference to the buffer.
// The buffer is freed when the last handle is released.
func (t *Tensor) Release() {
	t.buffer.release()
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (t *Tensor) IsUnique() bool {
	return t.buffer.refCount.Load() == 1
}

// IsReleased reports whether the underlying buffer has been freed.
func (t *Tensor) IsReleased() bool {
	return t.buffer.refCount.Load() <= 0
}
