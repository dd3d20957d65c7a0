package tensor

import "fmt"

// Type is a fully resolved tensor type: a shape and an element kind.
// A Type is immutable; accessors return copies.
type Type struct {
	shape Shape
	kind  ElemKind
}

// NewType creates a tensor type. The shape is copied.
func NewType(kind ElemKind, shape Shape) (Type, error) {
	if err := shape.Validate(); err != nil {
		return Type{}, fmt.Errorf("invalid shape: %w", err)
	}
	return Type{shape: shape.Clone(), kind: kind}, nil
}

// Shape returns a copy of the type's shape.
func (t Type) Shape() Shape {
	return t.shape.Clone()
}

// Kind returns the element kind.
func (t Type) Kind() ElemKind {
	return t.kind
}

// Rank returns the number of dimensions.
func (t Type) Rank() int {
	return len(t.shape)
}

// NumElements returns the number of elements described by the type.
func (t Type) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the buffer size in bytes required by the type.
func (t Type) ByteSize() int {
	return t.NumElements() * t.kind.Size()
}

// Equal reports whether two types have the same kind and shape.
func (t Type) Equal(other Type) bool {
	return t.kind == other.kind && t.shape.Equal(other.shape)
}

// String returns the type as "kind[d0 d1 ...]".
func (t Type) String() string {
	return fmt.Sprintf("%s%v", t.kind, []int(t.shape))
}
