// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/onnxifi/internal/tensor"
)

// Type aliases for public API

// ElemKind is the element kind of a tensor.
type ElemKind = tensor.ElemKind

// Element kinds.
const (
	Float32 = tensor.Float32
	Index   = tensor.Index
)

// Shape is a list of non-negative dimension sizes. An empty shape is a scalar.
type Shape = tensor.Shape

// Type is an immutable shape and element kind.
type Type = tensor.Type

// Tensor is a reference-counted host buffer with a Type.
type Tensor = tensor.Tensor

// NewType creates a tensor type. The shape is copied.
func NewType(kind ElemKind, shape Shape) (Type, error) {
	return tensor.NewType(kind, shape)
}

// New allocates a zeroed, materialized tensor.
func New(typ Type) *Tensor {
	return tensor.New(typ)
}

// NewPlaceholder allocates a shape-only tensor.
func NewPlaceholder(typ Type) *Tensor {
	return tensor.NewPlaceholder(typ)
}
