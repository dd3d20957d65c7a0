// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensor types produced by model loading.
//
// # Overview
//
// A [Type] is a fully resolved shape plus an element kind. Two element
// kinds exist:
//   - Float32: 32-bit floats (float16 weights are widened to it)
//   - Index: native-width integers (64-bit ONNX integers are narrowed to it)
//
// A [Tensor] is either a placeholder, sized for its type but holding no
// meaningful data (graph inputs), or materialized (weights).
//
// # Basic Usage
//
//	typ, err := tensor.NewType(tensor.Float32, tensor.Shape{2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w := tensor.New(typ)
//	copy(w.AsFloat32(), values)
package tensor
