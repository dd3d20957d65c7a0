// Package onnx loads ONNX models into compiler graphs through the ONNXIFI
// model-ingestion path.
//
// A load reconciles three sources of type information: the value types
// declared by the graph, the externally supplied weight descriptors (which
// carry their own data type, shape and raw memory), and the tensor kinds
// the compiler accepts. Every graph input becomes a typed placeholder
// variable and every weight a fully materialized tensor; anything that
// cannot be represented is reported as an error.
//
// Key components:
//   - Decode: protobuf decoding of ModelProto
//   - ResolveType: declared value type to tensor.Type
//   - Materialize: TensorDescriptor to tensor.Tensor
//   - Parse: the end-to-end load into a graph.Function
//   - ParseOperator: single-operator classification for kernel dispatch
//
// Supported element types:
//   - FLOAT (float32)
//   - INT64 and UINT64, narrowed to the native index width
//   - FLOAT16 weights, widened to float32
//
// Example usage:
//
//	fn := graph.NewFunction("main")
//	loader, err := onnx.Parse(modelBytes, descriptors, fn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer loader.Close()
//
//	for _, v := range fn.Variables() {
//	    fmt.Println(v)
//	}
//
// All errors are recoverable and wrap one of the Err* sentinels; a failed
// load leaves the function unchanged.
package onnx
