// Package onnx loads ONNX models into compiler graphs.
//
// A load takes the serialized model bytes plus the weight tensors the host
// supplies through ONNXIFI tensor descriptors. Graph inputs become public
// placeholder variables of a [graph.Function], weights become constants,
// each ONNX node is lowered to a graph node, and declared outputs become
// Save nodes.
//
// # Example Usage
//
//	import (
//	    "github.com/born-ml/onnxifi/graph"
//	    "github.com/born-ml/onnxifi/onnx"
//	)
//
//	modelBytes, _ := os.ReadFile("resnet18.onnx")
//	weights := []onnx.TensorDescriptor{{
//	    Name:       "conv1.weight",
//	    MemoryType: onnx.MemoryTypeCPU,
//	    DataType:   onnx.DataTypeFloat32,
//	    Dimensions: 4,
//	    Shape:      []uint64{64, 3, 7, 7},
//	    Buffer:     conv1Weight,
//	}}
//
//	fn := graph.NewFunction("resnet18")
//	loader, err := onnx.Parse(modelBytes, weights, fn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Inputs:", loader.InputNames())
//	fmt.Println("Outputs:", loader.OutputNames())
//
// A failed load returns a nil Loader and leaves the function untouched.
// Failures wrap one of the Err* values and carry a [*LoadError] naming the
// pipeline stage:
//
//	var le *onnx.LoadError
//	if errors.Is(err, onnx.ErrUnsupportedElementKind) && errors.As(err, &le) {
//	    fmt.Println("unsupported type in", le.Stage, le.Name)
//	}
//
// # Single-operator models
//
// [ParseOperator] classifies a model holding exactly one node without
// building anything, for kernel dispatch:
//
//	sig, err := onnx.ParseOperator(modelBytes)
//	// sig.Kind == graph.ConvolutionNodeKind, sig.Elem == tensor.Float32
//
// Use [ListSupportedOps] to get the operators the default builder can lower.
package onnx

import (
	"github.com/born-ml/onnxifi/graph"
	internalonnx "github.com/born-ml/onnxifi/internal/onnx"
)

// LoadOptions configures ONNX model loading behavior.
type LoadOptions = internalonnx.LoadOptions

// Loader is the result of a successful Parse.
type Loader = internalonnx.Loader

// Builder lowers a decoded graph topology into function nodes.
type Builder = internalonnx.Builder

// SymbolTable resolves graph inputs and weights for a Builder.
type SymbolTable = internalonnx.SymbolTable

// LoadError reports the pipeline stage and symbol a load failed on.
type LoadError = internalonnx.LoadError

// Stage names a step of the load pipeline.
type Stage = internalonnx.Stage

// Load pipeline stages.
const (
	StageDecode  = internalonnx.StageDecode
	StageInputs  = internalonnx.StageInputs
	StageWeights = internalonnx.StageWeights
	StageBuild   = internalonnx.StageBuild
	StageOutputs = internalonnx.StageOutputs
)

// Loader errors.
var (
	ErrMalformedModel         = internalonnx.ErrMalformedModel
	ErrUnsupportedElementKind = internalonnx.ErrUnsupportedElementKind
	ErrUnsupportedMemoryType  = internalonnx.ErrUnsupportedMemoryType
	ErrMalformedDescriptor    = internalonnx.ErrMalformedDescriptor
	ErrShortBuffer            = internalonnx.ErrShortBuffer
	ErrUnresolvedShape        = internalonnx.ErrUnresolvedShape
	ErrDuplicateName          = internalonnx.ErrDuplicateName
	ErrUnresolvedInput        = internalonnx.ErrUnresolvedInput
	ErrUnresolvedOutput       = internalonnx.ErrUnresolvedOutput
	ErrUnsupportedOperator    = internalonnx.ErrUnsupportedOperator
	ErrOperatorCount          = internalonnx.ErrOperatorCount
	ErrUnknownOperator        = internalonnx.ErrUnknownOperator
)

// DefaultLoadOptions returns the default options for loading ONNX models.
//
// Default configuration:
//   - Builder: the default NodeBuilder
//   - Logger: discard
func DefaultLoadOptions() LoadOptions {
	return internalonnx.DefaultLoadOptions()
}

// Parse loads a serialized ONNX model into fn.
//
// weights are read only during the call. On success the returned Loader
// exposes the model metadata, input variables and weights; on failure it
// is nil and fn is unchanged.
//
// For custom loading options, pass LoadOptions:
//
//	opts := onnx.DefaultLoadOptions()
//	opts.Logger = slog.Default()
//	loader, err := onnx.Parse(modelBytes, weights, fn, opts)
func Parse(model []byte, weights []TensorDescriptor, fn *graph.Function, opts ...LoadOptions) (*Loader, error) {
	return internalonnx.Parse(model, weights, fn, opts...)
}

// ModelInfo contains metadata about an ONNX model without loading weights.
//
// Use [GetModelInfo] to quickly inspect a model file before loading.
type ModelInfo = internalonnx.ModelInfo

// GetModelInfo extracts metadata from an ONNX file without loading the full model.
//
// Example:
//
//	info, err := onnx.GetModelInfo("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Producer: %s\n", info.ProducerName)
//	fmt.Printf("Opset: %d\n", info.OpsetVersion)
//	fmt.Printf("Inputs: %v\n", info.InputNames)
//	fmt.Printf("Operators: %v\n", info.OpTypes)
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// ListSupportedOps returns a list of all ONNX operators the default builder lowers.
func ListSupportedOps() []string {
	return internalonnx.ListSupportedOps()
}
