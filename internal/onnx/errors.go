package onnx

import (
	"errors"
	"fmt"
)

// Loader errors. All of them are recoverable: a failed load returns no
// result and leaves the target function as it was.
var (
	// ErrMalformedModel means the bytes are not a decodable ONNX model.
	ErrMalformedModel = errors.New("malformed model")

	// ErrUnsupportedElementKind means a declared or supplied element type
	// has no tensor kind to represent it.
	ErrUnsupportedElementKind = errors.New("unsupported element kind")

	// ErrUnsupportedMemoryType means weight memory is not host-addressable.
	ErrUnsupportedMemoryType = errors.New("unsupported memory type")

	ErrMalformedDescriptor = errors.New("malformed tensor descriptor")
	ErrShortBuffer         = errors.New("buffer shorter than tensor")
	ErrUnresolvedShape     = errors.New("shape is not fully resolved")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnresolvedInput     = errors.New("unresolved node input")
	ErrUnresolvedOutput    = errors.New("unresolved output")
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrOperatorCount means a single-operator model holds zero or several nodes.
	ErrOperatorCount = errors.New("model must contain exactly one operator")

	// ErrUnknownOperator means the operator has no entry in the signature table.
	ErrUnknownOperator = errors.New("unknown operator")
)

// Stage names a step of the load pipeline.
type Stage string

// Load pipeline stages.
const (
	StageDecode  Stage = "decode"
	StageInputs  Stage = "inputs"
	StageWeights Stage = "weights"
	StageBuild   Stage = "build"
	StageOutputs Stage = "outputs"
)

// LoadError reports the pipeline stage and the symbol a load failed on.
type LoadError struct {
	Stage Stage  // Pipeline step that failed
	Name  string // Input, weight, node or output name (may be empty)
	Err   error  // Underlying error, usually wrapping a sentinel above
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("onnx load: %s %q: %v", e.Stage, e.Name, e.Err)
	}
	return fmt.Sprintf("onnx load: %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
