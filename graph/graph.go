// Package graph provides the compiler graph that models are loaded into.
//
// A [Function] owns variables (graph inputs), constants (weights),
// operator nodes and Save nodes (outputs). Loads are transactional: take a
// [Mark] before mutating and [Function.Rollback] to it on failure.
package graph

import (
	"github.com/born-ml/onnxifi/internal/graph"
)

// Function is a graph under construction.
type Function = graph.Function

// Node is a single node of a Function.
type Node = graph.Node

// Mark records the size of a Function for rollback.
type Mark = graph.Mark

// Kind identifies a node in the compiler's node vocabulary.
type Kind = graph.Kind

// Visibility controls whether a variable is part of the external interface.
type Visibility = graph.Visibility

// Variable visibilities.
const (
	Private = graph.Private
	Public  = graph.Public
)

// Node kinds.
const (
	InvalidKind                = graph.InvalidKind
	VariableKind               = graph.VariableKind
	ConstantKind               = graph.ConstantKind
	SaveNodeKind               = graph.SaveNodeKind
	ConvolutionNodeKind        = graph.ConvolutionNodeKind
	MaxPoolNodeKind            = graph.MaxPoolNodeKind
	AvgPoolNodeKind            = graph.AvgPoolNodeKind
	BatchNormalizationNodeKind = graph.BatchNormalizationNodeKind
	FullyConnectedNodeKind     = graph.FullyConnectedNodeKind
	MatMulNodeKind             = graph.MatMulNodeKind
	ReluNodeKind               = graph.ReluNodeKind
	LeakyReluNodeKind          = graph.LeakyReluNodeKind
	SigmoidNodeKind            = graph.SigmoidNodeKind
	TanhNodeKind               = graph.TanhNodeKind
	SoftMaxNodeKind            = graph.SoftMaxNodeKind
	AddNodeKind                = graph.AddNodeKind
	SubNodeKind                = graph.SubNodeKind
	MulNodeKind                = graph.MulNodeKind
	DivNodeKind                = graph.DivNodeKind
	ReshapeNodeKind            = graph.ReshapeNodeKind
	TransposeNodeKind          = graph.TransposeNodeKind
	FlattenNodeKind            = graph.FlattenNodeKind
	ConcatNodeKind             = graph.ConcatNodeKind
)

// Operator parameters.
type (
	ConvParams           = graph.ConvParams
	PoolParams           = graph.PoolParams
	FullyConnectedParams = graph.FullyConnectedParams
	BatchNormParams      = graph.BatchNormParams
	AxisParams           = graph.AxisParams
	LeakyReluParams      = graph.LeakyReluParams
	ReshapeParams        = graph.ReshapeParams
	TransposeParams      = graph.TransposeParams
)

// ErrDuplicateSymbol is returned when a name is already taken in a function.
var ErrDuplicateSymbol = graph.ErrDuplicateSymbol

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return graph.NewFunction(name)
}
