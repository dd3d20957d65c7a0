package graph

// Kind identifies a node in the compiler's node vocabulary.
type Kind int

// Node kinds.
const (
	// InvalidKind is the zero Kind; no node is created with it.
	InvalidKind Kind = iota

	VariableKind
	ConstantKind
	SaveNodeKind

	ConvolutionNodeKind
	MaxPoolNodeKind
	AvgPoolNodeKind
	BatchNormalizationNodeKind
	FullyConnectedNodeKind
	MatMulNodeKind

	ReluNodeKind
	LeakyReluNodeKind
	SigmoidNodeKind
	TanhNodeKind
	SoftMaxNodeKind

	AddNodeKind
	SubNodeKind
	MulNodeKind
	DivNodeKind

	ReshapeNodeKind
	TransposeNodeKind
	FlattenNodeKind
	ConcatNodeKind
)

var kindNames = map[Kind]string{
	InvalidKind:                "Invalid",
	VariableKind:               "Variable",
	ConstantKind:               "Constant",
	SaveNodeKind:               "Save",
	ConvolutionNodeKind:        "Convolution",
	MaxPoolNodeKind:            "MaxPool",
	AvgPoolNodeKind:            "AvgPool",
	BatchNormalizationNodeKind: "BatchNormalization",
	FullyConnectedNodeKind:     "FullyConnected",
	MatMulNodeKind:             "MatMul",
	ReluNodeKind:               "Relu",
	LeakyReluNodeKind:          "LeakyRelu",
	SigmoidNodeKind:            "Sigmoid",
	TanhNodeKind:               "Tanh",
	SoftMaxNodeKind:            "SoftMax",
	AddNodeKind:                "Add",
	SubNodeKind:                "Sub",
	MulNodeKind:                "Mul",
	DivNodeKind:                "Div",
	ReshapeNodeKind:            "Reshape",
	TransposeNodeKind:          "Transpose",
	FlattenNodeKind:            "Flatten",
	ConcatNodeKind:             "Concat",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Visibility controls whether a variable is part of the function's
// external interface.
type Visibility int

// Variable visibilities.
const (
	Private Visibility = iota
	Public
)

// String returns "public" or "private".
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}
