package graph

// ConvParams configures a Convolution node.
type ConvParams struct {
	Kernels   []int
	Strides   []int
	Pads      []int
	Dilations []int
	Group     int
}

// PoolParams configures MaxPool and AvgPool nodes.
type PoolParams struct {
	Kernels []int
	Strides []int
	Pads    []int
}

// FullyConnectedParams configures a FullyConnected (Gemm) node.
type FullyConnectedParams struct {
	Alpha  float32
	Beta   float32
	TransA bool
	TransB bool
}

// BatchNormParams configures a BatchNormalization node.
type BatchNormParams struct {
	Epsilon  float32
	Momentum float32
}

// AxisParams configures nodes that operate along one axis
// (SoftMax, Flatten, Concat).
type AxisParams struct {
	Axis int
}

// LeakyReluParams configures a LeakyRelu node.
type LeakyReluParams struct {
	Alpha float32
}

// ReshapeParams holds the requested output dimensions of a Reshape node.
// Values follow ONNX semantics: 0 copies the input dim, -1 is inferred.
type ReshapeParams struct {
	Dims []int
}

// TransposeParams holds the axis permutation of a Transpose node.
// An empty permutation reverses the axes.
type TransposeParams struct {
	Perm []int
}
