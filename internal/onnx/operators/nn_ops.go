package operators

import (
	"fmt"

	"github.com/born-ml/onnxifi/internal/graph"
)

// registerNNOps adds convolution, pooling and normalization operators.
func (r *Registry) registerNNOps() {
	r.Register("Conv", handleConv)
	r.Register("MaxPool", pool(graph.MaxPoolNodeKind))
	r.Register("AveragePool", pool(graph.AvgPoolNodeKind))
	r.Register("BatchNormalization", handleBatchNorm)
}

// checkAutoPad rejects implicit padding modes; only explicit pads are lowered.
func checkAutoPad(node *Node) error {
	switch pad := GetAttrString(node, "auto_pad", "NOTSET"); pad {
	case "NOTSET", "":
		return nil
	default:
		return fmt.Errorf("%s: auto_pad %s is not supported", node.OpType, pad)
	}
}

// handleConv lowers Conv. Inputs: X, W, optional B.
// The kernel shape falls back to the spatial dims of a constant W.
func handleConv(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 2, 3); err != nil {
		return nil, err
	}
	if err := checkAutoPad(node); err != nil {
		return nil, err
	}

	kernels := getAttrDims(node, "kernel_shape", nil)
	if kernels == nil {
		w := inputs[1].Tensor()
		if w == nil || len(w.Shape()) < 3 {
			return nil, fmt.Errorf("conv: kernel_shape is missing and the weight shape is unknown")
		}
		kernels = w.Shape()[2:]
	}

	spatial := len(kernels)
	params := &graph.ConvParams{
		Kernels:   kernels,
		Strides:   getAttrDims(node, "strides", filled(spatial, 1)),
		Pads:      getAttrDims(node, "pads", filled(2*spatial, 0)),
		Dilations: getAttrDims(node, "dilations", filled(spatial, 1)),
		Group:     int(GetAttrInt(node, "group", 1)),
	}
	if len(params.Strides) != spatial || len(params.Pads) != 2*spatial || len(params.Dilations) != spatial {
		return nil, fmt.Errorf("conv: attributes do not match %d spatial dims", spatial)
	}
	if params.Group < 1 {
		return nil, fmt.Errorf("conv: group must be positive, got %d", params.Group)
	}

	return single(ctx.Function.AddNode(node.Name, graph.ConvolutionNodeKind, params, inputs...)), nil
}

// pool returns a handler for MaxPool and AveragePool.
func pool(kind graph.Kind) OpHandler {
	return func(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
		if err := requireInputs(node, inputs, 1, 1); err != nil {
			return nil, err
		}
		if err := checkAutoPad(node); err != nil {
			return nil, err
		}
		kernels := getAttrDims(node, "kernel_shape", nil)
		if len(kernels) == 0 {
			return nil, fmt.Errorf("%s: kernel_shape is required", node.OpType)
		}
		spatial := len(kernels)
		params := &graph.PoolParams{
			Kernels: kernels,
			Strides: getAttrDims(node, "strides", filled(spatial, 1)),
			Pads:    getAttrDims(node, "pads", filled(2*spatial, 0)),
		}
		if len(params.Strides) != spatial || len(params.Pads) != 2*spatial {
			return nil, fmt.Errorf("%s: attributes do not match %d spatial dims", node.OpType, spatial)
		}
		return single(ctx.Function.AddNode(node.Name, kind, params, inputs[0])), nil
	}
}

// handleBatchNorm lowers inference-mode BatchNormalization.
// Inputs: X, scale, bias, mean, var.
func handleBatchNorm(ctx *Context, node *Node, inputs []*graph.Node) ([]*graph.Node, error) {
	if err := requireInputs(node, inputs, 5, 5); err != nil {
		return nil, err
	}
	params := &graph.BatchNormParams{
		Epsilon:  GetAttrFloat(node, "epsilon", 1e-5),
		Momentum: GetAttrFloat(node, "momentum", 0.9),
	}
	return single(ctx.Function.AddNode(node.Name, graph.BatchNormalizationNodeKind, params, inputs...)), nil
}
