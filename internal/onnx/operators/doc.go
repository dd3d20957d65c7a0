// Package operators maps ONNX operators to compiler graph nodes.
//
// The package provides a registry of operator handlers. Each handler
// validates the node's operands and attributes, then adds the equivalent
// node to the function under construction. Handlers do not infer shapes.
package operators
