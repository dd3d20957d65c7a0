package operators

import "slices"

// Node represents an ONNX operation node.
// This is a local copy of the relevant fields from onnx.NodeProto
// to avoid import cycles between onnx and operators packages.
type Node struct {
	Name       string      // Node name (first output name when unnamed)
	OpType     string      // Operation type (e.g., "Conv", "MatMul", "Relu")
	Inputs     []string    // Input tensor names
	Outputs    []string    // Output tensor names
	Attributes []Attribute // Operation attributes
	Domain     string      // Custom domain (empty for default)
}

// Attribute represents a node attribute.
type Attribute struct {
	Name    string    // Attribute name
	Type    int32     // Attribute type
	F       float32   // FLOAT value
	I       int64     // INT value
	S       []byte    // STRING value
	Floats  []float32 // FLOATS array
	Ints    []int64   // INTS array
	Strings [][]byte  // STRINGS array
}

func (n *Node) attr(name string) (*Attribute, bool) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return &n.Attributes[i], true
		}
	}
	return nil, false
}

// HasAttr reports whether the node sets the attribute.
func HasAttr(node *Node, name string) bool {
	_, ok := node.attr(name)
	return ok
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	if a, ok := node.attr(name); ok {
		return a.I
	}
	return defaultVal
}

// GetAttrInts returns an integer array attribute.
func GetAttrInts(node *Node, name string) []int64 {
	if a, ok := node.attr(name); ok {
		return a.Ints
	}
	return nil
}

// GetAttrFloat returns a float attribute or default value.
func GetAttrFloat(node *Node, name string, defaultVal float32) float32 {
	if a, ok := node.attr(name); ok {
		return a.F
	}
	return defaultVal
}

// GetAttrString returns a string attribute or default value.
func GetAttrString(node *Node, name, defaultVal string) string {
	if a, ok := node.attr(name); ok {
		return string(a.S)
	}
	return defaultVal
}

// getAttrDims returns an integer array attribute as ints, or def (copied)
// when the attribute is absent.
func getAttrDims(node *Node, name string, def []int) []int {
	a, ok := node.attr(name)
	if !ok {
		return slices.Clone(def)
	}
	dims := make([]int, len(a.Ints))
	for i, v := range a.Ints {
		dims[i] = int(v)
	}
	return dims
}

func filled(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
