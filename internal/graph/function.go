package graph

import (
	"errors"
	"fmt"
	"io"

	"github.com/born-ml/onnxifi/internal/tensor"
)

// ErrDuplicateSymbol is returned when a variable, constant or output
// name is already taken in the function.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// Function is a graph under construction.
//
// A Function is not safe for concurrent mutation.
type Function struct {
	name    string
	nodes   []*Node
	symbols map[string]*Node // variables and constants by name
	outputs []*Node
	saves   map[string]*Node // save nodes by output name
}

// Mark records the size of a Function so it can be rolled back.
type Mark struct {
	nodes   int
	outputs int
}

// Nodes returns the number of nodes the function had when the mark was taken.
func (m Mark) Nodes() int {
	return m.nodes
}

// NewFunction creates an empty function.
func NewFunction(name string) *Function {
	return &Function{
		name:    name,
		symbols: make(map[string]*Node),
		saves:   make(map[string]*Node),
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// CreateVariable adds a variable holding t. The function takes ownership of t.
func (f *Function) CreateVariable(name string, t *tensor.Tensor, vis Visibility) (*Node, error) {
	return f.addSymbol(&Node{name: name, kind: VariableKind, payload: t, visibility: vis})
}

// CreateConstant adds a constant holding t. The function takes ownership of t.
func (f *Function) CreateConstant(name string, t *tensor.Tensor) (*Node, error) {
	return f.addSymbol(&Node{name: name, kind: ConstantKind, payload: t, visibility: Private})
}

func (f *Function) addSymbol(n *Node) (*Node, error) {
	if n.payload == nil {
		return nil, fmt.Errorf("symbol %q: nil tensor", n.name)
	}
	if _, ok := f.symbols[n.name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, n.name)
	}
	f.symbols[n.name] = n
	f.nodes = append(f.nodes, n)
	return n, nil
}

// AddNode adds an operator node. params may be nil.
func (f *Function) AddNode(name string, kind Kind, params any, inputs ...*Node) *Node {
	n := &Node{
		name:   name,
		kind:   kind,
		inputs: append([]*Node(nil), inputs...),
		params: params,
	}
	f.nodes = append(f.nodes, n)
	return n
}

// CreateSave marks value as the function output called name.
func (f *Function) CreateSave(name string, value *Node) (*Node, error) {
	if value == nil {
		return nil, fmt.Errorf("output %q: nil value", name)
	}
	if _, ok := f.saves[name]; ok {
		return nil, fmt.Errorf("%w: output %q", ErrDuplicateSymbol, name)
	}
	n := f.AddNode(name, SaveNodeKind, nil, value)
	f.saves[name] = n
	f.outputs = append(f.outputs, n)
	return n, nil
}

// Symbol returns the variable or constant called name.
func (f *Function) Symbol(name string) (*Node, bool) {
	n, ok := f.symbols[name]
	return n, ok
}

// Output returns the save node of the output called name.
func (f *Function) Output(name string) (*Node, bool) {
	n, ok := f.saves[name]
	return n, ok
}

// Variables returns the variables in creation order.
func (f *Function) Variables() []*Node {
	var vars []*Node
	for _, n := range f.nodes {
		if n.kind == VariableKind {
			vars = append(vars, n)
		}
	}
	return vars
}

// Nodes returns all nodes in creation order.
func (f *Function) Nodes() []*Node {
	return f.nodes
}

// Outputs returns the save nodes in creation order.
func (f *Function) Outputs() []*Node {
	return f.outputs
}

// Mark returns the current size of the function.
func (f *Function) Mark() Mark {
	return Mark{nodes: len(f.nodes), outputs: len(f.outputs)}
}

// Rollback removes every node created after m and releases the tensors
// they own.
func (f *Function) Rollback(m Mark) {
	if m.nodes > len(f.nodes) || m.outputs > len(f.outputs) {
		return
	}
	for _, n := range f.nodes[m.nodes:] {
		switch n.kind {
		case VariableKind, ConstantKind:
			delete(f.symbols, n.name)
			n.payload.Release()
		case SaveNodeKind:
			delete(f.saves, n.name)
		}
	}
	clear(f.nodes[m.nodes:])
	f.nodes = f.nodes[:m.nodes]
	f.outputs = f.outputs[:m.outputs]
}

// Dump writes one line per node to w.
func (f *Function) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "function %q: %d nodes, %d outputs\n", f.name, len(f.nodes), len(f.outputs)); err != nil {
		return err
	}
	for _, n := range f.nodes {
		if _, err := fmt.Fprintf(w, "  %s\n", n); err != nil {
			return err
		}
	}
	return nil
}
