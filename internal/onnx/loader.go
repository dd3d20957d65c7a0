package onnx

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/onnxifi/internal/graph"
	"github.com/born-ml/onnxifi/internal/onnx/operators"
	"github.com/born-ml/onnxifi/internal/tensor"
)

var discardLogger = slog.New(slog.DiscardHandler)

// LoadOptions configures model loading behavior.
type LoadOptions struct {
	// Builder lowers the graph topology. Nil uses a NodeBuilder over the
	// default operator registry plus CustomOps.
	Builder Builder

	// CustomOps provides custom operator handlers for the default builder.
	CustomOps map[string]operators.OpHandler

	// SkipUnsupported makes the default builder drop nodes it cannot
	// lower instead of failing. Outputs that depend on them stay
	// unresolved.
	SkipUnsupported bool

	// Logger receives debug records for each pipeline stage. Nil discards.
	Logger *slog.Logger
}

// DefaultLoadOptions returns default loading options.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{}
}

// Loader is the result of a successful Parse. It records the model
// metadata, the input variables and the weight table of one load.
type Loader struct {
	fn     *graph.Function
	logger *slog.Logger

	irVersion       int64
	opsetVersion    int64
	producerName    string
	producerVersion string

	inputs     map[string]*graph.Node
	inputNames []string

	weights     map[string]*tensor.Tensor
	weightNames []string
	external    map[string]struct{} // names that came from descriptors
	constants   map[string]*graph.Node

	outputs     map[string]*graph.Node
	outputNames []string
}

// Parse loads a serialized ONNX model into fn.
//
// Graph inputs become public placeholder variables, weights are copied out
// of the descriptors, the topology is lowered by the configured Builder and
// the declared outputs become Save nodes. On any failure Parse returns a
// nil Loader and fn is rolled back to its state before the call.
//
// The descriptors are only read during the call.
func Parse(model []byte, weights []TensorDescriptor, fn *graph.Function, opts ...LoadOptions) (_ *Loader, err error) {
	opt := DefaultLoadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if fn == nil {
		return nil, errors.New("onnx load: nil function")
	}

	l := newLoader(fn, opt.Logger)
	mark := fn.Mark()
	defer func() {
		if err != nil {
			l.Close()
			fn.Rollback(mark)
			l.logger.Debug("load aborted", "error", err)
		}
	}()

	proto, err := Decode(model)
	if err != nil {
		return nil, &LoadError{Stage: StageDecode, Err: err}
	}
	if proto.Graph == nil {
		return nil, &LoadError{Stage: StageDecode, Err: fmt.Errorf("%w: model has no graph", ErrMalformedModel)}
	}
	l.setVersion(proto)

	g := proto.Graph
	if err := l.loadInputs(g); err != nil {
		return nil, err
	}
	if err := l.loadWeights(weights); err != nil {
		return nil, err
	}
	if err := l.loadInitializers(g); err != nil {
		return nil, err
	}

	builder := opt.Builder
	if builder == nil {
		nb := NewNodeBuilder(opt.CustomOps, l.logger)
		nb.SkipUnsupported = opt.SkipUnsupported
		builder = nb
	}
	values, err := builder.Build(fn, g, l.opsetVersion, l)
	if err != nil {
		var le *LoadError
		if !errors.As(err, &le) {
			err = &LoadError{Stage: StageBuild, Err: err}
		}
		return nil, err
	}

	if err := l.setOutputNodes(g, values); err != nil {
		return nil, err
	}

	l.logger.Debug("model loaded",
		"inputs", len(l.inputNames),
		"weights", len(l.weightNames),
		"nodes", len(fn.Nodes())-mark.Nodes(),
		"outputs", len(l.outputNames))
	return l, nil
}

func newLoader(fn *graph.Function, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = discardLogger
	}
	return &Loader{
		fn:        fn,
		logger:    logger,
		inputs:    make(map[string]*graph.Node),
		weights:   make(map[string]*tensor.Tensor),
		external:  make(map[string]struct{}),
		constants: make(map[string]*graph.Node),
		outputs:   make(map[string]*graph.Node),
	}
}

// setVersion records the format version for downstream compatibility checks.
func (l *Loader) setVersion(m *ModelProto) {
	l.irVersion = m.IRVersion
	l.opsetVersion = m.opsetVersion()
	l.producerName = m.ProducerName
	l.producerVersion = m.ProducerVersion
	l.logger.Debug("model version", "ir", l.irVersion, "opset", l.opsetVersion, "producer", l.producerName)
}

// loadInputs creates a public placeholder variable for every graph input,
// in declaration order.
func (l *Loader) loadInputs(g *GraphProto) error {
	for i := range g.Inputs {
		in := &g.Inputs[i]
		if _, ok := l.inputs[in.Name]; ok {
			return &LoadError{Stage: StageInputs, Name: in.Name, Err: ErrDuplicateName}
		}

		typ, err := ResolveType(in.Type)
		if err != nil {
			return &LoadError{Stage: StageInputs, Name: in.Name, Err: err}
		}

		t := tensor.NewPlaceholder(typ)
		v, err := l.fn.CreateVariable(in.Name, t, graph.Public)
		if err != nil {
			t.Release()
			return &LoadError{Stage: StageInputs, Name: in.Name, Err: symbolError(err)}
		}
		l.inputs[in.Name] = v
		l.inputNames = append(l.inputNames, in.Name)
		l.logger.Debug("registered input", "name", in.Name, "type", typ.String())
	}
	return nil
}

// loadWeights materializes every external descriptor. The first failure
// aborts the load.
func (l *Loader) loadWeights(descriptors []TensorDescriptor) error {
	for i := range descriptors {
		d := &descriptors[i]
		t, err := Materialize(*d)
		if err != nil {
			return &LoadError{Stage: StageWeights, Name: d.Name, Err: err}
		}
		if err := l.addWeight(d.Name, t); err != nil {
			t.Release()
			return &LoadError{Stage: StageWeights, Name: d.Name, Err: err}
		}
		l.external[d.Name] = struct{}{}
		l.logger.Debug("materialized weight", "name", d.Name, "type", t.Type().String(), "source", d.DataType.String())
	}
	return nil
}

// loadInitializers materializes tensors embedded in the graph. An external
// descriptor with the same name takes precedence; two initializers with the
// same name are a duplicate.
func (l *Loader) loadInitializers(g *GraphProto) error {
	for i := range g.Initializers {
		init := &g.Initializers[i]
		if _, ok := l.external[init.Name]; ok {
			continue
		}
		t, err := materializeInitializer(init)
		if err != nil {
			return &LoadError{Stage: StageWeights, Name: init.Name, Err: err}
		}
		if err := l.addWeight(init.Name, t); err != nil {
			t.Release()
			return &LoadError{Stage: StageWeights, Name: init.Name, Err: err}
		}
		l.logger.Debug("materialized initializer", "name", init.Name, "type", t.Type().String())
	}
	return nil
}

// addWeight records t in the write-once weight table.
//
// A weight may share its name with a graph input only when both have the
// same type. The input then shadows it: nodes consume the input variable,
// and the weight stays reachable through Weight until Close.
func (l *Loader) addWeight(name string, t *tensor.Tensor) error {
	if _, ok := l.weights[name]; ok {
		return ErrDuplicateName
	}
	if v, ok := l.inputs[name]; ok && !v.Tensor().Type().Equal(t.Type()) {
		return fmt.Errorf("%w: weight %s conflicts with input %s", ErrDuplicateName, t.Type(), v.Tensor().Type())
	}
	l.weights[name] = t
	l.weightNames = append(l.weightNames, name)
	return nil
}

// Lookup implements SymbolTable. Inputs shadow weights; a weight becomes a
// constant node the first time it is referenced.
func (l *Loader) Lookup(name string) (*graph.Node, error) {
	if v, ok := l.inputs[name]; ok {
		return v, nil
	}
	if c, ok := l.constants[name]; ok {
		return c, nil
	}
	w, ok := l.weights[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedInput, name)
	}
	shared := w.Share()
	c, err := l.fn.CreateConstant(name, shared)
	if err != nil {
		shared.Release()
		return nil, symbolError(err)
	}
	l.constants[name] = c
	return c, nil
}

// setOutputNodes saves every declared graph output.
func (l *Loader) setOutputNodes(g *GraphProto, values map[string]*graph.Node) error {
	for i := range g.Outputs {
		name := g.Outputs[i].Name
		v, ok := values[name]
		if !ok {
			var err error
			v, err = l.Lookup(name)
			if err != nil {
				if errors.Is(err, ErrUnresolvedInput) {
					err = ErrUnresolvedOutput
				}
				return &LoadError{Stage: StageOutputs, Name: name, Err: err}
			}
		}
		if _, err := l.fn.CreateSave(name, v); err != nil {
			return &LoadError{Stage: StageOutputs, Name: name, Err: symbolError(err)}
		}
		l.outputs[name] = v
		l.outputNames = append(l.outputNames, name)
	}
	return nil
}

// symbolError maps function symbol clashes onto ErrDuplicateName.
func symbolError(err error) error {
	if errors.Is(err, graph.ErrDuplicateSymbol) {
		return fmt.Errorf("%w: %w", ErrDuplicateName, err)
	}
	return err
}

// Close releases the loader's weight table. Constants created from the
// weights keep their own references and stay valid.
func (l *Loader) Close() {
	for _, name := range l.weightNames {
		l.weights[name].Release()
	}
	clear(l.weights)
	l.weightNames = nil
}

// Function returns the function the model was loaded into.
func (l *Loader) Function() *graph.Function {
	return l.fn
}

// IRVersion returns the model's ONNX IR version.
func (l *Loader) IRVersion() int64 {
	return l.irVersion
}

// OpsetVersion returns the default-domain opset version, or 0.
func (l *Loader) OpsetVersion() int64 {
	return l.opsetVersion
}

// ProducerName returns the name of the framework that wrote the model.
func (l *Loader) ProducerName() string {
	return l.producerName
}

// ProducerVersion returns the version of the framework that wrote the model.
func (l *Loader) ProducerVersion() string {
	return l.producerVersion
}

// InputVariable returns the placeholder variable of a graph input.
func (l *Loader) InputVariable(name string) (*graph.Node, bool) {
	v, ok := l.inputs[name]
	return v, ok
}

// InputNames returns the graph input names in declaration order.
func (l *Loader) InputNames() []string {
	return l.inputNames
}

// Weight returns a materialized weight by name.
func (l *Loader) Weight(name string) (*tensor.Tensor, bool) {
	t, ok := l.weights[name]
	return t, ok
}

// WeightNames returns the weight names in load order.
func (l *Loader) WeightNames() []string {
	return l.weightNames
}

// Output returns the node a declared output resolved to.
func (l *Loader) Output(name string) (*graph.Node, bool) {
	n, ok := l.outputs[name]
	return n, ok
}

// OutputNames returns the declared output names in order.
func (l *Loader) OutputNames() []string {
	return l.outputNames
}
