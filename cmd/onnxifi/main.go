// Package main provides the onnxifi CLI for inspecting and loading ONNX models.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/born-ml/onnxifi/graph"
	"github.com/born-ml/onnxifi/onnx"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "onnxifi:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "onnxifi %s\n", version)
		return nil
	case "inspect":
		return inspect(args[1:], out)
	case "load":
		return load(args[1:], out)
	case "ops":
		for _, op := range onnx.ListSupportedOps() {
			fmt.Fprintln(out, op)
		}
		return nil
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "onnxifi - ONNX model ingestion")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  inspect <model.onnx>   Show model metadata and single-operator signature")
	fmt.Fprintln(out, "  load [-v] <model.onnx> Load the model and print the resulting graph")
	fmt.Fprintln(out, "  ops                    List supported operators")
	fmt.Fprintln(out, "  version                Show version")
}

func inspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("inspect: expected one model path")
	}
	path := fs.Arg(0)

	info, err := onnx.GetModelInfo(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "IR version:   %d\n", info.IRVersion)
	fmt.Fprintf(out, "Opset:        %d\n", info.OpsetVersion)
	fmt.Fprintf(out, "Producer:     %s %s\n", info.ProducerName, info.ProducerVersion)
	fmt.Fprintf(out, "Inputs:       %s\n", strings.Join(info.InputNames, ", "))
	fmt.Fprintf(out, "Outputs:      %s\n", strings.Join(info.OutputNames, ", "))
	fmt.Fprintf(out, "Nodes:        %d\n", info.NodeCount)
	fmt.Fprintf(out, "Initializers: %d\n", info.WeightCount)

	if info.NodeCount != 1 {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sig, err := onnx.ParseOperator(data)
	switch {
	case errors.Is(err, onnx.ErrUnknownOperator):
		fmt.Fprintf(out, "Operator:     %s (no signature)\n", info.OpTypes[0])
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "Operator:     %s\n", sig)
	}
	return nil
}

func load(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Log each load stage to stderr")
	name := fs.String("name", "main", "Name of the function to load into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("load: expected one model path")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := onnx.DefaultLoadOptions()
	if *verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	fn := graph.NewFunction(*name)
	loader, err := onnx.Parse(data, nil, fn, opts)
	if err != nil {
		return err
	}
	defer loader.Close()

	return fn.Dump(out)
}
