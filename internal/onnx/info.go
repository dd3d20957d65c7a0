package onnx

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ModelInfo contains basic information about an ONNX model without loading it.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	InputNames      []string // Graph inputs that are not initializers
	OutputNames     []string
	OpTypes         []string // Operator type of every node, in graph order
	NodeCount       int
	WeightCount     int // Embedded initializers
}

// GetModelInfo extracts basic info from an ONNX file.
//
// The file is memory-mapped while it is decoded; the returned info only
// holds copied strings, so nothing refers to the mapping afterwards.
func GetModelInfo(path string) (*ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if st.Size() == 0 {
		// Empty files cannot be mapped.
		proto, err := Decode(nil)
		if err != nil {
			return nil, err
		}
		return modelInfo(proto), nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to map file: %w", err)
	}
	defer data.Unmap() //nolint:errcheck // read-only mapping

	proto, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return modelInfo(proto), nil
}

func modelInfo(proto *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       proto.IRVersion,
		OpsetVersion:    proto.opsetVersion(),
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
	}

	if proto.Graph != nil {
		// Get inputs (excluding initializers)
		initNames := make(map[string]bool)
		for i := range proto.Graph.Initializers {
			initNames[proto.Graph.Initializers[i].Name] = true
		}
		for i := range proto.Graph.Inputs {
			if !initNames[proto.Graph.Inputs[i].Name] {
				info.InputNames = append(info.InputNames, proto.Graph.Inputs[i].Name)
			}
		}

		for i := range proto.Graph.Outputs {
			info.OutputNames = append(info.OutputNames, proto.Graph.Outputs[i].Name)
		}
		for i := range proto.Graph.Nodes {
			info.OpTypes = append(info.OpTypes, proto.Graph.Nodes[i].OpType)
		}

		info.NodeCount = len(proto.Graph.Nodes)
		info.WeightCount = len(proto.Graph.Initializers)
	}

	return info
}

// ListSupportedOps returns all operators the default builder can lower.
func ListSupportedOps() []string {
	return NewNodeBuilder(nil, nil).Registry.SupportedOps()
}
