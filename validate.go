package scenery

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type sceneDocument struct {
	Nodes             json.RawMessage `json:"nodes"`
	Settings          json.RawMessage `json:"settings"`
	MaterialOverrides json.RawMessage `json:"materialOverrides"`
}

// ParseSceneGraph validates the top-level shape of a scene document and
// decodes it. Only a missing or malformed node list is fatal; a node that
// fails to decode is kept as NodeInvalid and problems in the optional
// sections are collected as warnings.
func ParseSceneGraph(data []byte) (*SceneGraph, error) {
	var doc sceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Message: "document is not a JSON object", Err: err}
	}
	if isNullJSON(doc.Nodes) {
		return nil, &SchemaError{Message: "missing nodes list"}
	}
	var rawNodes []json.RawMessage
	if err := json.Unmarshal(doc.Nodes, &rawNodes); err != nil {
		return nil, &SchemaError{Message: "nodes is not a list", Err: err}
	}

	graph := &SceneGraph{Nodes: make([]Node, 0, len(rawNodes))}
	for i, raw := range rawNodes {
		n, err := decodeNode(raw)
		if err != nil {
			n.Kind = NodeInvalid
			n.DecodeErr = fmt.Errorf("node %d: %w", i, err)
		}
		graph.Nodes = append(graph.Nodes, n)
	}

	if !isNullJSON(doc.Settings) {
		var settings SceneSettings
		if err := json.Unmarshal(doc.Settings, &settings); err != nil {
			graph.Warnings = append(graph.Warnings, fmt.Errorf("settings ignored: %w", err))
		} else {
			graph.Settings = &settings
		}
	}
	if !isNullJSON(doc.MaterialOverrides) {
		if err := json.Unmarshal(doc.MaterialOverrides, &graph.MaterialOverrides); err != nil {
			graph.Warnings = append(graph.Warnings, fmt.Errorf("material overrides ignored: %w", err))
			graph.MaterialOverrides = nil
		}
	}
	return graph, nil
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// ChildrenOf returns the child mesh records of a model node in document order.
func (g *SceneGraph) ChildrenOf(modelID string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Child != nil && n.Child.ParentID == modelID {
			out = append(out, n)
		}
	}
	return out
}
