package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Problem - Graph Input Serialization
// =============================================================================

// Problem is the canonical serialization format for a coloring problem:
// a graph plus the number of available colors. This is the file format the
// CLI reads, what the HTTP API accepts, and what cache keys are derived from.
type Problem struct {
	Nodes  int    `json:"nodes" bson:"nodes"`
	Edges  []Edge `json:"edges" bson:"edges"`
	Colors int    `json:"colors" bson:"colors"`
}

// Graph converts the problem's graph portion to a validated Graph.
func (p Problem) Graph() (*Graph, error) {
	g, err := New(p.Nodes)
	if err != nil {
		return nil, err
	}
	for _, e := range p.Edges {
		if err := g.AddEdge(e.U, e.V); err != nil {
			return nil, fmt.Errorf("edge {%d,%d}: %w", e.U, e.V, err)
		}
	}
	return g, nil
}

// FromGraph builds a Problem from a graph and color count.
// Edges are emitted in normalized, sorted order for deterministic output.
func FromGraph(g *Graph, colors int) Problem {
	return Problem{
		Nodes:  g.NodeCount(),
		Edges:  g.Edges(),
		Colors: colors,
	}
}

// =============================================================================
// Problem Serialization API
// =============================================================================

// MarshalProblem converts a Problem to indented JSON bytes.
func MarshalProblem(p Problem) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeProblemTo(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteProblemFile writes a Problem to a JSON file.
// The file is created with 0644 permissions.
func WriteProblemFile(p Problem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeProblemTo(p, f)
}

// ReadProblemFile reads a JSON file and returns the decoded Problem.
// The embedded graph is validated; malformed input is rejected.
func ReadProblemFile(path string) (Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return Problem{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadProblem(f)
}

// ReadProblem decodes a JSON problem from an io.Reader.
// Use ReadProblemFile for files or pass bytes.NewReader for in-memory data.
func ReadProblem(r io.Reader) (Problem, error) {
	var p Problem
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Problem{}, fmt.Errorf("decode: %w", err)
	}
	if _, err := p.Graph(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func writeProblemTo(p Problem, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
