// Package graphbuilder compiles a resolved segment into a render graph: a
// DAG of typed nodes wired by named ports, ready for per-frame evaluation
// by the render device.
package graphbuilder

import (
	"fmt"

	"github.com/fluxreel/corecut/internal/errors"
)

// PortKind is the data type flowing across a connection.
type PortKind int

const (
	PortImage PortKind = iota
	PortScalar
	PortVector
	PortColor
)

// Port is a single named input or output on a Node.
type Port struct {
	Name string
	Kind PortKind
}

// Connection links one node's output port to another node's input port.
type Connection struct {
	FromNode string
	FromPort string
	ToNode   string
	ToPort   string
}

// Node is one DAG vertex: a typed operation with a property bag validated
// against its type's schema and a fixed set of named input/output ports.
type Node struct {
	ID         string
	Type       string
	Properties map[string]interface{}
	Inputs     map[string]Port
	Outputs    map[string]Port
}

// Graph is an acyclic collection of nodes and connections with exactly one
// output node.
type Graph struct {
	Nodes       map[string]*Node
	Connections []Connection
	OutputID    string
}

func newGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// schema describes the allowed/required properties for a node type; values
// are the PortKind-independent "any" validation a property bag entry must
// satisfy (currently just presence — types are checked structurally by the
// caller constructing Properties).
type propertySchema map[string]bool // key -> required

var nodeSchemas = map[string]propertySchema{
	"source":       {"asset_id": true, "source_start_seconds": true, "duration_seconds": true},
	"transition":   {"kind": true},
	"toneMap":      {"black_point": true, "white_point": true, "gamma": true},
	"composite":    {},
	"volumetric":   {},
	"multichannel": {},
	"acesOutput":   {},
	"output":       {},
}

func nodePorts(nodeType string) (inputs, outputs map[string]Port) {
	switch nodeType {
	case "source":
		return map[string]Port{}, map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "transition":
		return map[string]Port{"a": {Name: "a", Kind: PortImage}, "b": {Name: "b", Kind: PortImage}},
			map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "toneMap":
		return map[string]Port{"in": {Name: "in", Kind: PortImage}}, map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "volumetric":
		return map[string]Port{"Density": {Name: "Density", Kind: PortImage}, "Color": {Name: "Color", Kind: PortImage}},
			map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "multichannel", "composite":
		return map[string]Port{}, map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "acesOutput":
		return map[string]Port{"in": {Name: "in", Kind: PortImage}}, map[string]Port{"out": {Name: "out", Kind: PortImage}}
	case "output":
		return map[string]Port{"in": {Name: "in", Kind: PortImage}}, map[string]Port{}
	default:
		return map[string]Port{}, map[string]Port{}
	}
}

// NewNode constructs a node of the given type, validating its property bag
// against the type's schema.
func NewNode(id, nodeType string, properties map[string]interface{}) (*Node, error) {
	schema, ok := nodeSchemas[nodeType]
	if !ok {
		return nil, errors.NewUnknownFeature(nodeType)
	}
	for key, required := range schema {
		if required {
			if _, present := properties[key]; !present {
				return nil, errors.NewUnknownFeature(fmt.Sprintf("%s.%s", nodeType, key))
			}
		}
	}
	inputs, outputs := nodePorts(nodeType)
	return &Node{ID: id, Type: nodeType, Properties: properties, Inputs: inputs, Outputs: outputs}, nil
}

// AddNode registers a node in the graph.
func (g *Graph) AddNode(n *Node) { g.Nodes[n.ID] = n }

// Connect wires fromNode.fromPort to toNode.toPort, failing fast if either
// named port does not exist on its node.
func (g *Graph) Connect(fromNode, fromPort, toNode, toPort string) error {
	from, ok := g.Nodes[fromNode]
	if !ok {
		return errors.NewUnsupportedEffectInputPort(fromNode, fromPort)
	}
	if _, ok := from.Outputs[fromPort]; !ok {
		return errors.NewUnsupportedEffectInputPort(fromNode, fromPort)
	}
	to, ok := g.Nodes[toNode]
	if !ok {
		return errors.NewUnsupportedEffectInputPort(toNode, toPort)
	}
	if _, ok := to.Inputs[toPort]; !ok {
		return errors.NewUnsupportedEffectInputPort(toNode, toPort)
	}
	g.Connections = append(g.Connections, Connection{FromNode: fromNode, FromPort: fromPort, ToNode: toNode, ToPort: toPort})
	return nil
}

// TopologicalOrder returns node IDs in dependency order (sources first),
// failing if the graph contains a cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.Nodes))
	adj := make(map[string][]string, len(g.Nodes))
	for id := range g.Nodes {
		indegree[id] = 0
	}
	for _, c := range g.Connections {
		adj[c.FromNode] = append(adj[c.FromNode], c.ToNode)
		indegree[c.ToNode]++
	}

	var queue, order []string
	for id, d := range indegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, next := range adj[n] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(order) != len(g.Nodes) {
		return nil, errors.NewEngineFailed(fmt.Errorf("render graph contains a cycle"))
	}
	return order, nil
}
