package graph

import (
	"fmt"
	"strings"
)

// Exporter renders a compiled graph in different textual formats
type Exporter struct {
	graph *CompiledGraph
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter(graph *CompiledGraph) *Exporter {
	return &Exporter{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{
		Direction: "TD",
	})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Fixed edges are solid arrows; conditional routes are dotted arrows
// labelled with their route key.
func (ge *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	sb.WriteString("    START([\"START\"])\n")
	for _, n := range ge.graph.Nodes() {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", n.Name, n.Name)
	}
	sb.WriteString("    END([\"END\"])\n")

	fmt.Fprintf(&sb, "    START --> %s\n", ge.graph.entryPoint)
	for _, e := range ge.graph.Edges() {
		fmt.Fprintf(&sb, "    %s --> %s\n", e.From, e.To)
	}
	for _, ce := range ge.graph.ConditionalEdges() {
		for _, key := range sortedKeys(ce.Routes) {
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", ce.From, key, ce.Routes[key])
		}
	}

	sb.WriteString("    style START fill:#90EE90\n")
	sb.WriteString("    style END fill:#FFB6C1\n")
	fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", ge.graph.entryPoint)

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")
	sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
	sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", ge.graph.entryPoint)
	fmt.Fprintf(&sb, "    START -> %s;\n", ge.graph.entryPoint)

	for _, e := range ge.graph.Edges() {
		fmt.Fprintf(&sb, "    %s -> %s;\n", e.From, e.To)
	}
	for _, ce := range ge.graph.ConditionalEdges() {
		for _, key := range sortedKeys(ce.Routes) {
			fmt.Fprintf(&sb, "    %s -> %s [style=dashed, label=\"%s\"];\n", ce.From, ce.Routes[key], key)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree representation of the graph
func (ge *Exporter) DrawASCII() string {
	var sb strings.Builder
	visited := make(map[string]bool)

	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")

	ge.drawASCIINode(ge.graph.entryPoint, "", "│   ", true, visited, &sb)

	return sb.String()
}

// drawASCIINode recursively draws ASCII representation of nodes
func (ge *Exporter) drawASCIINode(nodeName, label, prefix string, isLast bool, visited map[string]bool, sb *strings.Builder) {
	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}
	if label != "" {
		label = "[" + label + "] "
	}

	if visited[nodeName] {
		fmt.Fprintf(sb, "%s%s %s%s (cycle)\n", prefix, connector, label, nodeName)
		return
	}
	fmt.Fprintf(sb, "%s%s %s%s\n", prefix, connector, label, nodeName)
	if nodeName == END {
		return
	}
	visited[nodeName] = true

	type child struct{ label, to string }
	var children []child
	if to, ok := ge.graph.fixedEdges[nodeName]; ok {
		children = append(children, child{to: to})
	}
	if ce, ok := ge.graph.conditional[nodeName]; ok {
		for _, key := range sortedKeys(ce.Routes) {
			children = append(children, child{label: "?" + key, to: ce.Routes[key]})
		}
	}

	for i, c := range children {
		ge.drawASCIINode(c.to, c.label, nextPrefix, i == len(children)-1, visited, sb)
	}
}
