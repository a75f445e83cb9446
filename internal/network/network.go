// Package network models the physical substrate: nodes with per-resource
// capacities and unit costs, and directed links carrying latency,
// bandwidth, and a bandwidth unit cost. The substrate is a complete
// directed graph including self-loops.
package network

import (
	"sort"
	"strings"

	"github.com/oran-mano/vnf-ga-placer/internal/topology"
)

// ResourceType is a string resource tag ("cpu", "ram", ...), ordered by
// (length, lexicographic) for stable iteration over capacity/cost maps.
type ResourceType string

func SortResourceTypes(types []ResourceType) {
	sort.Slice(types, func(i, j int) bool {
		a, b := types[i], types[j]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
}

// SortedResourceTypes returns the distinct keys of m in canonical order.
func SortedResourceTypes(m map[ResourceType]int) []ResourceType {
	out := make([]ResourceType, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	SortResourceTypes(out)
	return out
}

// Node is a substrate node: a unique label, per-resource-type integer
// capacity, and per-resource-type real unit cost. Equality and hashing are
// by label alone.
type Node struct {
	Label      string
	Capacity   map[ResourceType]int
	UnitCost   map[ResourceType]float64
}

func (n Node) ID() string { return n.Label }

// Link is a directed edge (Tail, Head) carrying latency, bandwidth, and a
// bandwidth unit cost. Endpoint equality is directed, not an unordered
// set — see internal/topology's design note on this.
type Link struct {
	Tail               string
	Head               string
	Latency            float64
	Bandwidth          float64
	BandwidthUnitCost  float64
}

// Topology is the substrate: a set of nodes and a dense set of directed
// links, guaranteed complete (every ordered pair, including self-loops,
// has a link) by the input-file loader before it is handed to the rest of
// the system.
type Topology struct {
	g     *topology.Graph[string, Node]
	links map[[2]string]Link
}

func NewTopology() *Topology {
	return &Topology{
		g:     topology.NewGraph[string, Node](),
		links: make(map[[2]string]Link),
	}
}

func (t *Topology) AddNode(n Node) {
	t.g.AddNode(n)
}

func (t *Topology) AddLink(l Link) error {
	tail, ok := t.g.Node(l.Tail)
	if !ok {
		return &missingNodeError{l.Tail}
	}
	head, ok := t.g.Node(l.Head)
	if !ok {
		return &missingNodeError{l.Head}
	}
	if err := t.g.AddLink(topology.Link[string, Node]{Tail: tail, Head: head}); err != nil {
		return err
	}
	t.links[[2]string{l.Tail, l.Head}] = l
	return nil
}

type missingNodeError struct{ label string }

func (e *missingNodeError) Error() string {
	return "network: link references unknown node " + e.label
}

func (t *Topology) Node(label string) (Node, bool) { return t.g.Node(label) }

func (t *Topology) Link(tail, head string) (Link, bool) {
	l, ok := t.links[[2]string{tail, head}]
	return l, ok
}

func (t *Topology) NumNodes() int { return t.g.NumNodes() }

// Links returns every link in the topology in unspecified order.
func (t *Topology) Links() []Link {
	out := make([]Link, 0, len(t.links))
	for _, l := range t.links {
		out = append(out, l)
	}
	return out
}

// SortedNodes returns nodes ordered by label; this ordering defines the
// integer indices used by placement matrices.
func (t *Topology) SortedNodes() []Node { return t.g.SortedNodes() }

// SortedLabels is a convenience projection of SortedNodes onto labels.
func (t *Topology) SortedLabels() []string {
	nodes := t.SortedNodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

// IndexOf returns the sorted-order index of label, or -1.
func (t *Topology) IndexOf(label string) int {
	for i, l := range t.SortedLabels() {
		if l == label {
			return i
		}
	}
	return -1
}

// Validate checks the completeness invariant: every ordered pair of nodes
// (including self-pairs) must have a link.
func (t *Topology) Validate() error {
	labels := t.SortedLabels()
	var missing []string
	for _, a := range labels {
		for _, b := range labels {
			if _, ok := t.links[[2]string{a, b}]; !ok {
				missing = append(missing, a+"->"+b)
			}
		}
	}
	if len(missing) > 0 {
		return &incompleteTopologyError{missing}
	}
	return nil
}

type incompleteTopologyError struct{ missing []string }

func (e *incompleteTopologyError) Error() string {
	return "network: incomplete topology, missing links: " + strings.Join(e.missing, ", ")
}
