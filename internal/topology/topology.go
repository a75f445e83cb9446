// Package topology provides generic directed-graph primitives used by
// the substrate network model (internal/network): nodes, directed links,
// paths, and O(1) lookup by endpoint pair.
package topology

import (
	"cmp"
	"fmt"
	"slices"
)

// Identifiable is satisfied by any node type carrying a comparable,
// orderable identity, such as a network node's label.
type Identifiable[K cmp.Ordered] interface {
	ID() K
}

// Link is a directed edge between two nodes. Endpoint equality is
// directed: (tail, head) and (head, tail) are distinct links, per the
// design note that the source's unordered-endpoint equality was a latent
// bug for a directed graph.
type Link[K cmp.Ordered, N Identifiable[K]] struct {
	Tail N
	Head N
}

func (l Link[K, N]) Endpoints() (K, K) { return l.Tail.ID(), l.Head.ID() }

type edgeKey[K cmp.Ordered] struct {
	Tail K
	Head K
}

// Graph is a directed graph keyed by node identity K, with a dense
// adjacency table keyed by (tail, head) for O(1) link lookup — the
// substrate is a complete directed graph with self-loops, and the source
// implementation's O(|E|) incoming/outgoing scans are a known hot-path
// cost this representation avoids.
type Graph[K cmp.Ordered, N Identifiable[K]] struct {
	nodes map[K]N
	links map[edgeKey[K]]Link[K, N]
	// out and in index link keys by tail/head for incoming/outgoing
	// queries without scanning the full link set.
	out map[K][]edgeKey[K]
	in  map[K][]edgeKey[K]
}

func NewGraph[K cmp.Ordered, N Identifiable[K]]() *Graph[K, N] {
	return &Graph[K, N]{
		nodes: make(map[K]N),
		links: make(map[edgeKey[K]]Link[K, N]),
		out:   make(map[K][]edgeKey[K]),
		in:    make(map[K][]edgeKey[K]),
	}
}

func (g *Graph[K, N]) AddNode(n N) {
	g.nodes[n.ID()] = n
}

// AddLink requires both endpoints already be present via AddNode.
func (g *Graph[K, N]) AddLink(l Link[K, N]) error {
	tail, head := l.Endpoints()
	if _, ok := g.nodes[tail]; !ok {
		return fmt.Errorf("topology: link tail %v not in node set", tail)
	}
	if _, ok := g.nodes[head]; !ok {
		return fmt.Errorf("topology: link head %v not in node set", head)
	}
	k := edgeKey[K]{tail, head}
	if _, exists := g.links[k]; !exists {
		g.out[tail] = append(g.out[tail], k)
		g.in[head] = append(g.in[head], k)
	}
	g.links[k] = l
	return nil
}

func (g *Graph[K, N]) Node(id K) (N, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Graph[K, N]) Link(tail, head K) (Link[K, N], bool) {
	l, ok := g.links[edgeKey[K]{tail, head}]
	return l, ok
}

func (g *Graph[K, N]) HasLink(tail, head K) bool {
	_, ok := g.links[edgeKey[K]{tail, head}]
	return ok
}

func (g *Graph[K, N]) NumNodes() int { return len(g.nodes) }
func (g *Graph[K, N]) NumLinks() int { return len(g.links) }

// Nodes returns all nodes in unspecified order.
func (g *Graph[K, N]) Nodes() []N {
	out := make([]N, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// SortedNodes returns nodes ordered by identity. This ordering defines the
// integer indices used by placement matrices, so callers that need a
// stable index space (internal/placement) must always go through this.
func (g *Graph[K, N]) SortedNodes() []N {
	out := g.Nodes()
	slices.SortFunc(out, func(a, b N) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

// Links returns all links in unspecified order.
func (g *Graph[K, N]) Links() []Link[K, N] {
	out := make([]Link[K, N], 0, len(g.links))
	for _, l := range g.links {
		out = append(out, l)
	}
	return out
}

// Outgoing returns links whose tail is id, O(degree).
func (g *Graph[K, N]) Outgoing(id K) []Link[K, N] {
	keys := g.out[id]
	out := make([]Link[K, N], 0, len(keys))
	for _, k := range keys {
		out = append(out, g.links[k])
	}
	return out
}

// Incoming returns links whose head is id, O(degree).
func (g *Graph[K, N]) Incoming(id K) []Link[K, N] {
	keys := g.in[id]
	out := make([]Link[K, N], 0, len(keys))
	for _, k := range keys {
		out = append(out, g.links[k])
	}
	return out
}

// Path is an ordered sequence of links forming a walk from Origin to
// Destination. It is built by the caller rather than derived by search —
// this package only offers the summation helpers paths need.
type Path[K cmp.Ordered, N Identifiable[K]] struct {
	Links []Link[K, N]
}

func (p Path[K, N]) Origin() (N, bool) {
	var zero N
	if len(p.Links) == 0 {
		return zero, false
	}
	return p.Links[0].Tail, true
}

func (p Path[K, N]) Destination() (N, bool) {
	var zero N
	if len(p.Links) == 0 {
		return zero, false
	}
	return p.Links[len(p.Links)-1].Head, true
}

// Nodes returns the ordered node sequence origin, ..., destination.
func (p Path[K, N]) Nodes() []N {
	if len(p.Links) == 0 {
		return nil
	}
	out := make([]N, 0, len(p.Links)+1)
	out = append(out, p.Links[0].Tail)
	for _, l := range p.Links {
		out = append(out, l.Head)
	}
	return out
}

// Sum applies f to every link on the path and adds the results — used for
// latency budgets and bandwidth-cost accounting.
func Sum[K cmp.Ordered, N Identifiable[K]](p Path[K, N], f func(Link[K, N]) float64) float64 {
	var total float64
	for _, l := range p.Links {
		total += f(l)
	}
	return total
}
