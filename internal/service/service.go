// Package service models a single request's service graph: an ingress
// endpoint, an ordered VNF chain, an egress endpoint, the virtual links
// connecting them, and a whole-chain latency budget.
package service

import (
	"github.com/google/uuid"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
)

// Kind distinguishes the two VirtualNode variants.
type Kind int

const (
	KindServiceEndpoint Kind = iota
	KindVNF
)

// Node is a virtual node: either a ServiceEndpoint bound to one substrate
// node, or a VNF with integer per-resource-type demand. Each instance
// carries its own opaque UUID identity so two syntactically identical
// VNFs (e.g. two chain hops requesting the same resources) never
// collide — matching the "Identity" design note that per-instance
// identity, not structural equality, is what the original hashes on.
type Node struct {
	id    uuid.UUID
	Kind  Kind
	Label string // informational: VNF type tag, or bound node label

	// Set when Kind == KindVNF.
	ResourcesNeeded map[network.ResourceType]int

	// Set when Kind == KindServiceEndpoint.
	NetworkNodeLabel string
}

func NewServiceEndpoint(networkNodeLabel string) Node {
	return Node{id: uuid.New(), Kind: KindServiceEndpoint, NetworkNodeLabel: networkNodeLabel, Label: networkNodeLabel}
}

func NewVNF(typeTag string, resourcesNeeded map[network.ResourceType]int) Node {
	return Node{id: uuid.New(), Kind: KindVNF, Label: typeTag, ResourcesNeeded: resourcesNeeded}
}

func (n Node) ID() uuid.UUID { return n.id }
func (n Node) IsVNF() bool   { return n.Kind == KindVNF }

// Link is a directed virtual link between two virtual nodes, carrying a
// minimum guaranteed bandwidth the substrate path must honor.
type Link struct {
	Tail                   Node
	Head                   Node
	MinimumGuaranteedBandwidth float64
}

// Service is the per-request service graph: ingress -> v1 -> ... -> vk ->
// egress, with exactly k+1 virtual links and a whole-chain latency budget.
type Service struct {
	Ingress             Node
	VNFChain            []Node
	Egress              Node
	Links               []Link
	MaximumToleratedLatency float64
}

// ChainLength is k, the number of VNFs in the chain.
func (s Service) ChainLength() int { return len(s.VNFChain) }

// New builds a Service from an ingress/egress endpoint pair, an ordered
// VNF chain, the per-hop minimum bandwidths (length k+1, ingress->v1,
// v1->v2, ..., vk->egress) and the chain-wide latency budget.
func New(ingress Node, chain []Node, egress Node, hopBandwidths []float64, maxLatency float64) Service {
	nodes := make([]Node, 0, len(chain)+2)
	nodes = append(nodes, ingress)
	nodes = append(nodes, chain...)
	nodes = append(nodes, egress)

	links := make([]Link, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		bw := 0.0
		if i < len(hopBandwidths) {
			bw = hopBandwidths[i]
		}
		links = append(links, Link{Tail: nodes[i], Head: nodes[i+1], MinimumGuaranteedBandwidth: bw})
	}
	return Service{Ingress: ingress, VNFChain: chain, Egress: egress, Links: links, MaximumToleratedLatency: maxLatency}
}
