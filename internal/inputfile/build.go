package inputfile

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// Built is everything the GA driver needs, assembled from a Raw parse.
type Built struct {
	Topology     *network.Topology
	Groups       []request.Group
	Incompatible map[uuid.UUID]map[string]bool
	MinRatioMain float64
	Cols         int // uniform chain length (num_vnfs_per_request), the chromosome's column count
}

// Build converts a syntactic Raw parse into the domain objects the rest
// of the system (internal/placement, internal/accepter, internal/ga)
// operates on: node labels and resource-type tags are synthesized from
// file-order indices, zero-padded so lexicographic string order matches
// the file's numeric order exactly — the sorted-node order defines
// chromosome cell semantics, so this correspondence is load-bearing.
func Build(raw *Raw) (*Built, error) {
	label := indexLabeler("n", raw.NumNodes)
	resourceTag := func(i int) network.ResourceType { return network.ResourceType(indexLabeler("r", raw.NumResources)(i)) }

	topo := network.NewTopology()
	for i := 0; i < raw.NumNodes; i++ {
		if i >= len(raw.NodeCapacity) {
			return nil, vnferrors.NewParseError(0, "node resource capacities: missing rows")
		}
		capacity := make(map[network.ResourceType]int, raw.NumResources)
		unitCost := make(map[network.ResourceType]float64, raw.NumResources)
		for rt := 0; rt < raw.NumResources; rt++ {
			capacity[resourceTag(rt)] = raw.NodeCapacity[i][rt]
			unitCost[resourceTag(rt)] = raw.NodeUnitCost[i][rt]
		}
		topo.AddNode(network.Node{Label: label(i), Capacity: capacity, UnitCost: unitCost})
	}
	for i := 0; i < raw.NumNodes; i++ {
		for j := 0; j < raw.NumNodes; j++ {
			if err := topo.AddLink(network.Link{
				Tail:              label(i),
				Head:              label(j),
				Latency:           raw.Latency[i][j],
				Bandwidth:         raw.Bandwidth[i][j],
				BandwidthUnitCost: raw.LinkUnitCost[i][j],
			}); err != nil {
				return nil, vnferrors.NewParseError(0, "building substrate topology: "+err.Error())
			}
		}
	}
	if err := topo.Validate(); err != nil {
		return nil, vnferrors.NewParseError(0, "substrate topology incomplete: "+err.Error())
	}

	rawByIndex := make(map[int]RawRequest, len(raw.Requests))
	for _, rr := range raw.Requests {
		if rr.ChainLength != raw.NumVNFsPerRequest {
			return nil, vnferrors.NewParseError(0, fmt.Sprintf("request_index %d: chain_length %d differs from num_vnfs_per_request %d", rr.Index, rr.ChainLength, raw.NumVNFsPerRequest))
		}
		rawByIndex[rr.Index] = rr
	}

	reqByFileIndex := make(map[int]request.Request, len(raw.Requests))
	groups := make([]request.Group, 0, len(raw.MainIndices))
	var evaluatedFileIndices []int

	altOffset := 0
	for i, mainIdx := range raw.MainIndices {
		mainReq, err := buildRequest(mainIdx, request.KindMain, rawByIndex, label, resourceTag)
		if err != nil {
			return nil, err
		}
		reqByFileIndex[mainIdx] = mainReq
		evaluatedFileIndices = append(evaluatedFileIndices, mainIdx)

		altCount := 0
		if i < len(raw.AltCounts) {
			altCount = raw.AltCounts[i]
		}
		alts := make([]request.Request, 0, altCount)
		for j := 0; j < altCount; j++ {
			if altOffset >= len(raw.AltIndices) {
				return nil, vnferrors.NewParseError(0, "alternative indices: fewer entries than declared counts")
			}
			altFileIdx := raw.AltIndices[altOffset]
			altOffset++
			altReq, err := buildRequest(altFileIdx, request.KindAlternative, rawByIndex, label, resourceTag)
			if err != nil {
				return nil, err
			}
			reqByFileIndex[altFileIdx] = altReq
			evaluatedFileIndices = append(evaluatedFileIndices, altFileIdx)
			alts = append(alts, altReq)
		}
		groups = append(groups, request.Group{Main: mainReq, Alternatives: alts})
	}

	incompatible := make(map[uuid.UUID]map[string]bool)
	for pos, fileIdx := range evaluatedFileIndices {
		req := reqByFileIndex[fileIdx]
		for slot := 0; slot < req.Service.ChainLength(); slot++ {
			nodes, ok := raw.Incompatibility[[2]int{pos, slot}]
			if !ok || len(nodes) == 0 {
				continue
			}
			vnfID := req.Service.VNFChain[slot].ID()
			set := incompatible[vnfID]
			if set == nil {
				set = make(map[string]bool)
				incompatible[vnfID] = set
			}
			for _, oneBased := range nodes {
				set[label(oneBased-1)] = true
			}
		}
	}

	return &Built{
		Topology:     topo,
		Groups:       groups,
		Incompatible: incompatible,
		MinRatioMain: raw.MinRatioMain,
		Cols:         raw.NumVNFsPerRequest,
	}, nil
}

func buildRequest(fileIdx int, kind request.Kind, rawByIndex map[int]RawRequest, label func(int) string, resourceTag func(int) network.ResourceType) (request.Request, error) {
	rr, ok := rawByIndex[fileIdx]
	if !ok {
		return request.Request{}, vnferrors.NewParseError(0, fmt.Sprintf("request_index %d referenced but never declared", fileIdx))
	}
	ingress := service.NewServiceEndpoint(label(rr.IngressIdx))
	egress := service.NewServiceEndpoint(label(rr.EgressIdx))

	chain := make([]service.Node, rr.ChainLength)
	for j := 0; j < rr.ChainLength; j++ {
		resources := make(map[network.ResourceType]int)
		if j < len(rr.ResourceMatrix) {
			for rt, amt := range rr.ResourceMatrix[j] {
				resources[resourceTag(rt)] = amt
			}
		}
		typeTag := fmt.Sprintf("vnf-type-%d", rr.VNFTypes[j])
		chain[j] = service.NewVNF(typeTag, resources)
	}
	svc := service.New(ingress, chain, egress, rr.LinkBandwidths, rr.MaxLatency)
	return request.Request{Index: fileIdx, Kind: kind, Service: svc, Revenue: rr.Revenue}, nil
}

// indexLabeler returns a function mapping a 0-based index to a
// zero-padded "prefixNN" label, so lexicographic order equals numeric
// order for the full 0..n-1 range.
func indexLabeler(prefix string, n int) func(int) string {
	maxIdx := n - 1
	if maxIdx < 0 {
		maxIdx = 0
	}
	width := len(strconv.Itoa(maxIdx))
	return func(i int) string { return fmt.Sprintf("%s%0*d", prefix, width, i) }
}
