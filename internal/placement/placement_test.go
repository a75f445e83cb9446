package placement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
)

// fixture builds a 2-node complete substrate (n0, n1) each with 10 cpu, and
// one main request with a 1-VNF chain ingress(n0)->vnf->egress(n1) needing
// 4 cpu, 2 bandwidth per hop, latency budget 10.
func fixture(t *testing.T) (*network.Topology, []request.Group) {
	t.Helper()
	topo := network.NewTopology()
	for _, l := range []string{"n0", "n1"} {
		topo.AddNode(network.Node{
			Label:    l,
			Capacity: map[network.ResourceType]int{"cpu": 10},
			UnitCost: map[network.ResourceType]float64{"cpu": 1},
		})
	}
	for _, a := range []string{"n0", "n1"} {
		for _, b := range []string{"n0", "n1"} {
			require.NoError(t, topo.AddLink(network.Link{Tail: a, Head: b, Latency: 1, Bandwidth: 100, BandwidthUnitCost: 0.1}))
		}
	}

	ingress := service.NewServiceEndpoint("n0")
	egress := service.NewServiceEndpoint("n1")
	vnf := service.NewVNF("fw", map[network.ResourceType]int{"cpu": 4})
	svc := service.New(ingress, []service.Node{vnf}, egress, []float64{2, 2}, 10)

	main := request.Request{Index: 1, Kind: request.KindMain, Service: svc, Revenue: 50}
	groups := []request.Group{{Main: main}}
	return topo, groups
}

func TestSnapshot_EmptyIsValidAndZeroProfit(t *testing.T) {
	topo, groups := fixture(t)
	s := New(topo, groups, nil, 0)
	assert.True(t, s.IsValid())
	assert.Equal(t, 0.0, s.Profit())
	assert.False(t, s.IsAccepted(1))
}

func TestSnapshot_WithAssignment_AcceptsAndComputesProfit(t *testing.T) {
	topo, groups := fixture(t)
	s := New(topo, groups, nil, 0)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})

	require.True(t, s.IsValid())
	assert.True(t, s.IsAccepted(1))
	// revenue 50 - node cost (4*1) - link cost (2*0.1 + 2*0.1) = 50-4-0.4 = 45.6
	assert.InDelta(t, 45.6, s.Profit(), 1e-9)
}

func TestSnapshot_WithAssignment_ExceedingCapacityIsInvalid(t *testing.T) {
	topo, groups := fixture(t)
	// shrink capacity below demand.
	n1, _ := topo.Node("n1")
	n1.Capacity["cpu"] = 1
	// Topology.Node returns a struct copy whose Capacity map is shared with
	// the stored node; AddNode stores the updated node explicitly.
	topo.AddNode(n1)

	s := New(topo, groups, nil, 0)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})
	assert.False(t, s.IsValid())
}

func TestSnapshot_MutualExclusivity(t *testing.T) {
	topo, groups := fixture(t)
	alt := request.Request{Index: 2, Kind: request.KindAlternative, Service: groups[0].Main.Service, Revenue: 30}
	groups[0].Alternatives = []request.Request{alt}

	s := New(topo, groups, nil, 0)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})
	s = s.WithAssignment(2, []string{"n0", "n1", "n1"})
	assert.False(t, s.IsValid(), "both main and alternative accepted violates mutual exclusivity")
}

func TestSnapshot_MainRatioFloor(t *testing.T) {
	topo, groups := fixture(t)
	alt := request.Request{Index: 2, Kind: request.KindAlternative, Service: groups[0].Main.Service, Revenue: 30}
	groups = append(groups, request.Group{Main: request.Request{Index: 3, Kind: request.KindMain, Service: groups[0].Main.Service, Revenue: 10}})
	_ = alt

	// Two accepted main requests out of two accepted total (ratio 1.0)
	// against a floor of 0.75 — the floor is satisfied, so valid.
	s := New(topo, groups, nil, 0.75)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})
	s = s.WithAssignment(3, []string{"n0", "n1", "n1"})
	assert.True(t, s.IsValid(), "both accepted are main requests, ratio is 1.0")
}

func TestSnapshot_IncompatibilityBlocksNode(t *testing.T) {
	topo, groups := fixture(t)
	vnfID := groups[0].Main.Service.VNFChain[0].ID()
	incompatible := map[uuid.UUID]map[string]bool{
		vnfID: {"n1": true},
	}

	s := New(topo, groups, incompatible, 0)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})
	assert.False(t, s.IsValid(), "vnf placed on a node it is marked incompatible with")
}

func TestMatrix_EncodeDecodeRoundTrip(t *testing.T) {
	topo, groups := fixture(t)
	s := New(topo, groups, nil, 0)
	s = s.WithAssignment(1, []string{"n0", "n1", "n1"})

	m := Encode(s, 1)
	require.Len(t, m, 1)
	assert.True(t, RowAccepted(m[0]))

	decoded := Decode(m, topo, groups, nil, 0)
	assert.True(t, decoded.IsAccepted(1))
	assert.InDelta(t, s.Profit(), decoded.Profit(), 1e-9)
}

func TestMatrix_MalformedRowDecodesAsRejected(t *testing.T) {
	topo, groups := fixture(t)
	m := Matrix{{0, -1}}
	decoded := Decode(m, topo, groups, nil, 0)
	assert.False(t, decoded.IsAccepted(1))
}
