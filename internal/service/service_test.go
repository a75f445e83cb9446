package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
)

func TestNewServiceEndpointAndVNF_DistinctIdentity(t *testing.T) {
	a := NewVNF("fw", map[network.ResourceType]int{"cpu": 2})
	b := NewVNF("fw", map[network.ResourceType]int{"cpu": 2})

	assert.NotEqual(t, a.ID(), b.ID(), "two structurally identical VNFs must not share identity")
	assert.True(t, a.IsVNF())

	ep := NewServiceEndpoint("n0")
	assert.False(t, ep.IsVNF())
	assert.Equal(t, "n0", ep.NetworkNodeLabel)
}

func TestService_New_BuildsKPlusOneLinks(t *testing.T) {
	ingress := NewServiceEndpoint("n0")
	egress := NewServiceEndpoint("n3")
	chain := []Node{
		NewVNF("fw", nil),
		NewVNF("nat", nil),
	}
	svc := New(ingress, chain, egress, []float64{10, 20, 30}, 5.0)

	assert.Equal(t, 2, svc.ChainLength())
	assert.Len(t, svc.Links, 3)
	assert.Equal(t, 10.0, svc.Links[0].MinimumGuaranteedBandwidth)
	assert.Equal(t, 20.0, svc.Links[1].MinimumGuaranteedBandwidth)
	assert.Equal(t, 30.0, svc.Links[2].MinimumGuaranteedBandwidth)
	assert.Equal(t, ingress.ID(), svc.Links[0].Tail.ID())
	assert.Equal(t, egress.ID(), svc.Links[2].Head.ID())
}
