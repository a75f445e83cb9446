package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
)

func fixtureSnapshot(t *testing.T) *placement.Snapshot {
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
	alt := request.Request{Index: 2, Kind: request.KindAlternative, Service: svc, Revenue: 20}
	groups := []request.Group{{Main: main, Alternatives: []request.Request{alt}}}

	s := placement.New(topo, groups, nil, 0)
	return s.WithAssignment(1, []string{"n0", "n1", "n1"})
}

func TestWriteResult_FieldNamesAndCounts(t *testing.T) {
	snap := fixtureSnapshot(t)
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, WriteResult(path, snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, field := range []string{
		"num_ric", "num_ric_main", "num_ric_sec",
		"num_ric_serv", "num_ric_serv_main", "num_ric_serv_sec",
		"obj_val", "requests",
	} {
		assert.Contains(t, doc, field)
	}

	assert.Equal(t, 2.0, doc["num_ric"])
	assert.Equal(t, 1.0, doc["num_ric_serv"])
	assert.Equal(t, 1.0, doc["num_ric_serv_main"])

	requests := doc["requests"].([]any)
	require.Len(t, requests, 2)
	first := requests[0].(map[string]any)
	for _, field := range []string{"id_richiesta", "req_type", "status", "value_y"} {
		assert.Contains(t, first, field)
	}
	// id_richiesta is the evaluated-order position (0, 1, ...), not the
	// request's own file-assigned Index (1, 2 in this fixture).
	second := requests[1].(map[string]any)
	assert.Equal(t, 0.0, first["id_richiesta"])
	assert.Equal(t, 1.0, second["id_richiesta"])
	vnfs := first["vnfs"].([]any)
	require.Len(t, vnfs, 1)
	vnf := vnfs[0].(map[string]any)
	for _, field := range []string{"id_vnf", "position", "resources", "value_y"} {
		assert.Contains(t, vnf, field)
	}
}

func TestWriteEmpty_WritesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteEmpty(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
