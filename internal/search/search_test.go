package search

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oran-mano/vnf-ga-placer/internal/inputfile"
	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
)

func fixtureBuilt(t *testing.T) *inputfile.Built {
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
	return &inputfile.Built{Topology: topo, Groups: groups, Cols: 1}
}

func TestNewRunner_WiresSettingsFromConfig(t *testing.T) {
	built := fixtureBuilt(t)
	cfg := validConfig()
	cfg.TimeLimit = 5 * time.Millisecond
	logger := logrus.NewEntry(logrus.New())

	runner, err := NewRunner(built, cfg, logger, NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, cfg.PopulationSize, runner.Settings.PopulationSize)
	assert.Equal(t, cfg.TimeLimit, runner.Settings.TimeLimit)
}

func TestRunner_Run_NoSeedProducesSnapshot(t *testing.T) {
	built := fixtureBuilt(t)
	cfg := validConfig()
	cfg.TimeLimit = 10 * time.Millisecond
	cfg.PopulationSize = 4
	cfg.NumElite = 1
	logger := logrus.NewEntry(logrus.New())

	runner, err := NewRunner(built, cfg, logger, NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	snap, ok, err := runner.Run(rng, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, snap.IsValid())
}

func TestRunner_LoadInitialPopulation_ParsesJSONLines(t *testing.T) {
	built := fixtureBuilt(t)
	cfg := validConfig()
	logger := logrus.NewEntry(logrus.New())
	runner, err := NewRunner(built, cfg, logger, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.jsonl")
	var lines []byte
	m := placement.Matrix{{0}}
	data, _ := json.Marshal(m)
	lines = append(lines, data...)
	lines = append(lines, '\n')
	require.NoError(t, os.WriteFile(path, lines, 0o644))

	seed, err := runner.loadInitialPopulation(path)
	require.NoError(t, err)
	require.Len(t, seed, 1)
	assert.Equal(t, 0, seed[0][0][0])
}

func TestRunner_LoadInitialPopulation_EmptyPathIsNoop(t *testing.T) {
	built := fixtureBuilt(t)
	cfg := validConfig()
	logger := logrus.NewEntry(logrus.New())
	runner, err := NewRunner(built, cfg, logger, nil)
	require.NoError(t, err)

	seed, err := runner.loadInitialPopulation("")
	require.NoError(t, err)
	assert.Nil(t, seed)
}
