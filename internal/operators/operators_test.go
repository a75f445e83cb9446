package operators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oran-mano/vnf-ga-placer/internal/ga"
	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/internal/service"
)

func fixtureContext(t *testing.T) *ga.Context {
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
	return &ga.Context{Topology: topo, Groups: groups, Cols: 1}
}

func chromosomeWithFitness(ctx *ga.Context, fitness float64) *ga.Chromosome {
	c := ga.NewChromosome(ctx, placement.Matrix{{-1}})
	c.Fitness = fitness
	return c
}

func TestSUS_ProbabilitiesMustSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := sus(rng, []float64{0.1, 0.1}, 5)
	assert.Error(t, err)
}

func TestSUS_SelectsEveryHighProbabilityMember(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	probs := []float64{0.5, 0.5}
	picks, err := sus(rng, probs, 10)
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, p := range picks {
		seen[p] = true
	}
	assert.Len(t, seen, 2, "every member with probability >= 1/n must be picked at least once")
}

func TestLinearRankSelection_ProducesRequestedCount(t *testing.T) {
	ctx := fixtureContext(t)
	population := []*ga.Chromosome{
		chromosomeWithFitness(ctx, 1),
		chromosomeWithFitness(ctx, 5),
		chromosomeWithFitness(ctx, 3),
	}
	rng := rand.New(rand.NewSource(7))
	out, err := LinearRankSelection{}.Select(rng, population, 6)
	require.NoError(t, err)
	assert.Len(t, out, 6)
}

func TestExponentialRankSelection_ProbabilitiesSumToOne(t *testing.T) {
	N := 5
	alpha := 0.7
	denom := math.Pow(alpha, float64(N)) - 1
	var sum float64
	for i := 1; i <= N; i++ {
		sum += ((alpha - 1) * math.Pow(alpha, float64(i-1))) / denom
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTournamentSelection_PrefersFitterChromosome(t *testing.T) {
	ctx := fixtureContext(t)
	weak := chromosomeWithFitness(ctx, 0)
	strong := chromosomeWithFitness(ctx, 100)
	population := []*ga.Chromosome{weak, strong}
	rng := rand.New(rand.NewSource(3))

	out, err := TournamentSelection{K: 2}.Select(rng, population, 20)
	require.NoError(t, err)

	strongCount := 0
	for _, c := range out {
		if c.Fitness == 100 {
			strongCount++
		}
	}
	assert.Greater(t, strongCount, len(out)/2, "fitter chromosome should win most tournaments")
}

func TestRowSwapCrossover_ChildrenAreValidOrParents(t *testing.T) {
	ctx := fixtureContext(t)
	rng := rand.New(rand.NewSource(9))

	a := ga.NewChromosome(ctx, placement.Matrix{{0}})
	b := ga.NewChromosome(ctx, placement.Matrix{{-1}})

	c1, c2 := RowSwapCrossover{}.Cross(ctx, rng, a, b)
	require.NotNil(t, c1)
	require.NotNil(t, c2)
	assert.True(t, ctx.Decode(c1.Matrix).IsValid())
	assert.True(t, ctx.Decode(c2.Matrix).IsValid())
}

func TestRandomRejectionMutation_NeverIncreasesAcceptance(t *testing.T) {
	ctx := fixtureContext(t)
	c := ga.NewChromosome(ctx, placement.Matrix{{0}})
	rng := rand.New(rand.NewSource(1))

	mutated, err := RandomRejectionMutation{P: 1.0}.Mutate(ctx, rng, c)
	require.NoError(t, err)
	assert.False(t, placement.RowAccepted(mutated.Matrix[0]))
}

func TestRandomInitialization_ProducesValidMatrix(t *testing.T) {
	ctx := fixtureContext(t)
	rng := rand.New(rand.NewSource(11))

	m := RandomInitialization{}.Initialize(ctx, rng)
	require.Len(t, m, 1)
	assert.True(t, ctx.Decode(m).IsValid())
}

func TestRandomAcceptanceMutation_AcceptedResultIsValid(t *testing.T) {
	ctx := fixtureContext(t)
	c := ga.NewChromosome(ctx, placement.Matrix{{-1}})
	rng := rand.New(rand.NewSource(5))

	mutated, err := RandomAcceptanceMutation{P: 1.0}.Mutate(ctx, rng, c)
	require.NoError(t, err)
	assert.True(t, ctx.Decode(mutated.Matrix).IsValid())
}
