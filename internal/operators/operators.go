// Package operators implements the concrete GA operator family named in
// Operator_Settings: random initialization, rank/tournament selection,
// row-swap crossover, and the random acceptance/rejection mutations. Each
// type satisfies the corresponding interface in internal/ga.
package operators

import (
	"math"
	"math/rand"
	"sort"

	"github.com/oran-mano/vnf-ga-placer/internal/accepter"
	"github.com/oran-mano/vnf-ga-placer/internal/ga"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// RandomInitialization builds a chromosome by running the accepter over a
// uniformly shuffled request order, starting from the all-rejected
// placement.
type RandomInitialization struct{}

func (RandomInitialization) Initialize(ctx *ga.Context, rng *rand.Rand) placement.Matrix {
	acc := accepter.New(ctx.EmptySnapshot(), ctx.Groups)
	evaluated := ctx.Evaluated()
	order := rng.Perm(len(evaluated))
	for _, idx := range order {
		ok, _ := acc.Accept(evaluated[idx], rng)
		ctx.ReportAccept(ok)
	}
	return ctx.Encode(acc.Committed())
}

// --- Selection -------------------------------------------------------

const probabilitySumTolerance = 1e-6

// sus performs stochastic universal sampling: one uniform offset in
// [0, 1/n), then n equally-spaced pointers along the cumulative
// probability line, each resolved to the population member whose
// cumulative interval contains it.
func sus(rng *rand.Rand, probs []float64, n int) ([]int, error) {
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > probabilitySumTolerance {
		return nil, vnferrors.NewConfigError("selection_probabilities", "probabilities must sum to 1")
	}
	cum := make([]float64, len(probs))
	running := 0.0
	for i, p := range probs {
		running += p
		cum[i] = running
	}

	spacing := 1.0 / float64(n)
	pointer := rng.Float64() * spacing
	out := make([]int, 0, n)
	i := 0
	for j := 0; j < n; j++ {
		target := pointer + float64(j)*spacing
		for i < len(cum)-1 && cum[i] < target {
			i++
		}
		out = append(out, i)
	}
	return out, nil
}

func byRank(population []*ga.Chromosome, ascending bool) []int {
	idx := make([]int, len(population))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		if ascending {
			return population[idx[i]].Fitness < population[idx[j]].Fitness
		}
		return population[idx[i]].Fitness > population[idx[j]].Fitness
	})
	return idx
}

// LinearRankSelection assigns p_i = i / sum(i) to the i-th worst
// chromosome (rank 1 = worst) and samples via SUS.
type LinearRankSelection struct{}

func (LinearRankSelection) Select(rng *rand.Rand, population []*ga.Chromosome, n int) ([]*ga.Chromosome, error) {
	order := byRank(population, true) // ascending: order[0] is worst
	N := len(population)
	denom := float64(N*(N+1)) / 2
	probs := make([]float64, N)
	for rank, popIdx := range order {
		probs[popIdx] = float64(rank+1) / denom
	}
	return sampleByProbability(rng, population, probs, n)
}

// ExponentialRankSelection assigns p_i = ((alpha-1) * alpha^(i-1)) /
// (alpha^N - 1) to the i-th best chromosome (rank 1 = best, alpha in
// (0,1)) and samples via SUS.
type ExponentialRankSelection struct{ Alpha float64 }

func (e ExponentialRankSelection) Select(rng *rand.Rand, population []*ga.Chromosome, n int) ([]*ga.Chromosome, error) {
	order := byRank(population, false) // descending: order[0] is best
	N := len(population)
	denom := math.Pow(e.Alpha, float64(N)) - 1
	probs := make([]float64, N)
	for rank, popIdx := range order {
		i := rank + 1
		probs[popIdx] = ((e.Alpha - 1) * math.Pow(e.Alpha, float64(i-1))) / denom
	}
	return sampleByProbability(rng, population, probs, n)
}

func sampleByProbability(rng *rand.Rand, population []*ga.Chromosome, probs []float64, n int) ([]*ga.Chromosome, error) {
	picks, err := sus(rng, probs, n)
	if err != nil {
		return nil, err
	}
	out := make([]*ga.Chromosome, len(picks))
	for i, p := range picks {
		out[i] = population[p].Clone()
	}
	return out, nil
}

// TournamentSelection repeatedly draws K chromosomes uniformly with
// replacement and emits the fittest, until n results are produced.
type TournamentSelection struct{ K int }

func (t TournamentSelection) Select(rng *rand.Rand, population []*ga.Chromosome, n int) ([]*ga.Chromosome, error) {
	k := t.K
	if k <= 0 {
		k = 2
	}
	out := make([]*ga.Chromosome, 0, n)
	for len(out) < n {
		best := population[rng.Intn(len(population))]
		for i := 1; i < k; i++ {
			cand := population[rng.Intn(len(population))]
			if cand.Fitness > best.Fitness {
				best = cand
			}
		}
		out = append(out, best.Clone())
	}
	return out, nil
}

// --- Crossover ---------------------------------------------------------

// RowSwapCrossover groups placement-matrix rows by mutually-exclusive
// group (one contiguous block per main request), tries swapping each
// group's rows between the parents in shuffled group order, and commits
// the first swap that leaves both children valid. If no group produces a
// valid pair, both children are deep copies of the parents.
type RowSwapCrossover struct{}

func rowSpans(groups []request.Group) [][2]int {
	spans := make([][2]int, 0, len(groups))
	offset := 0
	for _, g := range groups {
		n := len(g.Members())
		spans = append(spans, [2]int{offset, offset + n})
		offset += n
	}
	return spans
}

func blockHasAcceptance(m placement.Matrix, span [2]int) bool {
	for r := span[0]; r < span[1] && r < len(m); r++ {
		for _, v := range m[r] {
			if v >= 0 {
				return true
			}
		}
	}
	return false
}

func (RowSwapCrossover) Cross(ctx *ga.Context, rng *rand.Rand, a, b *ga.Chromosome) (*ga.Chromosome, *ga.Chromosome) {
	spans := rowSpans(ctx.Groups)
	order := rng.Perm(len(spans))
	for _, gi := range order {
		span := spans[gi]
		if !blockHasAcceptance(a.Matrix, span) && !blockHasAcceptance(b.Matrix, span) {
			continue
		}
		c1, c2 := a.Clone(), b.Clone()
		for r := span[0]; r < span[1] && r < len(c1.Matrix); r++ {
			c1.Matrix[r], c2.Matrix[r] = append([]int(nil), b.Matrix[r]...), append([]int(nil), a.Matrix[r]...)
		}
		if ctx.Decode(c1.Matrix).IsValid() && ctx.Decode(c2.Matrix).IsValid() {
			return c1, c2
		}
	}
	return a.Clone(), b.Clone()
}

// --- Mutation ----------------------------------------------------------

// RandomAcceptanceMutation iterates evaluated requests in shuffled order
// and, for each currently-rejected one, invokes the accepter with
// independent probability P.
type RandomAcceptanceMutation struct{ P float64 }

func (m RandomAcceptanceMutation) Mutate(ctx *ga.Context, rng *rand.Rand, c *ga.Chromosome) (*ga.Chromosome, error) {
	start := c.Decode()
	if !start.IsValid() {
		// Bail rather than assert: an already-invalid input can only have
		// been left that way by an earlier operator, never by this one.
		return c, nil
	}
	acc := accepter.New(start, ctx.Groups)
	evaluated := ctx.Evaluated()
	order := rng.Perm(len(evaluated))
	for _, idx := range order {
		r := evaluated[idx]
		if acc.Committed().IsAccepted(r.Index) {
			continue
		}
		if rng.Float64() < m.P {
			ok, err := acc.Accept(r, rng)
			if err != nil {
				return nil, err
			}
			ctx.ReportAccept(ok)
		}
	}
	if !acc.Committed().IsValid() {
		return nil, vnferrors.NewInvariantError("random acceptance mutation produced an invalid placement")
	}
	return ga.NewChromosome(ctx, ctx.Encode(acc.Committed())), nil
}

// RandomRejectionMutation iterates matrix rows in shuffled order and, for
// each currently-accepted row, with independent probability P sets every
// cell to -1. Never requires re-validation: rejecting a request can only
// relax capacity, latency, bandwidth and compatibility constraints.
type RandomRejectionMutation struct{ P float64 }

func (m RandomRejectionMutation) Mutate(_ *ga.Context, rng *rand.Rand, c *ga.Chromosome) (*ga.Chromosome, error) {
	next := c.Clone()
	order := rng.Perm(len(next.Matrix))
	for _, r := range order {
		if !placement.RowAccepted(next.Matrix[r]) {
			continue
		}
		if rng.Float64() < m.P {
			for j := range next.Matrix[r] {
				next.Matrix[r][j] = -1
			}
		}
	}
	return next, nil
}
