// Package ga implements the genetic-algorithm core: the chromosome
// representation, the operator interfaces every concrete operator in
// internal/operators satisfies, and the population-lifecycle driver.
package ga

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/oran-mano/vnf-ga-placer/internal/network"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/internal/request"
)

// Context bundles the fixed inputs every operator and chromosome needs:
// the substrate, the request groups, compatibility data, the main-ratio
// floor, and the uniform per-request chain length used to size matrices.
type Context struct {
	Topology     *network.Topology
	Groups       []request.Group
	Incompatible map[uuid.UUID]map[string]bool
	MinRatioMain float64
	Cols         int

	// OnAccept, if set, is called by operators that drive the accepter
	// (initialization, random-acceptance mutation) after every attempt,
	// reporting whether it succeeded. Used to feed the accept/reject
	// Prometheus counter; nil is a valid no-op default.
	OnAccept func(accepted bool)
}

// ReportAccept notifies OnAccept (if configured) of one accepter attempt
// outcome.
func (c *Context) ReportAccept(accepted bool) {
	if c.OnAccept != nil {
		c.OnAccept(accepted)
	}
}

func (c *Context) Evaluated() []request.Request { return request.EvaluatedRequests(c.Groups) }

func (c *Context) EmptySnapshot() *placement.Snapshot {
	return placement.New(c.Topology, c.Groups, c.Incompatible, c.MinRatioMain)
}

func (c *Context) Decode(m placement.Matrix) *placement.Snapshot {
	return placement.Decode(m, c.Topology, c.Groups, c.Incompatible, c.MinRatioMain)
}

func (c *Context) Encode(s *placement.Snapshot) placement.Matrix {
	return placement.Encode(s, c.Cols)
}

// Chromosome is a placement matrix plus its cached fitness and a decoding
// closure that rebuilds a placement snapshot from the matrix.
type Chromosome struct {
	Matrix  placement.Matrix
	Fitness float64

	decode func(placement.Matrix) *placement.Snapshot
}

func NewChromosome(ctx *Context, m placement.Matrix) *Chromosome {
	return &Chromosome{Matrix: m, decode: ctx.Decode}
}

func (c *Chromosome) Decode() *placement.Snapshot { return c.decode(c.Matrix) }

// Clone deep-copies the matrix; the fitness value and decode closure
// carry over (a caller that mutates Matrix must re-evaluate fitness).
func (c *Chromosome) Clone() *Chromosome {
	m := make(placement.Matrix, len(c.Matrix))
	for i, row := range c.Matrix {
		m[i] = append([]int(nil), row...)
	}
	return &Chromosome{Matrix: m, Fitness: c.Fitness, decode: c.decode}
}

// FitnessFunc scores a chromosome. ProfitWeighted is the only fitness
// function the spec names: fitness(c) = profit_weight * profit(decode(c)).
type FitnessFunc func(*Chromosome) float64

func ProfitWeighted(profitWeight float64) FitnessFunc {
	return func(c *Chromosome) float64 { return profitWeight * c.Decode().Profit() }
}

// Initialization seeds one chromosome's matrix from scratch, typically by
// driving the accepter over a shuffled request order.
type Initialization interface {
	Initialize(ctx *Context, rng *rand.Rand) placement.Matrix
}

// Selection draws exactly n chromosomes from population (with
// replacement, per the rank/tournament samplers).
type Selection interface {
	Select(rng *rand.Rand, population []*Chromosome, n int) ([]*Chromosome, error)
}

// Crossover recombines two parents into two children.
type Crossover interface {
	Cross(ctx *Context, rng *rand.Rand, a, b *Chromosome) (*Chromosome, *Chromosome)
}

// Mutation perturbs one chromosome, returning a (possibly identical)
// replacement.
type Mutation interface {
	Mutate(ctx *Context, rng *rand.Rand, c *Chromosome) (*Chromosome, error)
}

// Repair maps a chromosome to one satisfying the placement validity
// predicate. The default is identity: no repair operators configured.
type Repair interface {
	Repair(ctx *Context, c *Chromosome) *Chromosome
}

// OperatorSuite is the full set of configured operators for a run.
type OperatorSuite struct {
	Initialization Initialization
	Selection      Selection
	Crossover      Crossover
	Mutations      []Mutation
	Repairs        []Repair
}

// Settings are the General_Settings-derived tunables of one search run.
type Settings struct {
	PopulationSize       int
	TimeLimit            time.Duration
	CrossoverProbability float64
	MutationProbability  float64
	NumElite             int
}

// Termination is a wall-clock budget sampled only at the top of the
// generation loop; partial generations are never started.
type Termination struct {
	start time.Time
	limit time.Duration
}

func NewTermination(limit time.Duration) *Termination {
	return &Termination{start: time.Now(), limit: limit}
}

func (t *Termination) Done() bool { return time.Since(t.start) >= t.limit }

// ElapsedFraction reports how much of the time budget has elapsed, clamped
// to [0, 1]. A zero or negative limit is treated as already exhausted.
func (t *Termination) ElapsedFraction() float64 {
	if t.limit <= 0 {
		return 1
	}
	f := time.Since(t.start).Seconds() / t.limit.Seconds()
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// GenerationObserver is called once per completed generation, chiefly to
// drive --track-fitness CSV rows and the best-fitness Prometheus gauge.
type GenerationObserver func(generation int, bestFitness float64)

// Driver runs the population lifecycle: repair, evaluate, elitism,
// selection, crossover, mutation, replace — until termination.
type Driver struct {
	Ctx       *Context
	Settings  Settings
	Operators OperatorSuite
	Fitness   FitnessFunc
	Observer  GenerationObserver
}

// Run builds the initial population (reading up to PopulationSize
// chromosomes from seed, filling the remainder via the initialization
// operator), evolves it until term fires, and returns the final fittest
// chromosome's snapshot if it is valid, otherwise the fittest valid
// snapshot seen in any population. ok is false iff no valid placement was
// ever produced — the "no-solution" outcome, not an error.
func (d *Driver) Run(term *Termination, rng *rand.Rand, seed []placement.Matrix) (snapshot *placement.Snapshot, ok bool) {
	population := d.buildInitialPopulation(rng, seed)

	var bestValid *placement.Snapshot
	var bestValidFitness float64

	// considerBestValid scans the whole population, not just its overall
	// fittest member: an invalid chromosome (e.g. an unvalidated seed from
	// the initial-population file) can dominate raw fitness and mask valid
	// chromosomes coexisting in the same generation.
	considerBestValid := func(pop []*Chromosome) {
		for _, c := range pop {
			snap := c.Decode()
			if snap.IsValid() && (bestValid == nil || c.Fitness > bestValidFitness) {
				bestValid, bestValidFitness = snap, c.Fitness
			}
		}
	}
	considerBestValid(population)

	generation := 0
	for !term.Done() {
		population = d.stepGeneration(rng, population)
		best := bestOf(population)
		considerBestValid(population)
		if d.Observer != nil {
			d.Observer(generation, best.Fitness)
		}
		generation++
	}

	// Final repair + evaluation pass after termination.
	for i, c := range population {
		population[i] = d.repair(c)
		population[i].Fitness = d.Fitness(population[i])
	}
	best := bestOf(population)
	considerBestValid(population)

	// Fitness carries no penalty for invalidity (spec open question), so
	// the final population's raw-fittest chromosome can outrank every
	// valid one ever seen. Fall back to the best valid placement observed
	// across all generations rather than declaring no-solution prematurely.
	snap := best.Decode()
	if snap.IsValid() {
		return snap, true
	}
	if bestValid != nil {
		return bestValid, true
	}
	return nil, false
}

func (d *Driver) buildInitialPopulation(rng *rand.Rand, seed []placement.Matrix) []*Chromosome {
	population := make([]*Chromosome, 0, d.Settings.PopulationSize)
	for _, m := range seed {
		if len(population) >= d.Settings.PopulationSize {
			break
		}
		population = append(population, NewChromosome(d.Ctx, m))
	}
	for len(population) < d.Settings.PopulationSize {
		m := d.Operators.Initialization.Initialize(d.Ctx, rng)
		population = append(population, NewChromosome(d.Ctx, m))
	}
	for i, c := range population {
		population[i] = d.repair(c)
		population[i].Fitness = d.Fitness(population[i])
	}
	return population
}

func (d *Driver) repair(c *Chromosome) *Chromosome {
	for _, r := range d.Operators.Repairs {
		c = r.Repair(d.Ctx, c)
	}
	return c
}

func (d *Driver) stepGeneration(rng *rand.Rand, population []*Chromosome) []*Chromosome {
	// 1. Repair.
	for i, c := range population {
		population[i] = d.repair(c)
	}
	// 2. Evaluate.
	for i, c := range population {
		population[i].Fitness = d.Fitness(c)
	}
	// 3. Elitism.
	elite := topN(population, d.Settings.NumElite)

	// 4. Parent selection.
	numParents := d.Settings.PopulationSize - d.Settings.NumElite
	if numParents < 0 {
		numParents = 0
	}
	parents, err := d.Operators.Selection.Select(rng, population, numParents)
	if err != nil || len(parents) == 0 {
		// Selection failure (e.g. misconfigured probabilities) degrades to
		// elitism-only reproduction rather than crashing the run; the
		// config validator is responsible for catching this earlier.
		parents = cloneAll(elite)
	}

	// 5. Crossover.
	shuffled := append([]*Chromosome(nil), parents...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if len(shuffled)%2 == 1 && len(shuffled) > 0 {
		shuffled = append(shuffled, shuffled[0])
	}
	children := make([]*Chromosome, 0, numParents)
	for i := 0; i+1 < len(shuffled); i += 2 {
		a, b := shuffled[i], shuffled[i+1]
		if rng.Float64() < d.Settings.CrossoverProbability {
			c1, c2 := d.Operators.Crossover.Cross(d.Ctx, rng, a, b)
			children = append(children, c1, c2)
		} else {
			children = append(children, a.Clone(), b.Clone())
		}
	}
	if len(children) > numParents {
		children = children[:numParents]
	}

	// 6. Mutation.
	for i, child := range children {
		for _, mut := range d.Operators.Mutations {
			if rng.Float64() < d.Settings.MutationProbability {
				next, err := mut.Mutate(d.Ctx, rng, child)
				if err == nil {
					child = next
				}
			}
		}
		children[i] = child
	}

	// 7. Replace.
	next := make([]*Chromosome, 0, d.Settings.PopulationSize)
	next = append(next, elite...)
	next = append(next, children...)
	return next
}

func cloneAll(cs []*Chromosome) []*Chromosome {
	out := make([]*Chromosome, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func topN(population []*Chromosome, n int) []*Chromosome {
	if n <= 0 {
		return nil
	}
	sorted := append([]*Chromosome(nil), population...)
	// Simple insertion-based top-N selection; population sizes in this
	// domain are small (tens to low hundreds), so an O(n*P) pass is fine.
	best := make([]*Chromosome, 0, n)
	used := make([]bool, len(sorted))
	for len(best) < n && len(best) < len(sorted) {
		bestIdx := -1
		for i, c := range sorted {
			if used[i] {
				continue
			}
			if bestIdx == -1 || c.Fitness > sorted[bestIdx].Fitness {
				bestIdx = i
			}
		}
		used[bestIdx] = true
		best = append(best, sorted[bestIdx].Clone())
	}
	return best
}

func bestOf(population []*Chromosome) *Chromosome {
	best := population[0]
	for _, c := range population[1:] {
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best
}
