// Package search glues configuration, parsed input, the GA driver and
// observability together: it is the orchestration layer the CLI calls
// into, analogous to the original program's top-level searcher object.
package search

import (
	"bufio"
	"encoding/json"
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/oran-mano/vnf-ga-placer/internal/config"
	"github.com/oran-mano/vnf-ga-placer/internal/ga"
	"github.com/oran-mano/vnf-ga-placer/internal/inputfile"
	"github.com/oran-mano/vnf-ga-placer/internal/placement"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// Runner owns everything needed to execute one search: the GA context,
// settings, operator suite, fitness function, and the optional
// observability sinks (logger, Prometheus metrics, fitness-tracking CSV).
type Runner struct {
	Ctx       *ga.Context
	Settings  ga.Settings
	Operators ga.OperatorSuite
	Fitness   ga.FitnessFunc

	Logger  *logrus.Entry
	Metrics *Metrics

	TrackFitnessPath string
}

// NewRunner builds a Runner from parsed input and configuration. metrics
// may be nil to disable Prometheus observation.
func NewRunner(built *inputfile.Built, cfg *config.Config, logger *logrus.Entry, metrics *Metrics) (*Runner, error) {
	suite, err := BuildOperatorSuite(cfg)
	if err != nil {
		return nil, err
	}

	ctx := &ga.Context{
		Topology:     built.Topology,
		Groups:       built.Groups,
		Incompatible: built.Incompatible,
		MinRatioMain: built.MinRatioMain,
		Cols:         built.Cols,
	}
	if metrics != nil {
		ctx.OnAccept = func(accepted bool) {
			outcome := "rejected"
			if accepted {
				outcome = "accepted"
			}
			metrics.AcceptOutcomes.WithLabelValues(outcome).Inc()
		}
	}

	return &Runner{
		Ctx:       ctx,
		Settings: ga.Settings{
			PopulationSize:       cfg.PopulationSize,
			TimeLimit:            cfg.TimeLimit,
			CrossoverProbability: cfg.CrossoverProbability,
			MutationProbability:  cfg.ChromosomeMutationProbability,
			NumElite:             cfg.NumElite,
		},
		Operators: suite,
		Fitness:   ga.ProfitWeighted(cfg.ProfitWeight),
		Logger:    logger,
		Metrics:   metrics,
	}, nil
}

// Run executes the search to termination and returns the best valid
// placement found, if any.
func (r *Runner) Run(rng *rand.Rand, initialPopulationPath string) (*placement.Snapshot, bool, error) {
	seed, err := r.loadInitialPopulation(initialPopulationPath)
	if err != nil {
		return nil, false, err
	}

	var tracker *fitnessTracker
	if r.TrackFitnessPath != "" {
		tracker, err = newFitnessTracker(r.TrackFitnessPath)
		if err != nil {
			return nil, false, err
		}
		defer tracker.Close()
	}

	term := ga.NewTermination(r.Settings.TimeLimit)
	driver := &ga.Driver{
		Ctx:       r.Ctx,
		Settings:  r.Settings,
		Operators: r.Operators,
		Fitness:   r.Fitness,
		Observer: func(generation int, best float64) {
			if r.Logger != nil {
				r.Logger.WithFields(logrus.Fields{"generation": generation, "best_fitness": best}).Info("generation complete")
			}
			if tracker != nil {
				_ = tracker.Record(generation, best)
			}
			if r.Metrics != nil {
				r.Metrics.GenerationFitness.Observe(best)
				r.Metrics.ElapsedFraction.Set(term.ElapsedFraction())
			}
		},
	}

	snap, ok := driver.Run(term, rng, seed)
	return snap, ok, nil
}

func (r *Runner) loadInitialPopulation(path string) ([]placement.Matrix, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, vnferrors.NewConfigError("initial_population_file_path", "cannot open: "+err.Error())
	}
	defer f.Close()

	var seed []placement.Matrix
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() && len(seed) < r.Settings.PopulationSize {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var m placement.Matrix
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, vnferrors.NewConfigError("initial_population_file_path", "malformed matrix row: "+err.Error())
		}
		seed = append(seed, m)
	}
	if err := sc.Err(); err != nil {
		return nil, vnferrors.NewConfigError("initial_population_file_path", "error reading: "+err.Error())
	}
	return seed, nil
}
