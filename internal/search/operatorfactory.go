package search

import (
	"fmt"

	"github.com/oran-mano/vnf-ga-placer/internal/config"
	"github.com/oran-mano/vnf-ga-placer/internal/ga"
	"github.com/oran-mano/vnf-ga-placer/internal/operators"
	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

func buildInitialization(spec config.OperatorSpec) (ga.Initialization, error) {
	switch spec.Name {
	case "RandomInitialization":
		return operators.RandomInitialization{}, nil
	default:
		return nil, vnferrors.NewConfigError("initialization_operator", "unknown operator "+spec.Name)
	}
}

func buildSelection(spec config.OperatorSpec) (ga.Selection, error) {
	switch spec.Name {
	case "LinearRankSelection":
		return operators.LinearRankSelection{}, nil
	case "ExponentialRankSelection":
		if !spec.HasArg {
			return nil, vnferrors.NewConfigError("selection_operator", "ExponentialRankSelection requires an alpha argument")
		}
		if spec.Arg <= 0 || spec.Arg >= 1 {
			return nil, vnferrors.NewConfigError("selection_operator", "ExponentialRankSelection alpha must be in (0,1)")
		}
		return operators.ExponentialRankSelection{Alpha: spec.Arg}, nil
	case "TournamentSelection":
		k := 2
		if spec.HasArg {
			k = int(spec.Arg)
		}
		if k <= 0 {
			return nil, vnferrors.NewConfigError("selection_operator", "TournamentSelection k must be positive")
		}
		return operators.TournamentSelection{K: k}, nil
	default:
		return nil, vnferrors.NewConfigError("selection_operator", "unknown operator "+spec.Name)
	}
}

func buildCrossover(spec config.OperatorSpec) (ga.Crossover, error) {
	switch spec.Name {
	case "RowSwapCrossover":
		return operators.RowSwapCrossover{}, nil
	default:
		return nil, vnferrors.NewConfigError("crossover_operator", "unknown operator "+spec.Name)
	}
}

func buildMutation(spec config.OperatorSpec) (ga.Mutation, error) {
	switch spec.Name {
	case "RandomAcceptanceMutation":
		if !spec.HasArg {
			return nil, vnferrors.NewConfigError("mutation_operators", "RandomAcceptanceMutation requires a probability argument")
		}
		return operators.RandomAcceptanceMutation{P: spec.Arg}, nil
	case "RandomRejectionMutation":
		if !spec.HasArg {
			return nil, vnferrors.NewConfigError("mutation_operators", "RandomRejectionMutation requires a probability argument")
		}
		return operators.RandomRejectionMutation{P: spec.Arg}, nil
	default:
		return nil, vnferrors.NewConfigError("mutation_operators", "unknown operator "+spec.Name)
	}
}

func buildRepair(spec config.OperatorSpec) (ga.Repair, error) {
	return nil, vnferrors.NewConfigError("repair_operators", fmt.Sprintf("unknown repair operator %q (no repair operators are recognized by default)", spec.Name))
}

// BuildOperatorSuite materializes the concrete operators named by cfg.
func BuildOperatorSuite(cfg *config.Config) (ga.OperatorSuite, error) {
	var suite ga.OperatorSuite
	var err error

	if suite.Initialization, err = buildInitialization(cfg.InitializationOperator); err != nil {
		return suite, err
	}
	if suite.Selection, err = buildSelection(cfg.SelectionOperator); err != nil {
		return suite, err
	}
	if suite.Crossover, err = buildCrossover(cfg.CrossoverOperator); err != nil {
		return suite, err
	}
	for _, spec := range cfg.MutationOperators {
		m, err := buildMutation(spec)
		if err != nil {
			return suite, err
		}
		suite.Mutations = append(suite.Mutations, m)
	}
	for _, spec := range cfg.RepairOperators {
		r, err := buildRepair(spec)
		if err != nil {
			return suite, err
		}
		suite.Repairs = append(suite.Repairs, r)
	}
	return suite, nil
}
