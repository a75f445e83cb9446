// Package config loads the INI configuration file: Fitness_Function_Settings,
// Operator_Settings, and General_Settings, per the external-interfaces
// contract. Parsing uses gopkg.in/ini.v1, the INI library already present
// in the teacher's own dependency closure (cn-dms and ran-dms both load
// config this way).
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/oran-mano/vnf-ga-placer/pkg/vnferrors"
)

// OperatorSpec is a parsed "Name" or "Name(arg)" config value.
type OperatorSpec struct {
	Name   string
	Arg    float64
	HasArg bool
}

var operatorSpecPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)(?:\(([^)]*)\))?$`)

// ParseOperatorSpec parses "Name" or "Name(arg)" where arg is a
// non-negative real. field is used only to name the offending field in
// error messages.
func ParseOperatorSpec(field, raw string) (OperatorSpec, error) {
	raw = strings.TrimSpace(raw)
	m := operatorSpecPattern.FindStringSubmatch(raw)
	if m == nil {
		return OperatorSpec{}, vnferrors.NewConfigError(field, fmt.Sprintf("malformed operator spec %q", raw))
	}
	spec := OperatorSpec{Name: m[1]}
	if m[2] != "" {
		arg, err := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
		if err != nil {
			return OperatorSpec{}, vnferrors.NewConfigError(field, fmt.Sprintf("operator %q argument must be a real number", m[1]))
		}
		if arg < 0 {
			return OperatorSpec{}, vnferrors.NewConfigError(field, fmt.Sprintf("operator %q argument must be non-negative", m[1]))
		}
		spec.Arg, spec.HasArg = arg, true
	}
	return spec, nil
}

func parseOperatorList(field, raw string) ([]OperatorSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]OperatorSpec, 0, len(parts))
	for _, p := range parts {
		spec, err := ParseOperatorSpec(field, strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// Config is the fully parsed, still operator-agnostic configuration: it
// names operators and their arguments but does not construct them (that
// happens in internal/search, which knows both config and internal/ga).
type Config struct {
	ProfitWeight float64

	InitializationOperator OperatorSpec
	SelectionOperator      OperatorSpec
	CrossoverOperator      OperatorSpec
	MutationOperators      []OperatorSpec
	RepairOperators        []OperatorSpec

	PopulationSize                int
	TimeLimit                     time.Duration
	CrossoverProbability          float64
	ChromosomeMutationProbability float64
	NumElite                      int
	InitialPopulationFilePath     string
}

func requireKey(section *ini.Section, field string) (*ini.Key, error) {
	if !section.HasKey(field) {
		return nil, vnferrors.NewConfigError(field, "missing required setting")
	}
	return section.Key(field), nil
}

// Load reads and validates an INI config file.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, vnferrors.NewConfigError(path, "cannot read config file: "+err.Error())
	}

	fitness := f.Section("Fitness_Function_Settings")
	operators := f.Section("Operator_Settings")
	general := f.Section("General_Settings")

	cfg := &Config{}

	pwKey, err := requireKey(fitness, "profit_weight")
	if err != nil {
		return nil, err
	}
	cfg.ProfitWeight, err = pwKey.Float64()
	if err != nil {
		return nil, vnferrors.NewConfigError("profit_weight", "must be a real number")
	}

	for field, dst := range map[string]*OperatorSpec{
		"initialization_operator": &cfg.InitializationOperator,
		"selection_operator":      &cfg.SelectionOperator,
		"crossover_operator":      &cfg.CrossoverOperator,
	} {
		key, err := requireKey(operators, field)
		if err != nil {
			return nil, err
		}
		spec, err := ParseOperatorSpec(field, key.String())
		if err != nil {
			return nil, err
		}
		*dst = spec
	}
	cfg.MutationOperators, err = parseOperatorList("mutation_operators", operators.Key("mutation_operators").String())
	if err != nil {
		return nil, err
	}
	cfg.RepairOperators, err = parseOperatorList("repair_operators", operators.Key("repair_operators").String())
	if err != nil {
		return nil, err
	}

	popKey, err := requireKey(general, "population_size")
	if err != nil {
		return nil, err
	}
	cfg.PopulationSize, err = popKey.Int()
	if err != nil || cfg.PopulationSize <= 0 {
		return nil, vnferrors.NewConfigError("population_size", "must be a positive integer")
	}

	tlKey, err := requireKey(general, "time_limit")
	if err != nil {
		return nil, err
	}
	tl, err := tlKey.Float64()
	if err != nil || tl < 0 {
		return nil, vnferrors.NewConfigError("time_limit", "must be a non-negative real")
	}
	cfg.TimeLimit = time.Duration(tl * float64(time.Second))

	cxKey, err := requireKey(general, "crossover_probability")
	if err != nil {
		return nil, err
	}
	cfg.CrossoverProbability, err = cxKey.Float64()
	if err != nil || cfg.CrossoverProbability < 0 || cfg.CrossoverProbability > 1 {
		return nil, vnferrors.NewConfigError("crossover_probability", "must be in [0,1]")
	}

	cmKey, err := requireKey(general, "chromosome_mutation_probability")
	if err != nil {
		return nil, err
	}
	cfg.ChromosomeMutationProbability, err = cmKey.Float64()
	if err != nil || cfg.ChromosomeMutationProbability < 0 || cfg.ChromosomeMutationProbability > 1 {
		return nil, vnferrors.NewConfigError("chromosome_mutation_probability", "must be in [0,1]")
	}

	neKey, err := requireKey(general, "num_elite")
	if err != nil {
		return nil, err
	}
	cfg.NumElite, err = neKey.Int()
	if err != nil || cfg.NumElite < 0 || cfg.NumElite > cfg.PopulationSize {
		return nil, vnferrors.NewConfigError("num_elite", "must satisfy 0 <= num_elite <= population_size")
	}

	cfg.InitialPopulationFilePath = general.Key("initial_population_file_path").String()

	return cfg, nil
}
