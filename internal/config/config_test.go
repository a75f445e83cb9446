package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validINI = `
[Fitness_Function_Settings]
profit_weight = 1.5

[Operator_Settings]
initialization_operator = RandomInitialization
selection_operator = ExponentialRankSelection(0.8)
crossover_operator = RowSwapCrossover
mutation_operators = RandomAcceptanceMutation(0.1), RandomRejectionMutation(0.05)
repair_operators =

[General_Settings]
population_size = 50
time_limit = 10
crossover_probability = 0.9
chromosome_mutation_probability = 0.2
num_elite = 2
initial_population_file_path =
`

func writeTempINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeTempINI(t, validINI)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.5, cfg.ProfitWeight)
	assert.Equal(t, "RandomInitialization", cfg.InitializationOperator.Name)
	assert.Equal(t, "ExponentialRankSelection", cfg.SelectionOperator.Name)
	assert.InDelta(t, 0.8, cfg.SelectionOperator.Arg, 1e-9)
	assert.True(t, cfg.SelectionOperator.HasArg)
	assert.Len(t, cfg.MutationOperators, 2)
	assert.Equal(t, 50, cfg.PopulationSize)
	assert.Equal(t, 2, cfg.NumElite)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	broken := `
[Fitness_Function_Settings]
[Operator_Settings]
initialization_operator = RandomInitialization
selection_operator = LinearRankSelection
crossover_operator = RowSwapCrossover
[General_Settings]
population_size = 10
time_limit = 5
crossover_probability = 0.5
chromosome_mutation_probability = 0.1
num_elite = 1
`
	path := writeTempINI(t, broken)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NumEliteExceedsPopulationSize(t *testing.T) {
	broken := `
[Fitness_Function_Settings]
profit_weight = 1
[Operator_Settings]
initialization_operator = RandomInitialization
selection_operator = LinearRankSelection
crossover_operator = RowSwapCrossover
[General_Settings]
population_size = 5
time_limit = 1
crossover_probability = 0.5
chromosome_mutation_probability = 0.1
num_elite = 10
`
	path := writeTempINI(t, broken)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseOperatorSpec(t *testing.T) {
	spec, err := ParseOperatorSpec("field", "TournamentSelection(3)")
	require.NoError(t, err)
	assert.Equal(t, "TournamentSelection", spec.Name)
	assert.True(t, spec.HasArg)
	assert.Equal(t, 3.0, spec.Arg)

	spec, err = ParseOperatorSpec("field", "RowSwapCrossover")
	require.NoError(t, err)
	assert.False(t, spec.HasArg)

	_, err = ParseOperatorSpec("field", "Bad(Arg")
	assert.Error(t, err)

	_, err = ParseOperatorSpec("field", "Negative(-1)")
	assert.Error(t, err)
}
