package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCompiledContracts(t *testing.T) {
	loaded, err := LoadCompiledContracts()
	require.NoError(t, err)

	for _, contractType := range All() {
		artifact, ok := loaded[contractType]
		require.True(t, ok, "missing artifact for %s", contractType)
		assert.NotEmpty(t, artifact.Bytecode, "%s has no bytecode", contractType)
		assert.NotEmpty(t, artifact.RawABI, "%s has no ABI", contractType)
	}
}

func TestConstructorsMatchDependencyCounts(t *testing.T) {
	loaded, err := LoadCompiledContracts()
	require.NoError(t, err)

	// Dependency-consuming constructors take one address per dependency,
	// plus the controller for EventBus.
	wantInputs := map[ContractType]int{
		TypeEventBus:   1,
		TypeHeap:       0,
		TypeScore:      1,
		TypeMatch:      2,
		TypePrize:      1,
		TypeTournament: 2,
		TypeLeague:     2,
		TypePrediction: 2,
	}

	for contractType, want := range wantInputs {
		assert.Len(t, loaded[contractType].ABI.Constructor.Inputs, want, "constructor arity for %s", contractType)
	}
}

func TestParseContractsRejectsIncompleteSet(t *testing.T) {
	_, err := parseContracts([]byte(`{"Score": {"abi": [], "bytecode": "0x6080"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestParseContractsIgnoresUnknownNames(t *testing.T) {
	_, err := parseContracts([]byte(`{"Roulette": {"abi": [], "bytecode": "0x6080"}}`))
	require.Error(t, err, "unknown entries alone cannot satisfy the known set")
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(TypeTournament))
	assert.False(t, Known(ContractType("Roulette")))
}
