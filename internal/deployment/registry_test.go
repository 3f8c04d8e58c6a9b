package deployment

import (
	"testing"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCoversEveryContractType(t *testing.T) {
	registry := testRegistry()

	for _, contractType := range contracts.All() {
		_, ok := registry.Get(contractType)
		assert.True(t, ok, "missing registry entry for %s", contractType)
	}
	assert.Len(t, registry.All(), len(contracts.All()))
}

func TestRegistryDependenciesAreRegistered(t *testing.T) {
	registry := testRegistry()

	for _, s := range registry.All() {
		for _, dep := range s.DependsOn() {
			_, ok := registry.Get(dep)
			assert.True(t, ok, "%s depends on unregistered %s", s.Type(), dep)
		}
	}
}

func TestRegistryDependencyGraphIsAcyclic(t *testing.T) {
	registry := testRegistry()

	_, err := Plan(registry, contracts.All())
	require.NoError(t, err)
}

func TestBuildDeployParamsResolvesDependencies(t *testing.T) {
	registry := testRegistry()
	s, ok := registry.Get(contracts.TypeTournament)
	require.True(t, ok)

	matchAddr := common.BytesToAddress([]byte{0x01})
	heapAddr := common.BytesToAddress([]byte{0x02})

	params, err := s.BuildDeployParams(map[contracts.ContractType]common.Address{
		contracts.TypeMatch: matchAddr,
		contracts.TypeHeap:  heapAddr,
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.TypeTournament, params.Type)
	assert.Equal(t, []any{matchAddr, heapAddr}, params.ConstructorArgs)
}

func TestBuildDeployParamsMissingDependency(t *testing.T) {
	registry := testRegistry()
	s, ok := registry.Get(contracts.TypePrize)
	require.True(t, ok)

	_, err := s.BuildDeployParams(map[contracts.ContractType]common.Address{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(contracts.TypeMatch))
}

func TestEventBusConstructorTakesController(t *testing.T) {
	controller := common.BytesToAddress([]byte{0xcc})
	registry := NewRegistry(controller)

	s, ok := registry.Get(contracts.TypeEventBus)
	require.True(t, ok)

	params, err := s.BuildDeployParams(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{controller}, params.ConstructorArgs)
}

func TestPermissionActionsSkipTypesWithUnknownAddresses(t *testing.T) {
	registry := testRegistry()
	s, ok := registry.Get(contracts.TypeScore)
	require.True(t, ok)

	// Score is fresh but Match was never deployed: nothing to grant yet.
	pctx := batchContext(map[contracts.ContractType]common.Address{
		contracts.TypeScore: common.BytesToAddress([]byte{0x0a}),
	}, contracts.TypeScore)

	assert.Empty(t, s.PermissionActions(pctx))
}
