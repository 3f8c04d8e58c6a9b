package deployment

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChain simulates the chain plus the address book in one place: the
// deploy collaborator writes addresses through to storage and code appears
// at deployed addresses, mirroring how chain.Deployer behaves.
type fakeChain struct {
	mu          sync.Mutex
	stored      map[string]map[contracts.ContractType]common.Address
	code        map[common.Address][]byte
	deployCalls []contracts.ContractType
	failing     map[contracts.ContractType]struct{}
	blocked     chan struct{}
	next        byte
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		stored:  map[string]map[contracts.ContractType]common.Address{},
		code:    map[common.Address][]byte{},
		failing: map[contracts.ContractType]struct{}{},
	}
}

func (f *fakeChain) Get(uint64) (map[string]map[contracts.ContractType]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make(map[string]map[contracts.ContractType]common.Address, len(f.stored))
	for ctx, entries := range f.stored {
		copied[ctx] = make(map[contracts.ContractType]common.Address, len(entries))
		for t, a := range entries {
			copied[ctx][t] = a
		}
	}
	return copied, nil
}

func (f *fakeChain) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code[account], nil
}

func (f *fakeChain) Deploy(_ context.Context, params DeployParams) (Receipt, error) {
	if f.blocked != nil {
		<-f.blocked
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.deployCalls = append(f.deployCalls, params.Type)
	if _, fail := f.failing[params.Type]; fail {
		return Receipt{}, fmt.Errorf("deployment of %s reverted", params.Type)
	}

	f.next++
	addr := common.BytesToAddress([]byte{0xde, f.next})
	f.code[addr] = []byte{0x60, 0x80}
	if f.stored["default"] == nil {
		f.stored["default"] = map[contracts.ContractType]common.Address{}
	}
	f.stored["default"][params.Type] = addr

	return Receipt{Address: addr, TxHash: common.BytesToHash([]byte{0xde, f.next})}, nil
}

func (f *fakeChain) seedStale(t contracts.ContractType, addr common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored["default"] == nil {
		f.stored["default"] = map[contracts.ContractType]common.Address{}
	}
	f.stored["default"][t] = addr
}

func (f *fakeChain) deployCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deployCalls)
}

type staticRequirements struct {
	required []contracts.ContractType
	err      error
}

func (s *staticRequirements) Required(uint64) ([]contracts.ContractType, error) {
	return s.required, s.err
}

func newTestOrchestrator(fake *fakeChain, required ...contracts.ContractType) (*Orchestrator, *mockActionExecutor) {
	actions := &mockActionExecutor{}
	orch := NewOrchestrator(Config{
		Registry:     testRegistry(),
		Requirements: &staticRequirements{required: required},
		Addresses:    fake,
		Code:         fake,
		Deployer:     fake,
		Actions:      actions,
	})
	return orch, actions
}

func TestAssureNoChainID(t *testing.T) {
	orch, _ := newTestOrchestrator(newFakeChain())

	_, err := orch.AssureContractsDeployed(context.Background(), 0)
	require.ErrorIs(t, err, ErrNoChainID)
}

func TestAssureEmptyRequirementsIsTrivialSuccess(t *testing.T) {
	fake := newFakeChain()
	orch, _ := newTestOrchestrator(fake)

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Zero(t, result.TotalDeployed)
	assert.Empty(t, result.Results)
	assert.Zero(t, fake.deployCount())
}

func TestAssureRequirementsReadFailure(t *testing.T) {
	orch := NewOrchestrator(Config{
		Registry:     testRegistry(),
		Requirements: &staticRequirements{err: errors.New("yaml corrupt")},
		Addresses:    newFakeChain(),
		Code:         newFakeChain(),
		Deployer:     newFakeChain(),
	})

	_, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.Error(t, err)
}

func TestAssureDeploysMissingAndWires(t *testing.T) {
	fake := newFakeChain()
	orch, actions := newTestOrchestrator(fake,
		contracts.TypeEventBus, contracts.TypeScore, contracts.TypeMatch)

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalDeployed)
	assert.Zero(t, result.TotalFailed)
	assert.Len(t, result.DeployedContracts, 3)

	// Score must precede Match in the underlying deploy sequence.
	assert.Equal(t, []contracts.ContractType{
		contracts.TypeEventBus, contracts.TypeScore, contracts.TypeMatch,
	}, fake.deployCalls)

	// The fresh Match gets authorized to record into Score.
	var wired bool
	for _, a := range actions.actions {
		if a.Target == contracts.TypeScore && a.Function == "authorizeRecorder" {
			wired = true
		}
	}
	assert.True(t, wired)
	assert.NotEmpty(t, result.PermissionResults)
}

func TestAssureIsIdempotent(t *testing.T) {
	fake := newFakeChain()
	orch, _ := newTestOrchestrator(fake,
		contracts.TypeEventBus, contracts.TypeScore, contracts.TypeMatch)

	first, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, second.Success)
	assert.Zero(t, second.TotalDeployed)
	assert.Equal(t, 3, second.TotalExisting)
	for _, r := range second.Results {
		assert.Equal(t, StatusAlreadyExists, r.Status)
	}
	// No second deployment sequence.
	assert.Equal(t, 3, fake.deployCount())
	// Nothing new in the batch, so nothing to wire.
	assert.Empty(t, second.PermissionResults)
}

func TestAssureRedeploysStaleAddress(t *testing.T) {
	fake := newFakeChain()
	// Stored address without code, e.g. after a chain reset.
	fake.seedStale(contracts.TypeEventBus, common.BytesToAddress([]byte{0xaa}))

	orch, _ := newTestOrchestrator(fake, contracts.TypeEventBus)

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalDeployed)
	assert.Zero(t, result.TotalExisting)
	assert.Contains(t, fake.deployCalls, contracts.TypeEventBus)
}

func TestAssureCycleAbortsBeforeAnyDeploy(t *testing.T) {
	fake := newFakeChain()

	registry := &Registry{specs: make(map[contracts.ContractType]Spec)}
	registry.add(&spec{
		contractType: contracts.TypeScore,
		dependsOn:    []contracts.ContractType{contracts.TypeMatch},
		buildArgs:    func(map[contracts.ContractType]common.Address) ([]any, error) { return nil, nil },
	})
	registry.add(&spec{
		contractType: contracts.TypeMatch,
		dependsOn:    []contracts.ContractType{contracts.TypeScore},
		buildArgs:    func(map[contracts.ContractType]common.Address) ([]any, error) { return nil, nil },
	})

	orch := NewOrchestrator(Config{
		Registry:     registry,
		Requirements: &staticRequirements{required: []contracts.ContractType{contracts.TypeScore, contracts.TypeMatch}},
		Addresses:    fake,
		Code:         fake,
		Deployer:     fake,
	})

	_, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.ErrorIs(t, err, ErrCircularDependency)
	assert.Zero(t, fake.deployCount())
}

func TestAssurePartialFailureReportedNotRaised(t *testing.T) {
	fake := newFakeChain()
	fake.failing[contracts.TypeScore] = struct{}{}

	orch, _ := newTestOrchestrator(fake,
		contracts.TypeEventBus, contracts.TypeScore, contracts.TypeMatch)

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err, "per-contract failures are recorded, not raised")

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.TotalFailed)
	assert.Equal(t, 1, result.TotalDeployed)
}

func TestAssureReportsSkippedContracts(t *testing.T) {
	fake := newFakeChain()
	// Score and Match both need EventBus, which is neither requested nor
	// deployed, so everything cascades to skipped without a single failure.
	orch, _ := newTestOrchestrator(fake, contracts.TypeScore, contracts.TypeMatch)

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, result.TotalDeployed)
	assert.Zero(t, result.TotalFailed)
	assert.Zero(t, fake.deployCount())
	for _, r := range result.Results {
		assert.Equal(t, StatusSkipped, r.Status)
	}
	assert.Contains(t, result.Message, "2 contracts skipped")
	assert.NotContains(t, result.Message, "already deployed")
}

func TestAssureSkipsWiringUnderManagedBackend(t *testing.T) {
	fake := newFakeChain()
	orch := NewOrchestrator(Config{
		Registry:     testRegistry(),
		Requirements: &staticRequirements{required: []contracts.ContractType{contracts.TypeEventBus}},
		Addresses:    fake,
		Code:         fake,
		Deployer:     fake,
		Actions:      nil, // managed backend wires permissions itself
	})

	result, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.PermissionResults)
}

func TestAssureConcurrentCallsCollapse(t *testing.T) {
	fake := newFakeChain()
	fake.blocked = make(chan struct{})

	orch, _ := newTestOrchestrator(fake,
		contracts.TypeEventBus, contracts.TypeScore)

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = orch.AssureContractsDeployed(context.Background(), 1)
		}(i)
	}

	// Let both callers reach the gate, then release the deployer.
	close(fake.blocked)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Exactly one underlying deployment sequence ran.
	assert.Equal(t, 2, fake.deployCount())

	deployedRuns := 0
	for _, r := range results {
		require.True(t, r.Success)
		if r.TotalDeployed > 0 {
			deployedRuns++
		} else {
			// The waiter re-evaluated settled state.
			assert.Equal(t, 2, r.TotalExisting)
		}
	}
	assert.Equal(t, 1, deployedRuns)
}

func TestAssureDifferentChainsDoNotSerialize(t *testing.T) {
	fakeA := newFakeChain()
	orch, _ := newTestOrchestrator(fakeA, contracts.TypeHeap)

	resultA, err := orch.AssureContractsDeployed(context.Background(), 1)
	require.NoError(t, err)
	resultB, err := orch.AssureContractsDeployed(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), resultA.ChainID)
	assert.Equal(t, uint64(2), resultB.ChainID)
}
