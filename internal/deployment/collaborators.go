package deployment

import (
	"context"
	"math/big"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// DeployParams carries everything a deploy collaborator needs to issue
	// one contract creation.
	DeployParams struct {
		Type            contracts.ContractType
		ConstructorArgs []any
	}

	// Receipt is the outcome of a successful contract creation.
	Receipt struct {
		Address common.Address
		TxHash  common.Hash
	}

	// PermissionAction is one authorization call to make after deployment.
	// Pure data; generated by the registry, executed by an ActionExecutor.
	PermissionAction struct {
		Target        contracts.ContractType `json:"target"`
		TargetAddress common.Address         `json:"targetAddress"`
		Function      string                 `json:"function"`
		Args          []any                  `json:"args"`
		Description   string                 `json:"description"`
	}

	// PermissionContext is the read-only view each registry entry uses to
	// decide which permission actions it needs.
	PermissionContext struct {
		DeployedAddresses map[contracts.ContractType]common.Address
		DeployedInBatch   map[contracts.ContractType]struct{}
		RequiredContracts []contracts.ContractType
		ControllerAddress *common.Address
	}
)

// InBatch reports whether t reached success during the current run, as
// opposed to having been found already deployed.
func (c PermissionContext) InBatch(t contracts.ContractType) bool {
	_, ok := c.DeployedInBatch[t]
	return ok
}

// Address returns the deployed address for t, if any.
func (c PermissionContext) Address(t contracts.ContractType) (common.Address, bool) {
	addr, ok := c.DeployedAddresses[t]
	return addr, ok
}

type (
	// Deployer issues one contract creation and reports the resulting
	// address. Implemented by chain.Deployer and remote.Client.
	Deployer interface {
		Deploy(ctx context.Context, params DeployParams) (Receipt, error)
	}

	// ActionExecutor executes one authorization call with the single
	// authorized signer.
	ActionExecutor interface {
		Execute(ctx context.Context, action PermissionAction) (common.Hash, error)
	}

	// CodeReader checks whether an address has contract code. Satisfied by
	// ethclient.Client.
	CodeReader interface {
		CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	}

	// AddressSource reads previously stored addresses for a chain, keyed by
	// context and contract type. Satisfied by storage.AddressBook.
	AddressSource interface {
		Get(chainID uint64) (map[string]map[contracts.ContractType]common.Address, error)
	}

	// RequirementsSource reads the persisted list of required contract
	// types for a chain. Satisfied by requirements.Source.
	RequirementsSource interface {
		Required(chainID uint64) ([]contracts.ContractType, error)
	}

	// ControllerResolver resolves the controller identity used in
	// permission decisions, when one is configured.
	ControllerResolver interface {
		ControllerAddress(ctx context.Context) (*common.Address, error)
	}
)
