package deployment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Executor walks the ordered plan, skipping contracts that already
	// exist, deploying the rest in order. A single contract's failure never
	// aborts the batch: its dependents are skipped while independent
	// branches keep deploying.
	Executor struct {
		registry *Registry
		deployer Deployer
		logger   *slog.Logger
	}

	// ExecutionOutcome is the settled state of one executor pass.
	ExecutionOutcome struct {
		Results           []ContractResult
		DeployedAddresses map[contracts.ContractType]common.Address
		DeployedInBatch   map[contracts.ContractType]struct{}
		TotalDeployed     int
		TotalFailed       int
		TotalExisting     int
	}
)

// NewExecutor creates a deployment executor.
func NewExecutor(registry *Registry, deployer Deployer, logger *slog.Logger) *Executor {
	return &Executor{
		registry: registry,
		deployer: deployer,
		logger:   logger,
	}
}

// Execute deploys every plan item that is not verified-existing, in plan
// order. Deployments run strictly sequentially: later constructor params
// need earlier addresses, and one signer's transactions must stay in nonce
// order.
func (e *Executor) Execute(ctx context.Context, plan []PlanItem, existing map[contracts.ContractType]common.Address) ExecutionOutcome {
	outcome := ExecutionOutcome{
		Results:           make([]ContractResult, 0, len(plan)),
		DeployedAddresses: make(map[contracts.ContractType]common.Address, len(existing)),
		DeployedInBatch:   make(map[contracts.ContractType]struct{}),
	}

	for t, addr := range existing {
		outcome.DeployedAddresses[t] = addr
	}

	for _, item := range plan {
		if addr, ok := existing[item.Type]; ok {
			addrCopy := addr
			outcome.Results = append(outcome.Results, ContractResult{
				Type:      item.Type,
				Status:    StatusAlreadyExists,
				Address:   &addrCopy,
				DependsOn: item.DependsOn,
			})
			outcome.TotalExisting++
			continue
		}

		outcome.Results = append(outcome.Results, e.deployOne(ctx, item, &outcome))
	}

	return outcome
}

// deployOne deploys a single plan item, re-checking its dependencies right
// before the attempt so that failures cascade forward through the plan.
func (e *Executor) deployOne(ctx context.Context, item PlanItem, outcome *ExecutionOutcome) ContractResult {
	result := ContractResult{
		Type:      item.Type,
		Status:    StatusPending,
		DependsOn: item.DependsOn,
	}

	if missing := missingDependencies(item, outcome.DeployedAddresses); len(missing) > 0 {
		result.Status = StatusSkipped
		result.Error = fmt.Sprintf("skipped: dependencies not deployed: %s", joinTypes(missing))
		e.logger.
			With("contract", item.Type).
			With("missing", joinTypes(missing)).
			Warn("skipping contract, dependencies unavailable")
		return result
	}

	s, ok := e.registry.Get(item.Type)
	if !ok {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("contract type %s is not registered", item.Type)
		outcome.TotalFailed++
		return result
	}

	params, err := s.BuildDeployParams(outcome.DeployedAddresses)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		outcome.TotalFailed++
		e.logger.With("contract", item.Type).With("err", err.Error()).Error("failed to build deploy params")
		return result
	}

	result.Status = StatusDeploying
	e.logger.With("contract", item.Type).Info("deploying contract")

	receipt, err := e.deployer.Deploy(ctx, params)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		outcome.TotalFailed++
		e.logger.With("contract", item.Type).With("err", err.Error()).Error("contract deployment failed")
		return result
	}

	result.Status = StatusSuccess
	result.Address = &receipt.Address
	result.TxHash = &receipt.TxHash
	outcome.DeployedAddresses[item.Type] = receipt.Address
	outcome.DeployedInBatch[item.Type] = struct{}{}
	outcome.TotalDeployed++

	e.logger.
		With("contract", item.Type).
		With("address", receipt.Address.Hex()).
		With("tx_hash", receipt.TxHash.Hex()).
		Info("contract deployed")

	return result
}

func missingDependencies(item PlanItem, deployed map[contracts.ContractType]common.Address) []contracts.ContractType {
	var missing []contracts.ContractType
	for _, dep := range item.DependsOn {
		if _, ok := deployed[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	return missing
}

func joinTypes(types []contracts.ContractType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
