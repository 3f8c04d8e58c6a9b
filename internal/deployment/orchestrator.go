package deployment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/arenaworks/arenakit/internal/observability/metrics"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNoChainID aborts a run before any deployment is attempted.
var ErrNoChainID = errors.New("no chain id resolvable for deployment")

type (
	// Orchestrator owns one chain's contract deployment lifecycle: it
	// verifies what already exists, plans and executes missing deployments,
	// and wires newly deployed contracts together. All state is owned by
	// the struct, so tests can run independent orchestrators side by side.
	Orchestrator struct {
		registry     *Registry
		requirements RequirementsSource
		addresses    AddressSource
		code         CodeReader
		deployer     Deployer
		actions      ActionExecutor
		controller   ControllerResolver
		context      string
		gate         *gate
		logger       *slog.Logger
	}

	// Config wires the orchestrator's collaborators. Actions may be nil
	// when a managed execution backend handles authorization wiring
	// remotely; Controller may be nil when no controller identity is
	// configured.
	Config struct {
		Registry     *Registry
		Requirements RequirementsSource
		Addresses    AddressSource
		Code         CodeReader
		Deployer     Deployer
		Actions      ActionExecutor
		Controller   ControllerResolver
		Context      string
	}
)

// NewOrchestrator creates a deployment orchestrator from its collaborators.
func NewOrchestrator(cfg Config) *Orchestrator {
	deployContext := cfg.Context
	if deployContext == "" {
		deployContext = "default"
	}

	return &Orchestrator{
		registry:     cfg.Registry,
		requirements: cfg.Requirements,
		addresses:    cfg.Addresses,
		code:         cfg.Code,
		deployer:     cfg.Deployer,
		actions:      cfg.Actions,
		controller:   cfg.Controller,
		context:      deployContext,
		gate:         newGate(),
		logger:       logger.Named("deployment_orchestrator"),
	}
}

// AssureContractsDeployed makes sure every required contract type for the
// chain is deployed and wired, deploying only what is missing. It is safe
// to call repeatedly and from concurrent request handlers: runs for the
// same chain are serialized, and later callers re-evaluate settled state
// instead of duplicating work. Per-contract and per-permission failures
// are recorded on the returned Result, not raised as errors.
func (o *Orchestrator) AssureContractsDeployed(ctx context.Context, chainID uint64) (*Result, error) {
	if chainID == 0 {
		return nil, ErrNoChainID
	}

	return o.gate.do(ctx, chainID, func(ctx context.Context) (*Result, error) {
		return o.run(ctx, chainID)
	})
}

func (o *Orchestrator) run(ctx context.Context, chainID uint64) (*Result, error) {
	log := o.logger.With("chain_id", chainID)

	required, err := o.requirements.Required(chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to load required contracts: %w", err)
	}

	if len(required) == 0 {
		log.Info("no contracts required, nothing to deploy")
		return &Result{
			Success:           true,
			Message:           "no contracts required",
			ChainID:           chainID,
			Results:           []ContractResult{},
			DeployedContracts: map[contracts.ContractType]common.Address{},
		}, nil
	}

	plan, err := Plan(o.registry, required)
	if err != nil {
		metrics.OrchestrationRun("config_error")
		return nil, err
	}

	verifier := NewVerifier(o.addresses, o.code, o.context, log)
	existing := verifier.VerifyExisting(ctx, chainID)

	log.
		With("required", len(plan)).
		With("existing", len(existing)).
		Info("deployment plan computed")

	executor := NewExecutor(o.registry, o.deployer, log)
	outcome := executor.Execute(ctx, plan, existing)

	for _, r := range outcome.Results {
		metrics.ContractDeploy(string(r.Type), string(r.Status))
	}

	result := &Result{
		ChainID:           chainID,
		Results:           outcome.Results,
		DeployedContracts: outcome.DeployedAddresses,
		TotalDeployed:     outcome.TotalDeployed,
		TotalFailed:       outcome.TotalFailed,
		TotalExisting:     outcome.TotalExisting,
	}

	if o.actions != nil {
		result.PermissionResults = o.wirePermissions(ctx, required, outcome, log)
	} else {
		log.Debug("managed execution backend active, skipping permission wiring")
	}

	result.Success = result.TotalFailed == 0 && result.permissionFailures() == 0
	result.Message = resultMessage(result)

	if result.Success {
		metrics.OrchestrationRun("success")
	} else {
		metrics.OrchestrationRun("failure")
	}

	log.
		With("deployed", result.TotalDeployed).
		With("existing", result.TotalExisting).
		With("failed", result.TotalFailed).
		With("success", result.Success).
		Info("orchestration run settled")

	return result, nil
}

func (o *Orchestrator) wirePermissions(ctx context.Context, required []contracts.ContractType, outcome ExecutionOutcome, log *slog.Logger) []PermissionResult {
	pctx := PermissionContext{
		DeployedAddresses: outcome.DeployedAddresses,
		DeployedInBatch:   outcome.DeployedInBatch,
		RequiredContracts: required,
	}

	if o.controller != nil {
		controllerAddr, err := o.controller.ControllerAddress(ctx)
		if err != nil {
			log.With("err", err.Error()).Warn("failed to resolve controller address, wiring without it")
		} else {
			pctx.ControllerAddress = controllerAddr
		}
	}

	wirer := NewPermissionWirer(o.registry, o.actions, log)
	results := wirer.Wire(ctx, pctx)

	for _, r := range results {
		status := "success"
		if !r.Success {
			status = "failure"
		}
		metrics.PermissionAction(status)
	}

	return results
}

func resultMessage(r *Result) string {
	skipped := r.skippedContracts()

	switch {
	case r.TotalFailed > 0:
		return fmt.Sprintf("%d of %d contract deployments failed", r.TotalFailed, len(r.Results))
	case r.permissionFailures() > 0:
		return fmt.Sprintf("%d permission actions failed", r.permissionFailures())
	case skipped > 0 && r.TotalDeployed > 0:
		return fmt.Sprintf("deployed %d contracts, %d skipped: missing dependencies", r.TotalDeployed, skipped)
	case skipped > 0:
		return fmt.Sprintf("%d contracts skipped: missing dependencies", skipped)
	case r.TotalDeployed == 0:
		return "all required contracts already deployed"
	default:
		return fmt.Sprintf("deployed %d contracts (%d already existing)", r.TotalDeployed, r.TotalExisting)
	}
}
