package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/deployment"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const actionTimeout = time.Minute

// ActionExecutor sends authorization calls to deployed contracts with the
// single authorized signer.
type ActionExecutor struct {
	client    *Client
	signer    *Signer
	artifacts map[contracts.ContractType]contracts.CompiledContract
	logger    *slog.Logger
}

// NewActionExecutor creates a permission action executor.
func NewActionExecutor(client *Client, signer *Signer, artifacts map[contracts.ContractType]contracts.CompiledContract) *ActionExecutor {
	return &ActionExecutor{
		client:    client,
		signer:    signer,
		artifacts: artifacts,
		logger:    logger.Named("action_executor"),
	}
}

// Execute sends one authorization transaction and waits for it to mine, so
// the next action observes its effects.
func (e *ActionExecutor) Execute(ctx context.Context, action deployment.PermissionAction) (common.Hash, error) {
	artifact, ok := e.artifacts[action.Target]
	if !ok {
		return common.Hash{}, fmt.Errorf("no compiled artifact for contract type %s", action.Target)
	}

	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	auth, err := e.signer.TransactOpts(ctx, e.client)
	if err != nil {
		return common.Hash{}, err
	}

	bound := bind.NewBoundContract(action.TargetAddress, artifact.ABI, e.client.Eth(), e.client.Eth(), e.client.Eth())

	tx, err := bound.Transact(auth, action.Function, action.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to send %s on %s: %w", action.Function, action.Target, err)
	}

	receipt, err := bind.WaitMined(ctx, e.client.Eth(), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to wait for %s on %s: %w", action.Function, action.Target, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("%s on %s reverted with status %d", action.Function, action.Target, receipt.Status)
	}

	e.logger.
		With("target", action.Target).
		With("function", action.Function).
		With("tx_hash", tx.Hash().Hex()).
		Debug("permission transaction mined")

	return tx.Hash(), nil
}
