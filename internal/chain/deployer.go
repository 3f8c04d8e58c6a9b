package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/deployment"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/arenaworks/arenakit/internal/storage"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

const deployTimeout = time.Minute

// Deployer issues contract creations directly over JSON-RPC. After each
// successful deployment it writes the address through to the address book,
// which is how stored addresses come into being (the orchestrator itself
// never persists).
type Deployer struct {
	client        *Client
	signer        *Signer
	artifacts     map[contracts.ContractType]contracts.CompiledContract
	book          *storage.AddressBook
	context       string
	waitForMining bool
	logger        *slog.Logger
}

// NewDeployer creates an on-chain contract deployer for one deployment
// context.
func NewDeployer(client *Client, signer *Signer, artifacts map[contracts.ContractType]contracts.CompiledContract, book *storage.AddressBook, deployContext string) *Deployer {
	return &Deployer{
		client:        client,
		signer:        signer,
		artifacts:     artifacts,
		book:          book,
		context:       deployContext,
		waitForMining: true,
		logger:        logger.Named("chain_deployer"),
	}
}

// Deploy sends one contract creation transaction and returns the resulting
// address and transaction hash.
func (d *Deployer) Deploy(ctx context.Context, params deployment.DeployParams) (deployment.Receipt, error) {
	artifact, ok := d.artifacts[params.Type]
	if !ok {
		return deployment.Receipt{}, fmt.Errorf("no compiled artifact for contract type %s", params.Type)
	}

	ctx, cancel := context.WithTimeout(ctx, deployTimeout)
	defer cancel()

	auth, err := d.signer.TransactOpts(ctx, d.client)
	if err != nil {
		return deployment.Receipt{}, err
	}

	address, tx, _, err := bind.DeployContract(auth, artifact.ABI, artifact.Bytecode, d.client.Eth(), params.ConstructorArgs...)
	if err != nil {
		return deployment.Receipt{}, fmt.Errorf("failed to deploy %s: %w", params.Type, err)
	}

	d.logger.
		With("contract", params.Type).
		With("address", address.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract creation transaction sent")

	if d.waitForMining {
		receipt, err := bind.WaitMined(ctx, d.client.Eth(), tx)
		if err != nil {
			return deployment.Receipt{}, fmt.Errorf("failed to wait for %s deployment: %w", params.Type, err)
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return deployment.Receipt{}, fmt.Errorf("deployment of %s reverted with status %d", params.Type, receipt.Status)
		}
	}

	if err := d.book.Put(d.client.ChainID(), d.context, params.Type, address); err != nil {
		// The contract is live; a stale book only costs a redeploy check
		// next run.
		d.logger.With("contract", params.Type).With("err", err.Error()).Warn("failed to record deployed address")
	}

	return deployment.Receipt{Address: address, TxHash: tx.Hash()}, nil
}
