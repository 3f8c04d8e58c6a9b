package deployment

import (
	"context"
	"log/slog"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// Verifier narrows stored addresses down to contracts that actually have
// code on the target chain. Storage is a cache; current chain state is the
// ground truth, so a stored address without code is treated as absent.
type Verifier struct {
	addresses AddressSource
	code      CodeReader
	context   string
	logger    *slog.Logger
}

// NewVerifier creates an existence verifier for one deployment context.
func NewVerifier(addresses AddressSource, code CodeReader, deployContext string, logger *slog.Logger) *Verifier {
	return &Verifier{
		addresses: addresses,
		code:      code,
		context:   deployContext,
		logger:    logger,
	}
}

// VerifyExisting returns the verified on-chain address for every stored
// contract type of this context. Storage read errors degrade to "nothing
// existing": the orchestrator prefers attempting a redeploy over hard
// failing on a transient read error.
func (v *Verifier) VerifyExisting(ctx context.Context, chainID uint64) map[contracts.ContractType]common.Address {
	verified := make(map[contracts.ContractType]common.Address)

	stored, err := v.addresses.Get(chainID)
	if err != nil {
		v.logger.With("err", err.Error()).Warn("failed to read stored addresses, assuming no existing contracts")
		return verified
	}

	for contractType, addr := range stored[v.context] {
		code, err := v.code.CodeAt(ctx, addr, nil)
		if err != nil {
			v.logger.
				With("contract", contractType).
				With("address", addr.Hex()).
				With("err", err.Error()).
				Warn("code check failed, treating contract as absent")
			continue
		}

		if len(code) == 0 {
			v.logger.
				With("contract", contractType).
				With("address", addr.Hex()).
				Info("stored address has no code on chain, will redeploy")
			continue
		}

		verified[contractType] = addr
	}

	return verified
}
