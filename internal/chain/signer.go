package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const deployGasLimit = uint64(10_000_000)

// Signer holds the single authorized deployment key. All transactions in a
// run go through one signer so they are submitted in increasing nonce
// order.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewSigner creates a signer for one chain from an unlocked private key.
func NewSigner(privateKey *ecdsa.PrivateKey, chainID uint64) *Signer {
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    new(big.Int).SetUint64(chainID),
	}
}

// Address returns the signer's account address.
func (s *Signer) Address() common.Address {
	return s.address
}

// ControllerAddress resolves the controller identity used for permission
// wiring. For a local signer, the controller is the signing account itself.
func (s *Signer) ControllerAddress(_ context.Context) (*common.Address, error) {
	addr := s.address
	return &addr, nil
}

// TransactOpts builds keyed transact options priced against the connected
// chain.
func (s *Signer) TransactOpts(ctx context.Context, client *Client) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.privateKey, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice, err := client.Eth().SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = deployGasLimit
	auth.GasPrice = gasPrice

	return auth, nil
}
