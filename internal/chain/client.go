package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps an ethclient connection to one chain.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
}

// Dial connects to a chain RPC endpoint and resolves its chain id.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &Client{eth: eth, chainID: chainID}, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// ChainID returns the connected chain's id.
func (c *Client) ChainID() uint64 {
	return c.chainID.Uint64()
}

// Eth exposes the underlying ethclient for contract sessions.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// CodeAt reports the contract code at an address. Empty code means no
// contract lives there.
func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CodeAt(ctx, account, blockNumber)
}
