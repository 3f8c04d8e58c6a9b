// Package remote implements the managed deployment API backend. When it is
// configured, contract creations are executed by the remote service, which
// also takes care of authorization wiring.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/deployment"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/arenaworks/arenakit/internal/storage"
	"github.com/ethereum/go-ethereum/common"
)

const requestTimeout = 2 * time.Minute

type (
	// Client talks to the managed deployment service. It implements the
	// same deploy collaborator interface as the on-chain deployer.
	Client struct {
		baseURL string
		apiKey  string
		chainID uint64
		book    *storage.AddressBook
		context string
		http    *http.Client
		logger  *slog.Logger
	}

	deployRequest struct {
		ChainID         uint64                 `json:"chainId"`
		ContractType    contracts.ContractType `json:"contractType"`
		ConstructorArgs []any                  `json:"constructorArgs"`
	}

	deployResponse struct {
		Address string `json:"address"`
		TxHash  string `json:"txHash"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

// NewClient creates a managed deployment API client for one chain. Like the
// on-chain deployer, it writes successful deployments through to the
// address book.
func NewClient(baseURL, apiKey string, chainID uint64, book *storage.AddressBook, deployContext string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		chainID: chainID,
		book:    book,
		context: deployContext,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger.Named("deployment_api_client"),
	}
}

// Deploy asks the managed service to execute one contract creation.
func (c *Client) Deploy(ctx context.Context, params deployment.DeployParams) (deployment.Receipt, error) {
	body, err := json.Marshal(deployRequest{
		ChainID:         c.chainID,
		ContractType:    params.Type,
		ConstructorArgs: params.ConstructorArgs,
	})
	if err != nil {
		return deployment.Receipt{}, fmt.Errorf("failed to marshal deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/deployments", bytes.NewReader(body))
	if err != nil {
		return deployment.Receipt{}, fmt.Errorf("failed to build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.With("contract", params.Type).Info("requesting managed deployment")

	resp, err := c.http.Do(req)
	if err != nil {
		return deployment.Receipt{}, fmt.Errorf("deployment API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return deployment.Receipt{}, fmt.Errorf("failed to read deployment API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return deployment.Receipt{}, fmt.Errorf("deployment API rejected %s: %s", params.Type, apiErr.Error)
		}
		return deployment.Receipt{}, fmt.Errorf("deployment API returned status %d for %s", resp.StatusCode, params.Type)
	}

	var out deployResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return deployment.Receipt{}, fmt.Errorf("failed to parse deployment API response: %w", err)
	}

	if !common.IsHexAddress(out.Address) {
		return deployment.Receipt{}, fmt.Errorf("deployment API returned invalid address %q", out.Address)
	}

	address := common.HexToAddress(out.Address)

	if c.book != nil {
		if err := c.book.Put(c.chainID, c.context, params.Type, address); err != nil {
			c.logger.With("contract", params.Type).With("err", err.Error()).Warn("failed to record deployed address")
		}
	}

	return deployment.Receipt{
		Address: address,
		TxHash:  common.HexToHash(out.TxHash),
	}, nil
}
