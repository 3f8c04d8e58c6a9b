// Package deploy assembles the SDK's collaborators and exposes the
// deployment commands.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/arenaworks/arenakit/configs"
	"github.com/arenaworks/arenakit/internal/chain"
	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/deployment"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/arenaworks/arenakit/internal/remote"
	"github.com/arenaworks/arenakit/internal/requirements"
	"github.com/arenaworks/arenakit/internal/storage"
)

// Service wires configuration into a ready-to-run orchestrator.
type Service struct {
	cfg    configs.Config
	logger *slog.Logger
}

// NewService creates the deployment service from application config.
func NewService(cfg configs.Config) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger.Named("deploy_service"),
	}
}

// Assure runs the orchestrator against the configured chain and returns the
// settled result. chainID zero means "use the configured chain".
func (s *Service) Assure(ctx context.Context, chainID uint64) (*deployment.Result, error) {
	if chainID == 0 {
		chainID = s.cfg.Chain.ChainID
	}

	artifacts, err := contracts.LoadCompiledContracts()
	if err != nil {
		return nil, fmt.Errorf("failed to load contract artifacts: %w", err)
	}

	client, err := chain.Dial(ctx, s.cfg.Chain.RPCURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	signer, err := s.unlockSigner(chainID)
	if err != nil {
		return nil, err
	}

	book := storage.NewAddressBook(s.cfg.Storage.DataDir)
	reqs := requirements.NewSource(s.cfg.Storage.DataDir)
	registry := deployment.NewRegistry(signer.Address())

	orchCfg := deployment.Config{
		Registry:     registry,
		Requirements: reqs,
		Addresses:    book,
		Code:         client,
		Controller:   signer,
		Context:      storage.DefaultContext,
	}

	if s.cfg.RemoteBackend() {
		// The managed service executes the creations and handles
		// authorization wiring; Actions stays nil so wiring is skipped.
		orchCfg.Deployer = remote.NewClient(
			s.cfg.DeploymentAPI.BaseURL,
			s.cfg.DeploymentAPI.APIKey,
			chainID,
			book,
			storage.DefaultContext,
		)
	} else {
		orchCfg.Deployer = chain.NewDeployer(client, signer, artifacts, book, storage.DefaultContext)
		orchCfg.Actions = chain.NewActionExecutor(client, signer, artifacts)
	}

	orchestrator := deployment.NewOrchestrator(orchCfg)

	return orchestrator.AssureContractsDeployed(ctx, chainID)
}

func (s *Service) unlockSigner(chainID uint64) (*chain.Signer, error) {
	password := os.Getenv(s.cfg.Wallet.PasswordEnv)
	if password == "" {
		return nil, fmt.Errorf("keystore password not set in $%s", s.cfg.Wallet.PasswordEnv)
	}

	keystore := storage.NewKeystore(s.cfg.Wallet.KeystoreFile)
	privateKey, err := keystore.Unlock(password)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock deployer key: %w", err)
	}

	return chain.NewSigner(privateKey, chainID), nil
}
