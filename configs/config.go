package configs

import (
	"errors"
	"fmt"
	"strings"
)

var Values Config

type (
	Config struct {
		LogLevel      string        `mapstructure:"log-level"`
		Chain         Chain         `mapstructure:"chain"`
		Wallet        Wallet        `mapstructure:"wallet"`
		Storage       Storage       `mapstructure:"storage"`
		DeploymentAPI DeploymentAPI `mapstructure:"deployment-api"`
		Localnet      Localnet      `mapstructure:"localnet"`
		Metrics       Metrics       `mapstructure:"metrics"`
	}

	Chain struct {
		RPCURL  string `mapstructure:"rpc-url"`
		ChainID uint64 `mapstructure:"chain-id"`
	}

	Wallet struct {
		KeystoreFile string `mapstructure:"keystore-file"`
		PasswordEnv  string `mapstructure:"password-env"`
	}

	Storage struct {
		DataDir string `mapstructure:"data-dir"`
	}

	// DeploymentAPI configures the managed deployment backend. When BaseURL is
	// set, deployments go through the remote API and permission wiring is
	// handled there instead of locally.
	DeploymentAPI struct {
		BaseURL string `mapstructure:"base-url"`
		APIKey  string `mapstructure:"api-key"`
	}

	Localnet struct {
		Image   string `mapstructure:"image"`
		RPCPort int    `mapstructure:"rpc-port"`
		ChainID uint64 `mapstructure:"chain-id"`
	}

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	}
)

func (c *Config) Validate() error {
	var errs []error

	if c.Chain.RPCURL == "" {
		errs = append(errs, errors.New("chain.rpc-url is required"))
	}
	if c.Chain.ChainID == 0 {
		errs = append(errs, errors.New("chain.chain-id is required"))
	}
	if c.Wallet.KeystoreFile == "" {
		errs = append(errs, errors.New("wallet.keystore-file is required"))
	}
	if c.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data-dir is required"))
	}
	if c.DeploymentAPI.BaseURL != "" && !strings.HasPrefix(c.DeploymentAPI.BaseURL, "http") {
		errs = append(errs, fmt.Errorf("deployment-api.base-url must be an http(s) URL, got %q", c.DeploymentAPI.BaseURL))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// RemoteBackend reports whether deployments should go through the managed API.
func (c *Config) RemoteBackend() bool {
	return c.DeploymentAPI.BaseURL != ""
}
