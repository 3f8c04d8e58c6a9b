package deploy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arenaworks/arenakit/configs"
	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/arenaworks/arenakit/internal/observability/metrics"
	"github.com/arenaworks/arenakit/internal/requirements"
	"github.com/spf13/cobra"
)

var chainIDFlag uint64

// CMD is the deploy command group.
var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy and wire the required game contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Validate(); err != nil {
			return err
		}

		metrics.Init(configs.Values.Metrics.Enabled)
		if configs.Values.Metrics.Enabled {
			metrics.Serve(configs.Values.Metrics.Addr)
		}

		service := NewService(configs.Values)
		result, err := service.Assure(cmd.Context(), chainIDFlag)
		if err != nil {
			return fmt.Errorf("deployment run failed: %w", err)
		}

		if err := writeSummary(configs.Values.Storage.DataDir, result); err != nil {
			slog.With("err", err.Error()).Warn("failed to write deployment summary")
		}

		slog.
			With("chain_id", result.ChainID).
			With("deployed", result.TotalDeployed).
			With("existing", result.TotalExisting).
			With("failed", result.TotalFailed).
			Info(result.Message)

		if !result.Success {
			return fmt.Errorf("deployment finished with failures: %s", result.Message)
		}

		return nil
	},
}

var requireCmd = &cobra.Command{
	Use:   "require [contract types...]",
	Short: "Persist the contract types required on the configured chain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Validate(); err != nil {
			return err
		}

		required := make([]contracts.ContractType, 0, len(args))
		for _, arg := range args {
			t := contracts.ContractType(arg)
			if !contracts.Known(t) {
				return fmt.Errorf("unknown contract type %q (known: %v)", arg, contracts.All())
			}
			required = append(required, t)
		}

		source := requirements.NewSource(configs.Values.Storage.DataDir)
		if err := source.Write(configs.Values.Chain.ChainID, required); err != nil {
			return err
		}

		slog.With("chain_id", configs.Values.Chain.ChainID).With("contracts", args).Info("requirements updated")
		return nil
	},
}

func init() {
	CMD.Flags().Uint64Var(&chainIDFlag, "chain-id", 0, "target chain id (defaults to chain.chain-id from config)")
	CMD.AddCommand(requireCmd)
	CMD.AddCommand(statusCmd)
}

func writeSummary(dataDir string, result any) error {
	data, err := marshalSummary(result)
	if err != nil {
		return err
	}

	path := filepath.Join(dataDir, "last-deployment.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
