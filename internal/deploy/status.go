package deploy

import (
	"fmt"
	"log/slog"

	"github.com/arenaworks/arenakit/configs"
	"github.com/arenaworks/arenakit/internal/chain"
	"github.com/arenaworks/arenakit/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type statusEntry struct {
	Address string `yaml:"address"`
	HasCode bool   `yaml:"has-code"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored contract addresses and whether they still have code on chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Validate(); err != nil {
			return err
		}

		ctx := cmd.Context()

		client, err := chain.Dial(ctx, configs.Values.Chain.RPCURL)
		if err != nil {
			return err
		}
		defer client.Close()

		book := storage.NewAddressBook(configs.Values.Storage.DataDir)
		stored, err := book.Get(configs.Values.Chain.ChainID)
		if err != nil {
			return fmt.Errorf("failed to read address book: %w", err)
		}

		status := make(map[string]map[string]statusEntry)
		for context, entries := range stored {
			status[context] = make(map[string]statusEntry, len(entries))
			for contractType, addr := range entries {
				code, err := client.CodeAt(ctx, addr, nil)
				if err != nil {
					slog.With("contract", contractType).With("err", err.Error()).Warn("code check failed")
				}
				status[context][string(contractType)] = statusEntry{
					Address: addr.Hex(),
					HasCode: len(code) > 0,
				}
			}
		}

		out, err := yaml.Marshal(status)
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}

		fmt.Print(string(out))
		return nil
	},
}

// marshalSummary renders the deployment result for the summary file.
func marshalSummary(result any) ([]byte, error) {
	return yaml.Marshal(result)
}
