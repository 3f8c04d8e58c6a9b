package localnet

import (
	"github.com/arenaworks/arenakit/configs"
	"github.com/spf13/cobra"
)

// CMD is the localnet command group.
var CMD = &cobra.Command{
	Use:   "localnet",
	Short: "Manage a disposable local dev chain",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the local dev chain container",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := New(
			configs.Values.Localnet.Image,
			configs.Values.Localnet.RPCPort,
			configs.Values.Localnet.ChainID,
		)
		if err != nil {
			return err
		}
		defer service.Close()

		return service.Up(cmd.Context())
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the local dev chain container",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := New(
			configs.Values.Localnet.Image,
			configs.Values.Localnet.RPCPort,
			configs.Values.Localnet.ChainID,
		)
		if err != nil {
			return err
		}
		defer service.Close()

		return service.Down(cmd.Context())
	},
}

func init() {
	CMD.AddCommand(upCmd)
	CMD.AddCommand(downCmd)
}
