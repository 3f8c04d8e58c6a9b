// Package keys manages the encrypted deployer key file.
package keys

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arenaworks/arenakit/configs"
	"github.com/arenaworks/arenakit/internal/storage"
	"github.com/spf13/cobra"
)

// CMD is the keys command group.
var CMD = &cobra.Command{
	Use:   "keys",
	Short: "Manage the encrypted deployer key",
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a fresh deployer key and write the encrypted key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv(configs.Values.Wallet.PasswordEnv)
		if password == "" {
			return fmt.Errorf("keystore password not set in $%s", configs.Values.Wallet.PasswordEnv)
		}

		keystore := storage.NewKeystore(configs.Values.Wallet.KeystoreFile)
		address, err := keystore.Create(password)
		if err != nil {
			return err
		}

		slog.
			With("address", address.Hex()).
			With("file", configs.Values.Wallet.KeystoreFile).
			Info("deployer key created")

		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the deployer address without decrypting the key",
	RunE: func(cmd *cobra.Command, args []string) error {
		keystore := storage.NewKeystore(configs.Values.Wallet.KeystoreFile)
		address, err := keystore.Address()
		if err != nil {
			return err
		}

		fmt.Println(address.Hex())
		return nil
	},
}

func init() {
	CMD.AddCommand(newCmd)
	CMD.AddCommand(inspectCmd)
}
