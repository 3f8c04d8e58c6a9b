package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arenaworks/arenakit/configs"
	"github.com/arenaworks/arenakit/internal/deploy"
	"github.com/arenaworks/arenakit/internal/keys"
	"github.com/arenaworks/arenakit/internal/localnet"
	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "arenakit"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "SDK and CLI for deploying and wiring on-chain game contracts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(execDir)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// Flags and embedded defaults can provide all necessary
		// configuration, so a missing config file is not an error.
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
			configs.Values = configs.MustDefaultConfig()
		} else if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		logger.Initialize(logger.ParseLevel(configs.Values.LogLevel))

		if viper.ConfigFileUsed() != "" {
			slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
		} else {
			slog.Debug("no config file found, using embedded defaults")
		}

		return nil
	},
}

func main() {
	rootCmd.AddCommand(deploy.CMD)
	rootCmd.AddCommand(keys.CMD)
	rootCmd.AddCommand(localnet.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
