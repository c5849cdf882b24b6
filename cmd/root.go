package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDefault 内置的默认配置，首次运行时写到磁盘
var configDefault string

var rootCmd = &cobra.Command{
	Use:           "murverse",
	Short:         "Murverse fragment service and client",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with the embedded default config.
func Execute(defaultConfig string) {
	configDefault = defaultConfig
	if err := rootCmd.Execute(); err != nil {
		bootstrapLogger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
