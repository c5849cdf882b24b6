package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	internalApp "github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/internal/dao"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

// openApp 加载配置并构建 App Container，用于一次性的运维命令
func openApp(configFile string) (*internalApp.App, error) {
	if configFile == "" {
		p, err := resolveConfig()
		if err != nil {
			return nil, err
		}
		configFile = p
	}
	cfg, _, err := internalApp.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := initStorageWithConfig(cfg); err != nil {
		return nil, err
	}

	lg, err := logger.NewLogger(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, Production: cfg.Log.Production})
	if err != nil {
		return nil, err
	}
	db, err := dao.NewDBEngine(cfg.DatabaseConfig(), lg)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	return internalApp.NewApp(cfg, lg, db)
}

func init() {
	var configFile string

	backupCommand := &cobra.Command{
		Use:   "backup",
		Short: "Manage fragment backups",
	}

	cleanupCommand := &cobra.Command{
		Use:   "cleanup [-c config_file]",
		Short: "Delete expired backups once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configFile)
			if err != nil {
				return err
			}
			ctx := context.Background()
			defer func() {
				if err := a.Shutdown(ctx); err != nil {
					bootstrapLogger.Warn("app shutdown", zap.Error(err))
				}
			}()

			removed, err := a.BackupService.Cleanup(ctx)
			if err != nil {
				return err
			}
			a.Metrics.BackupsRemoved.Add(float64(removed))
			fmt.Printf("removed %d expired backup(s)\n", removed)
			return nil
		},
	}
	cleanupCommand.Flags().StringVarP(&configFile, "config", "c", "", "config file")

	backupCommand.AddCommand(cleanupCommand)
	rootCmd.AddCommand(backupCommand)
}
