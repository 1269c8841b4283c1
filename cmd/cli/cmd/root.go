// Package cmd provides the propensity command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/internal/infrastructure"
	"github.com/JaimeStill/propensity/internal/service"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "propensity",
	Short: "Train and query the vehicle insurance propensity model",
	Long: `propensity runs the training pipeline against the customer collection and
classifies customers with the promoted model.

Examples:
  propensity train
  propensity predict --gender 1 --age 44 --driving-license 1 --region-code 28 \
    --previously-insured 0 --annual-premium 40454 --policy-sales-channel 26 \
    --vintage 217 --vehicle-age-gt-2-years 1 --vehicle-damage-yes 1`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.BaseConfigFile, "base config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(openapiCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "propensity version %s\n", cfg.Version)
		return nil
	},
}

// withService loads configuration, starts the infrastructure, and runs fn
// against a Service. The infrastructure is shut down when fn returns.
func withService(ctx context.Context, fn func(context.Context, *service.Service) error) error {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	infra, err := infrastructure.NewWithLogger(cfg, logger)
	if err != nil {
		return err
	}
	if err := infra.Start(); err != nil {
		return err
	}
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		logger.Warn("subsystems started with errors", "error", err)
	}

	svc, err := service.New(cfg, infra)
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}
