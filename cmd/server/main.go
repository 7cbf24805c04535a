package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"farmtech/config"
	"farmtech/pkg/logger"
)

var (
	verbose bool
	cfg     config.AppConfig
	log     *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "farmtech",
		Short:         "Farmer dashboard backend: resource marketplace, irrigation game, advisor chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if log, err = logger.New(cfg.Env, verbose); err != nil {
				return err
			}
			if cfg.DotenvErr != nil {
				log.Debug("no .env file loaded", zap.Error(cfg.DotenvErr))
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSimulateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
