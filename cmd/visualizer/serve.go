package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"algovis/internal/server"
)

func serveCmd() *cobra.Command {
	var flags serverFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the page server in production mode",
		Long: `Run the page server in production mode.

Errors are answered with a bare 500 and gin runs in release mode.
Intended to be run under a process manager such as systemd.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("設定の検証に失敗しました: %w", err)
			}

			log.Printf("Visualizer サーバーを起動します: %s", cfg.ServerAddress())
			return server.Run(cmd.Context(), cfg)
		},
	}

	flags.register(cmd)
	return cmd
}
