package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"algovis/internal/server"
)

// devHost は開発サーバーの既定のホスト
const devHost = "127.0.0.1"

func devCmd() *cobra.Command {
	var flags serverFlags

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the built-in development server",
		Long: `Run the built-in development server.

Debug mode is on: gin logs its routes, render errors return a detailed
diagnostic page, and templates are re-read on every request. The server
listens on 127.0.0.1 unless --host is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			cfg.Server.Debug = true
			cfg.Templates.AutoReload = true
			if flags.host == "" {
				cfg.Server.Host = devHost
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("設定の検証に失敗しました: %w", err)
			}

			log.Printf("開発サーバーを起動します: http://%s/", cfg.ServerAddress())
			log.Printf("テンプレート: %s (リクエストごとに再読み込み)", cfg.Templates.Dir)
			return server.Run(cmd.Context(), cfg)
		},
	}

	flags.register(cmd)
	return cmd
}
