// Package main はVisualizerサーバーコマンドの実装です
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"algovis/internal/config"
)

// ビルド時に設定されるバージョン情報
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visualizer",
		Short: "Sorting algorithm visualizer page server",
		Long: `Serves the sorting algorithm visualizer page on GET /.

Use "serve" under a process manager in production, or "dev" to run
the built-in server with debug output and template auto-reload.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		devCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// serverFlags はサーバー系コマンドに共通のオプション
type serverFlags struct {
	configPath string
	host       string
	port       int
	admin      bool
	adminPort  int
}

// register はオプションをコマンドに登録する
func (f *serverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "設定ファイルのパス (デフォルト: $"+config.ConfigPathEnv+")")
	cmd.Flags().StringVar(&f.host, "host", "", "サーバーのホスト")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "サーバーのポート")
	cmd.Flags().BoolVar(&f.admin, "admin", false, "ヘルスチェックとメトリクス用のリスナーを有効にする")
	cmd.Flags().IntVar(&f.adminPort, "admin-port", 0, "管理用リスナーのポート")
}

// load は設定を読み込み、コマンドラインオプションで上書きする
func (f *serverFlags) load(cmd *cobra.Command) (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = os.Getenv(config.ConfigPathEnv)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	// コマンドラインオプションで設定を上書き
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if cmd.Flags().Changed("admin") {
		cfg.Admin.Enabled = f.admin
	}
	if f.adminPort != 0 {
		cfg.Admin.Port = f.adminPort
	}

	return cfg, nil
}
