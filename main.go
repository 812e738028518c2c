package main

import (
	"context"
	"log"

	"algovis/internal/config"
	"algovis/internal/server"
)

// main は本番用の起動経路
// プロセスマネージャーの配下で動かすことを想定している
func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを起動
	if err := server.Run(context.Background(), cfg); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}
