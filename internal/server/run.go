package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"algovis/internal/config"
	"algovis/internal/page"
	"algovis/web"
)

// Run は設定に従ってサーバーを作成し、停止するまで動かす
// テンプレートディレクトリがなければ埋め込みテンプレートを使う
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	templates := page.OpenFS(cfg.Templates.Dir, web.TemplatesFS())
	return New(cfg, templates).Start(ctx)
}
