package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newAdminRouter は管理用のルーターを作成する
// ページ用のリスナーとは別のアドレスで公開する
func (s *Server) newAdminRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// ヘルスチェックエンドポイント
	router.GET("/healthz", s.handleHealth)

	// メトリクスエンドポイント
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	})))

	return router
}

// handleHealth はヘルスチェックエンドポイント
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().Format(time.RFC3339),
		"uptime":      time.Since(s.startTime).Round(time.Second).String(),
		"auto_reload": s.renderer.AutoReload(),
	})
}
