package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"algovis/internal/config"
	"algovis/internal/metrics"
	"algovis/internal/page"
)

const (
	tracerName             = "algovis/internal/server"
	defaultShutdownTimeout = 5 * time.Second
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config   *config.Config
	router   *gin.Engine
	renderer *page.Renderer
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	tracer   trace.TracerProvider

	httpServer  *http.Server
	adminServer *http.Server
	startTime   time.Time
}

// Option は Server の設定を変更する
type Option func(*Server)

// WithRegistry はメトリクスを登録するレジストリを設定する
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithTracerProvider はスパンの作成に使う TracerProvider を設定する
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		if tp != nil {
			s.tracer = tp
		}
	}
}

// New は新しいServerインスタンスを作成する
// templates はテンプレートリソースを読み込むファイルシステム
func New(cfg *config.Config, templates fs.FS, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		tracer:    otel.GetTracerProvider(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s.metrics = metrics.New(s.registry)

	s.renderer = page.NewRenderer(templates, cfg.Templates, page.NewData(cfg.Templates.Title),
		page.WithObserver(s.metrics),
		page.WithTracerProvider(s.tracer),
	)

	s.router = s.newRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Admin.Enabled {
		s.adminServer = &http.Server{
			Addr:        cfg.AdminAddress(),
			Handler:     s.newAdminRouter(),
			ReadTimeout: cfg.Server.ReadTimeout,
		}
	}

	return s
}

// newRouter はページ用のルーターを作成する
func (s *Server) newRouter() *gin.Engine {
	router := gin.New()

	// "/" 以外のメソッドには 405 を返す
	router.HandleMethodNotAllowed = true

	if err := router.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		log.Printf("信頼するプロキシの設定に失敗しました: %v", err)
	}

	router.Use(
		requestID(),
		accessLog(),
		s.metrics.Middleware(),
		tracing(s.tracer.Tracer(tracerName)),
		gin.Recovery(),
		securityHeaders(s.config.Server),
	)

	s.setupRoutes(router)
	return router
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes(router *gin.Engine) {
	h := &PageHandler{
		renderer: s.renderer,
		debug:    s.config.Server.Debug,
	}

	// 可視化ページ
	router.GET("/", h.Index)
}

// Handler はページ用のHTTPハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.router
}

// AdminHandler は管理用のHTTPハンドラを返す。無効な場合は nil
func (s *Server) AdminHandler() http.Handler {
	if s.adminServer == nil {
		return nil
	}
	return s.adminServer.Handler
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	// 自動リロードが無効ならここでテンプレートを読み込んでおく
	if err := s.renderer.Preload(); err != nil {
		log.Printf("テンプレートの事前読み込みに失敗しました: %v", err)
	}

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 2)

	// サーバーを別ゴルーチンで起動
	go func() {
		log.Printf("HTTPサーバーを起動しています: %s (自動リロード: %v)",
			s.config.ServerAddress(), s.renderer.AutoReload())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	if s.adminServer != nil {
		go func() {
			log.Printf("管理用サーバーを起動しています: %s", s.config.AdminAddress())
			if err := s.adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				shutdownCh <- fmt.Errorf("管理用サーバーの起動に失敗: %w", err)
			}
		}()
	}

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		_ = s.Shutdown()
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("サーバーのシャットダウンに失敗: %w", err))
	}
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("管理用サーバーのシャットダウンに失敗: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}
