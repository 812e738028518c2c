package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv は設定ファイルのパスを指定する環境変数
const ConfigPathEnv = "VISUALIZER_CONFIG"

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Templates TemplatesConfig `yaml:"templates"`
	Admin     AdminConfig     `yaml:"admin"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // 読み込みタイムアウト
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // 書き込みタイムアウト
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // シャットダウン待ち時間

	Debug          bool     `yaml:"debug"`           // 詳細なエラーページとデバッグログ
	TrustedProxies []string `yaml:"trusted_proxies"` // X-Forwarded-For を信頼するプロキシ
	SSL            bool     `yaml:"ssl"`             // アプリ自身がTLSを終端する場合のみ true
}

// TemplatesConfig はテンプレートリソースの設定
type TemplatesConfig struct {
	Dir      string   `yaml:"dir"`      // テンプレートを置くディレクトリ
	Index    string   `yaml:"index"`    // ルートで描画するテンプレート名
	Patterns []string `yaml:"patterns"` // Dir 内で読み込むファイルのパターン

	// AutoReload が true の場合、描画のたびにテンプレートを読み直す
	AutoReload bool `yaml:"auto_reload"`

	Title string `yaml:"title"` // ページタイトル
}

// AdminConfig はヘルスチェックとメトリクス用リスナーの設定
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			TrustedProxies:  []string{"127.0.0.1", "::1"},
		},
		Templates: TemplatesConfig{
			Dir:        "web/templates",
			Index:      "index.html",
			Patterns:   []string{"*.html", "*.tmpl"},
			AutoReload: true,
			Title:      "Sorting Algorithm Visualizer",
		},
		Admin: AdminConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9090,
		},
	}
}

// Load は設定を読み込む
// デフォルト値、設定ファイル、環境変数の順に上書きする
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigPathEnv))
}

// LoadFile は path の設定ファイルを読み込む。path が空ならファイルは読まない
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// mergeFile はYAMLファイルの内容を現在の設定に上書きする
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() error {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Templates.Dir = getEnvOrDefault("TEMPLATES_DIR", c.Templates.Dir)
	c.Admin.Port = getEnvAsIntOrDefault("ADMIN_PORT", c.Admin.Port)

	var err error
	if c.Templates.AutoReload, err = getEnvAsBoolOrDefault("TEMPLATES_AUTO_RELOAD", c.Templates.AutoReload); err != nil {
		return err
	}
	if c.Server.Debug, err = getEnvAsBoolOrDefault("VISUALIZER_DEBUG", c.Server.Debug); err != nil {
		return err
	}
	if c.Admin.Enabled, err = getEnvAsBoolOrDefault("ADMIN_ENABLED", c.Admin.Enabled); err != nil {
		return err
	}
	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("タイムアウトに負の値は指定できません")
	}

	// テンプレート設定の検証
	if c.Templates.Dir == "" {
		return errors.New("テンプレートディレクトリが設定されていません")
	}
	if c.Templates.Index == "" {
		return errors.New("テンプレート名が設定されていません")
	}
	if strings.ContainsAny(c.Templates.Index, `/\`) {
		return fmt.Errorf("テンプレート名にパス区切りは使えません: %s", c.Templates.Index)
	}
	if len(c.Templates.Patterns) == 0 {
		return errors.New("テンプレートのパターンが設定されていません")
	}

	// 管理用リスナーの検証
	if c.Admin.Enabled {
		if c.Admin.Port < 1 || c.Admin.Port > 65535 {
			return fmt.Errorf("無効な管理ポート番号: %d", c.Admin.Port)
		}
		if c.Admin.Port == c.Server.Port {
			return fmt.Errorf("管理ポートがサーバーポートと重複しています: %d", c.Admin.Port)
		}
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AdminAddress は管理用リスナーのアドレスを返す
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.Host, c.Admin.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault は環境変数を真偽値として取得する
func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("環境変数 %s の値が不正です: %q", key, value)
	}
	return b, nil
}
