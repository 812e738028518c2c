package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"algovis/internal/config"
	"algovis/internal/metrics"
)

const tracerName = "algovis/internal/page"

var (
	// ErrTemplateNotFound はテンプレートが存在しない、または読めない場合のエラー
	ErrTemplateNotFound = errors.New("テンプレートが見つかりません")

	// ErrTemplateInvalid はテンプレートの構文エラーまたは実行時エラー
	ErrTemplateInvalid = errors.New("テンプレートが不正です")
)

// Observer は描画結果を受け取る
// metrics.Metrics がこれを満たす
type Observer interface {
	ObserveParse()
	ObserveRender(result string)
}

type noopObserver struct{}

func (noopObserver) ObserveParse()        {}
func (noopObserver) ObserveRender(string) {}

// Renderer は固定のテンプレートを描画する
type Renderer struct {
	fsys       fs.FS
	index      string
	patterns   []string
	autoReload bool
	data       Data

	observer Observer
	tracer   trace.Tracer

	mu     sync.Mutex
	cached *template.Template
}

// Option は Renderer の設定を変更する
type Option func(*Renderer)

// WithObserver は描画結果の通知先を設定する
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTracerProvider はスパンの作成に使う TracerProvider を設定する
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Renderer) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewRenderer は fsys 上のテンプレートを描画する Renderer を作成する
func NewRenderer(fsys fs.FS, cfg config.TemplatesConfig, data Data, opts ...Option) *Renderer {
	r := &Renderer{
		fsys:       fsys,
		index:      cfg.Index,
		patterns:   cfg.Patterns,
		autoReload: cfg.AutoReload,
		data:       data,
		observer:   noopObserver{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AutoReload は描画のたびにテンプレートを読み直すかどうかを返す
func (r *Renderer) AutoReload() bool {
	return r.autoReload
}

// Preload は自動リロードが無効な場合にテンプレートを事前に読み込む
// 失敗してもキャッシュはされず、次の描画で再度読み込まれる
func (r *Renderer) Preload() error {
	if r.autoReload {
		return nil
	}
	_, err := r.templates()
	return err
}

// Render はテンプレートを描画した結果を返す
func (r *Renderer) Render(ctx context.Context) ([]byte, error) {
	_, span := r.tracer.Start(ctx, "page.Render",
		trace.WithAttributes(
			attribute.String("template.name", r.index),
			attribute.Bool("template.auto_reload", r.autoReload),
		),
	)
	defer span.End()

	tmpl, err := r.templates()
	if err != nil {
		r.fail(span, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, r.index, r.data); err != nil {
		err = fmt.Errorf("%w: %s の描画に失敗: %v", ErrTemplateInvalid, r.index, err)
		r.fail(span, err)
		return nil, err
	}

	r.observer.ObserveRender(metrics.ResultOK)
	span.SetAttributes(attribute.Int("template.bytes", buf.Len()))
	span.SetStatus(codes.Ok, "")
	return buf.Bytes(), nil
}

// fail は失敗をスパンとメトリクスに記録する
func (r *Renderer) fail(span trace.Span, err error) {
	result := metrics.ResultInvalid
	if errors.Is(err, ErrTemplateNotFound) {
		result = metrics.ResultNotFound
	}
	r.observer.ObserveRender(result)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// templates は描画に使うテンプレートセットを返す
func (r *Renderer) templates() (*template.Template, error) {
	if r.autoReload {
		return r.parse()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}
	tmpl, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.cached = tmpl
	return tmpl, nil
}

// parse はストレージからテンプレートセットを読み込む
func (r *Renderer) parse() (*template.Template, error) {
	r.observer.ObserveParse()

	if _, err := fs.Stat(r.fsys, r.index); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, r.index, err)
	}

	files, err := r.files()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(r.index).ParseFS(r.fsys, files...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, r.index, err)
		}
		return nil, fmt.Errorf("%w: %s の解析に失敗: %v", ErrTemplateInvalid, r.index, err)
	}

	return tmpl, nil
}

// files は読み込むファイル名を返す。index は常に先頭に含まれる
func (r *Renderer) files() ([]string, error) {
	files := []string{r.index}
	seen := map[string]bool{r.index: true}

	for _, pattern := range r.patterns {
		matches, err := fs.Glob(r.fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: パターン %q が不正: %v", ErrTemplateInvalid, pattern, err)
		}
		for _, name := range matches {
			if seen[name] {
				continue
			}
			seen[name] = true
			files = append(files, name)
		}
	}
	return files, nil
}
