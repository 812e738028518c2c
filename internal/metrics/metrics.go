// Package metrics はPrometheus向けのメトリクスを定義します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "visualizer"

// 描画結果のラベル値
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
)

// Metrics はHTTPとテンプレート描画のメトリクスを保持する
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rendersTotal    *prometheus.CounterVec
	parsesTotal     prometheus.Counter
}

// New は reg にメトリクスを登録して返す
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "template",
			Name:      "renders_total",
			Help:      "Total number of page renders by result",
		}, []string{"result"}),

		parsesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "template",
			Name:      "parses_total",
			Help:      "Total number of times the template set was read from storage",
		}),
	}
}

// Middleware はリクエスト数と処理時間を記録するginミドルウェアを返す
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 未登録のパスはラベルの爆発を防ぐためまとめる
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveRender は描画結果を記録する
func (m *Metrics) ObserveRender(result string) {
	m.rendersTotal.WithLabelValues(result).Inc()
}

// ObserveParse はテンプレートの読み込みを記録する
func (m *Metrics) ObserveParse() {
	m.parsesTotal.Inc()
}
