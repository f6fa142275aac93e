package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LocationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locfeed_location_requests_total",
		Help: "Total location API requests by list type",
	}, []string{"type"})
	LocationFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locfeed_location_fail_total",
		Help: "Total location API failures by list type and kind (app|transport)",
	}, []string{"type", "kind"})
	LocationStaleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locfeed_location_stale_total",
		Help: "Total location responses dropped because a newer selection superseded them",
	}, []string{"type"})
	LocationDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locfeed_location_duration_ms",
		Help:    "Location API call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000, 60000},
	}, []string{"type"})
	FeedFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locfeed_feed_fetch_total",
		Help: "Total feed pull requests by path",
	}, []string{"path"})
	FeedFetchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locfeed_feed_fetch_fail_total",
		Help: "Total feed pull transport failures by path",
	}, []string{"path"})
	FeedRendersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locfeed_feed_renders_total",
		Help: "Total feed values rendered",
	})
	FeedSkipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locfeed_feed_skips_total",
		Help: "Total feed values skipped as absent or unchanged",
	})
	ChannelMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locfeed_channel_messages_total",
		Help: "Total messages received on the push channel",
	})
	ChannelState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "locfeed_channel_state",
		Help: "Push channel state (0 connecting, 1 open, 2 closed)",
	})
)

func init() {
	prometheus.MustRegister(LocationRequestsTotal)
	prometheus.MustRegister(LocationFailTotal)
	prometheus.MustRegister(LocationStaleTotal)
	prometheus.MustRegister(LocationDurationMs)
	prometheus.MustRegister(FeedFetchTotal)
	prometheus.MustRegister(FeedFetchFailTotal)
	prometheus.MustRegister(FeedRendersTotal)
	prometheus.MustRegister(FeedSkipsTotal)
	prometheus.MustRegister(ChannelMessagesTotal)
	prometheus.MustRegister(ChannelState)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；由命令行 --metrics-addr 开启。
func Handler() http.Handler { return promhttp.Handler() }
