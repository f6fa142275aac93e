// 程序入口：读取配置、初始化日志与指标，并分发到各子命令；子命令实现见同目录其他文件
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"locfeed/internal/config"
	"locfeed/internal/logger"
	"locfeed/internal/metrics"
	"locfeed/internal/request"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app：命令行共享状态；命令行参数只覆盖显式给出的项
type app struct {
	cfgPath     string
	locationURL string
	feedURL     string
	geoipDB     string
	metricsAddr string
	logLevel    string
	logFormat   string
	timeout     time.Duration

	cfg     *config.Config
	metrics *http.Server
}

const annotationTUI = "tui"

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "locfeed",
		Short: "Cascading location picker and live feed viewer",
		Long: `locfeed talks to two backends:

  a location API that serves country, state and city lists, and
  a feed service that pushes updates over a websocket and answers /data pulls.

Configuration is read from defaults, then an optional YAML file, then .env and
the environment, then command-line flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML config file")
	pf.StringVar(&a.locationURL, "location-url", "", "location API root URL (LOCATION_API_URL)")
	pf.StringVar(&a.feedURL, "feed-url", "", "feed service base URL (FEED_BASE_URL)")
	pf.StringVar(&a.geoipDB, "geoip-db", "", "GeoLite2/GeoIP2 country database for country pre-selection (GEOIP_DB)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (METRICS_ADDR)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "console or json (LOG_FORMAT)")
	pf.DurationVar(&a.timeout, "timeout", 0, "request timeout (REQUEST_TIMEOUT)")

	root.AddCommand(
		a.selectCmd(),
		a.listCmd(),
		a.feedCmd(),
		a.dataCmd(),
		a.commandCmd(),
	)
	return root
}

// 文档注释：子命令执行前的公共初始化
// 背景：配置优先级 默认值 → YAML → .env/环境变量 → 命令行；终端界面子命令把日志写入文件，避免覆盖画面。
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("location-url") {
		cfg.Location.URL = a.locationURL
	}
	if f.Changed("feed-url") {
		cfg.Feed.BaseURL = a.feedURL
	}
	if f.Changed("geoip-db") {
		cfg.GeoIP.DB = a.geoipDB
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}
	if f.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if f.Changed("timeout") {
		cfg.Location.Timeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logFile := ""
	if cmd.Annotations[annotationTUI] != "" {
		logFile = cfg.Log.File
	}
	if _, err := logger.Configure(cfg.Log.Level, cfg.Log.Format, logFile); err != nil {
		return err
	}
	logger.L().Debugw("config_loaded",
		"location_url", cfg.Location.URL,
		"feed_url", cfg.Feed.BaseURL,
		"timeout", cfg.Location.Timeout.String(),
		"geoip_db", cfg.GeoIP.DB,
	)

	if cfg.MetricsAddr != "" {
		a.startMetrics(cfg.MetricsAddr)
	}
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	logger.Sync()
}

// startMetrics：后台启动 /metrics 监听；监听失败只记录日志
func (a *app) startMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metrics = &http.Server{
		Addr:              addr,
		Handler:           logger.AccessMiddleware(logger.L())(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := a.metrics
	go func() {
		logger.L().Infow("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Errorw("metrics_listen_error", "addr", addr, "err", err)
		}
	}()
}

// requestClient：按配置的超时构建出站客户端
func (a *app) requestClient() *request.Client {
	return request.New(&http.Client{Timeout: a.cfg.Location.Timeout, Transport: &logger.Transport{}})
}
