// 包 config：集中读取运行配置；优先级为 默认值 → YAML 文件 → .env/环境变量 → 命令行参数
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type LocationConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type FeedConfig struct {
	BaseURL        string        `yaml:"base_url"`
	UpdatesPath    string        `yaml:"updates_path"`
	Format         string        `yaml:"format"`
	SessionID      string        `yaml:"session_id"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	IndicatorDelay time.Duration `yaml:"indicator_delay"`
}

type GeoIPConfig struct {
	DB string `yaml:"db"`
	IP string `yaml:"ip"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Config：全部运行配置
type Config struct {
	Location    LocationConfig `yaml:"location"`
	Feed        FeedConfig     `yaml:"feed"`
	GeoIP       GeoIPConfig    `yaml:"geoip"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Log         LogConfig      `yaml:"log"`
}

// Default：内置默认值
func Default() *Config {
	return &Config{
		Location: LocationConfig{
			URL:     "http://127.0.0.1:8080/api.php",
			Timeout: 60 * time.Second,
		},
		Feed: FeedConfig{
			BaseURL:        "http://127.0.0.1:5000",
			UpdatesPath:    "/api/get_updates",
			IndicatorDelay: 2500 * time.Millisecond,
		},
		Log: LogConfig{Level: "info", File: "locfeed.log"},
	}
}

// 文档注释：加载配置
// 背景：沿用 .env 约定（当前目录），文件缺失不报错；path 非空时读取 YAML 并覆盖默认值，文件缺失报错。
// 约束：环境变量覆盖 YAML；解析失败的数值型环境变量返回错误而非静默忽略。
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	str := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	dur := func(env string, dst *time.Duration) error {
		v := os.Getenv(env)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = d
		return nil
	}
	str("LOCATION_API_URL", &c.Location.URL)
	str("FEED_BASE_URL", &c.Feed.BaseURL)
	str("FEED_UPDATES_PATH", &c.Feed.UpdatesPath)
	str("FEED_FORMAT", &c.Feed.Format)
	str("FEED_SESSION_ID", &c.Feed.SessionID)
	str("GEOIP_DB", &c.GeoIP.DB)
	str("GEOIP_IP", &c.GeoIP.IP)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	return errors.Join(
		dur("REQUEST_TIMEOUT", &c.Location.Timeout),
		dur("POLL_INTERVAL", &c.Feed.PollInterval),
		dur("INDICATOR_DELAY", &c.Feed.IndicatorDelay),
	)
}

// Validate：检查地址与时长
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{"location.url": c.Location.URL, "feed.base_url": c.Feed.BaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("%s: invalid http url %q", name, raw))
		}
	}
	if c.Location.Timeout <= 0 {
		errs = append(errs, errors.New("location.timeout must be positive"))
	}
	if c.Feed.IndicatorDelay <= 0 {
		errs = append(errs, errors.New("feed.indicator_delay must be positive"))
	}
	if c.Feed.PollInterval < 0 {
		errs = append(errs, errors.New("feed.poll_interval must not be negative"))
	}
	if !strings.HasPrefix(c.Feed.UpdatesPath, "/") {
		errs = append(errs, fmt.Errorf("feed.updates_path must start with /: %q", c.Feed.UpdatesPath))
	}
	return errors.Join(errs...)
}
