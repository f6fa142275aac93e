// 包 geo：按 IP 推断所在国家，用于国家列表加载后的默认选择；数据源为本地 GeoIP2/GeoLite2 国家库
package geo

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"locfeed/internal/location"
	"locfeed/internal/logger"
)

// ErrNoCountry：库中无该 IP 的国家信息
var ErrNoCountry = errors.New("geo: no country for ip")

// Country：国家的 ISO 代码与英文名
type Country struct {
	ISO  string
	Name string
}

// Match：选项名称与国家英文名或 ISO 代码相同（忽略大小写）即视为匹配
func (c Country) Match(o location.Option) bool {
	label := strings.TrimSpace(o.Label)
	if label == "" {
		return false
	}
	return (c.Name != "" && strings.EqualFold(label, c.Name)) || (c.ISO != "" && strings.EqualFold(label, c.ISO))
}

// 文档注释：国家定位器
// 背景：只读打开 mmdb 文件；查询并发安全（底层 Reader 支持并发读）。
type Locator struct {
	db *geoip2.Reader
}

// Open：打开 GeoIP2/GeoLite2 Country 或 City 库
func Open(path string) (*Locator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, err)
	}
	logger.L().Debugw("geoip_open", "path", path, "type", db.Metadata().DatabaseType)
	return &Locator{db: db}, nil
}

func (l *Locator) Close() error { return l.db.Close() }

// Lookup：查询 ip 所在国家
func (l *Locator) Lookup(ip string) (Country, error) {
	p := net.ParseIP(strings.TrimSpace(ip))
	if p == nil {
		return Country{}, fmt.Errorf("geo: invalid ip %q", ip)
	}
	rec, err := l.db.Country(p)
	if err != nil {
		return Country{}, err
	}
	c := Country{ISO: rec.Country.IsoCode, Name: rec.Country.Names["en"]}
	if c.ISO == "" && c.Name == "" {
		return Country{}, ErrNoCountry
	}
	logger.L().Debugw("geoip_lookup", "ip", ip, "iso", c.ISO, "name", c.Name)
	return c, nil
}
