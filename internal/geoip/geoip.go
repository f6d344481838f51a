// 包 geoip：把 IP 地址节点解析为目录中的区域（MaxMind 国家库 → ISO alpha-2 → 自适应区域）
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"geo-catalog/internal/catalog"
	"geo-catalog/internal/logger"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

var (
	ErrBadIP        = errors.New("invalid ip address")
	ErrNoCountry    = errors.New("ip has no country record")
	ErrDatabaseType = errors.New("mmdb is not a country or city database")
)

type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

// Resolver：只读，可并发使用
type Resolver struct {
	db  countryReader
	loc *catalog.Locator
}

// 文档注释：打开 MaxMind 数据库并绑定目录定位器
// 背景：网络图的节点常以 IP 地址命名；国家库给出 ISO alpha-2 代码，再由目录的 ISO_A2 列映射到区域。
// 约束：仅接受 Country/City 类型的库；打开失败直接返回错误，由调用方决定是否禁用 /geoip。
func Open(path string, loc *catalog.Locator) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	if err := checkMetadata(db.Metadata()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := db.Metadata()
	logger.L().Info("geoip_ready", "path", path, "type", m.DatabaseType, "built", time.Unix(int64(m.BuildEpoch), 0).UTC().Format(time.DateOnly))
	return New(db, loc), nil
}

func New(db countryReader, loc *catalog.Locator) *Resolver {
	return &Resolver{db: db, loc: loc}
}

func checkMetadata(m maxminddb.Metadata) error {
	t := strings.ToLower(m.DatabaseType)
	if strings.Contains(t, "country") || strings.Contains(t, "city") {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDatabaseType, m.DatabaseType)
}

// Lookup：IP → 自适应区域；ISO 代码在目录中不存在时返回 UnknownRegionError
func (r *Resolver) Lookup(ip string) (catalog.Placement, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return catalog.Placement{}, fmt.Errorf("%w: %q", ErrBadIP, ip)
	}
	rec, err := r.db.Country(parsed)
	if err != nil {
		return catalog.Placement{}, err
	}
	iso := rec.Country.IsoCode
	if iso == "" {
		return catalog.Placement{}, ErrNoCountry
	}
	p, ok := r.loc.ByISO2(iso)
	if !ok {
		return catalog.Placement{}, &catalog.UnknownRegionError{Name: iso, Resolution: catalog.Adaptive}
	}
	p.Input = ip
	logger.L().Debug("geoip_lookup", "ip", ip, "iso2", iso, "name", p.Name)
	return p, nil
}

func (r *Resolver) Close() error { return r.db.Close() }
