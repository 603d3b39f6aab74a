// 包 geoloc：访客 IP 定位（MaxMind mmdb），用于让会话初始朝向访客所在经度
package geoloc

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"dotglobe/internal/logger"
	"dotglobe/internal/marker"
	"dotglobe/internal/view"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

var ErrNoLocation = errors.New("geoloc: no location for ip")

// Location 定位结果
type Location struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// 只取坐标的通用记录（非 GeoIP2-City 的 mmdb，如 DB-IP/IPinfo lite）
type rawRecord struct {
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// 文档注释：IP 定位器
// 背景：优先按 GeoIP2/GeoLite2-City 结构解析；库类型不是 City 时退回到只读 location 字段的通用解析。
// 约束：nil 定位器可用，总是返回 ErrNoLocation；并发安全（底层 reader 只读 mmap）。
type Locator struct {
	city *geoip2.Reader
	raw  *maxminddb.Reader
}

// Open 打开 mmdb 文件
func Open(path string) (*Locator, error) {
	raw, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoloc: open %s: %w", path, err)
	}
	lc := &Locator{raw: raw}
	if strings.Contains(raw.Metadata.DatabaseType, "City") {
		if city, err := geoip2.Open(path); err == nil {
			lc.city = city
		} else {
			logger.L().Warn("geoip_city_open_error", "path", path, "err", err)
		}
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", raw.Metadata.DatabaseType, "city", lc.city != nil)
	return lc, nil
}

// OpenOptional 路径为空或打开失败时返回 nil（功能关闭）
func OpenOptional(path string) *Locator {
	if path == "" {
		logger.L().Info("geoip_disabled")
		return nil
	}
	lc, err := Open(path)
	if err != nil {
		logger.L().Error("geoip_open_error", "err", err)
		return nil
	}
	return lc
}

func (lc *Locator) Close() error {
	if lc == nil {
		return nil
	}
	if lc.city != nil {
		_ = lc.city.Close()
	}
	return lc.raw.Close()
}

// Lookup 定位 IP；私有地址、解析失败或库中没有坐标时返回 ErrNoLocation
func (lc *Locator) Lookup(ipText string) (Location, error) {
	if lc == nil {
		return Location{}, ErrNoLocation
	}
	ip := net.ParseIP(strings.TrimSpace(ipText))
	if ip == nil || ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() {
		return Location{}, ErrNoLocation
	}
	if lc.city != nil {
		rec, err := lc.city.City(ip)
		if err == nil && (rec.Location.Latitude != 0 || rec.Location.Longitude != 0) {
			return Location{
				Lon:     rec.Location.Longitude,
				Lat:     rec.Location.Latitude,
				City:    rec.City.Names["en"],
				Country: rec.Country.IsoCode,
			}, nil
		}
	}
	var rr rawRecord
	if err := lc.raw.Lookup(ip, &rr); err != nil {
		return Location{}, fmt.Errorf("geoloc: lookup %s: %w", ipText, err)
	}
	if rr.Location.Latitude == 0 && rr.Location.Longitude == 0 {
		return Location{}, ErrNoLocation
	}
	return Location{Lon: rr.Location.Longitude, Lat: rr.Location.Latitude, Country: rr.Country.ISOCode}, nil
}

// Home 面向访客的初始视图：经度对准访客，纬度保持默认倾角
func (l Location) Home() view.State {
	return view.State{Lng: l.Lon, Lat: view.HomeLat, Scale: view.HomeScale}.Normalize()
}

// Marker 访客标注（非高亮）
func (l Location) Marker() marker.Marker {
	return marker.Marker{Name: "You", Lon: l.Lon, Lat: l.Lat}
}
