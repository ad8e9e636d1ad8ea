// 包 geoip：客户端 IP -> 坐标（MaxMind City 数据库，可选）
package geoip

import (
	"errors"
	"fmt"
	"net"

	"counties/internal/logger"

	"github.com/oschwald/geoip2-golang"
)

var (
	ErrBadIP      = errors.New("bad ip")
	ErrNoLocation = errors.New("ip has no location")
)

// Location：定位结果
type Location struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyRadius uint16  `json:"accuracy_radius_km"`
	CountryISO     string  `json:"country_iso,omitempty"`
	City           string  `json:"city,omitempty"`
}

// Locator：按 IP 定位的能力，便于测试替换
type Locator interface {
	Locate(ip string) (Location, error)
}

// Reader：基于 geoip2 的实现
type Reader struct {
	db *geoip2.Reader
}

// Open：打开 GEOIP_PATH 指向的 mmdb 文件
func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	md := db.Metadata()
	logger.L().Info("geoip_open_ok", "path", path, "type", md.DatabaseType, "build_epoch", md.BuildEpoch)
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// 文档注释：定位
// 约束：无法解析的 IP 返回 ErrBadIP；数据库中无坐标（经纬度均为 0）返回 ErrNoLocation。
func (r *Reader) Locate(ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, fmt.Errorf("%w: %q", ErrBadIP, ip)
	}
	rec, err := r.db.City(parsed)
	if err != nil {
		return Location{}, err
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return Location{}, fmt.Errorf("%w: %s", ErrNoLocation, ip)
	}
	return Location{
		Latitude:       rec.Location.Latitude,
		Longitude:      rec.Location.Longitude,
		AccuracyRadius: rec.Location.AccuracyRadius,
		CountryISO:     rec.Country.IsoCode,
		City:           rec.City.Names["en"],
	}, nil
}
