// 包 revgeo：坐标 -> 最近的县
package revgeo

import (
	"math"
	"time"

	"counties/internal/country"
	"counties/internal/logger"
	"counties/internal/metrics"
	"counties/internal/utils"
)

// Options：最近邻参数
type Options struct {
	RadiusKm  float64
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultOptions：半径 80km，缓存 4096 项、1 小时
func DefaultOptions() Options {
	return Options{RadiusKm: 80, CacheSize: 4096, CacheTTL: time.Hour}
}

// OptionsFromEnv：NEARBY_RADIUS_KM、NEARBY_CACHE_TTL_S，非法或非正值回退默认值
func OptionsFromEnv() Options {
	o := DefaultOptions()
	if f := utils.EnvFloat("NEARBY_RADIUS_KM", o.RadiusKm); f > 0 {
		o.RadiusKm = f
	}
	if d := utils.EnvSeconds("NEARBY_CACHE_TTL_S", o.CacheTTL); d > 0 {
		o.CacheTTL = d
	}
	return o
}

// CountyPlaces：每个县一个地点
func CountyPlaces(c *country.Country) []Place {
	all := c.AllCounties()
	out := make([]Place, 0, len(all))
	for _, cty := range all {
		out = append(out, Place{ID: cty.ID, Name: cty.Name, Lat: cty.Location.Latitude, Lon: cty.Location.Longitude})
	}
	return out
}

// Locator：最近县查询器，构造后只读（缓存内部加锁），可并发使用
type Locator struct {
	kd          *kdNode
	cache       *LRU
	maxRadiusKm float64
	size        int
}

func NewLocator(places []Place, o Options) *Locator {
	if o.RadiusKm <= 0 {
		o.RadiusKm = DefaultOptions().RadiusKm
	}
	l := &Locator{cache: NewLRU(o.CacheSize, o.CacheTTL), maxRadiusKm: o.RadiusKm, size: len(places)}
	if len(places) > 0 {
		l.kd = buildKD(append([]Place(nil), places...), 0)
	}
	logger.L().Debug("revgeo_locator_built", "places", len(places), "radius_km", o.RadiusKm)
	return l
}

// RadiusKm：最大匹配半径
func (l *Locator) RadiusKm() float64 { return l.maxRadiusKm }

// 文档注释：最近的县
// 约束：坐标非法（NaN/Inf/越界）或最近的县超出半径时返回 false；缓存键为 geohash(6)，距离按查询点重新计算。
func (l *Locator) Nearest(lat, lon float64) (Match, bool) {
	if !validCoord(lat, lon) || l.kd == nil {
		return Match{}, false
	}
	pt := Point{Lat: lat, Lon: lon}
	key := encodeGeohash(lat, lon, cacheKeyPrecision)
	if e, ok := l.cache.Get(key); ok {
		metrics.NearbyCacheHitsTotal.Inc()
		if !e.found {
			return Match{}, false
		}
		d := distanceKm(pt, e.place.Lat, e.place.Lon)
		if d > l.maxRadiusKm {
			return Match{}, false
		}
		return Match{Place: e.place, DistanceKm: d}, true
	}
	metrics.NearbyCacheMissesTotal.Inc()
	p, d := nearest(l.kd, pt)
	if d > l.maxRadiusKm {
		l.cache.Set(key, entry{})
		return Match{}, false
	}
	l.cache.Set(key, entry{place: p, found: true})
	return Match{Place: p, DistanceKm: d}, true
}

func validCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Distance：查询点到地点的大圆距离（km），供外部缓存命中后重算
func Distance(p Place, lat, lon float64) float64 {
	return distanceKm(Point{Lat: lat, Lon: lon}, p.Lat, p.Lon)
}
