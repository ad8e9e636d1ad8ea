package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"counties/internal/geoip"
	"counties/internal/logger"
	"counties/internal/metrics"
	"counties/internal/revgeo"

	"github.com/redis/go-redis/v9"
)

var errNoNearbyCounty = errors.New("no county nearby")

// nearbyCached：Redis 中缓存的附近结果；未命中半径也缓存，避免重复计算
type nearbyCached struct {
	Found bool         `json:"found"`
	Place revgeo.Place `json:"place"`
}

// 文档注释：内部附近县查询（供 /nearby 与其他代码调用）
// 背景：进程内已有 geohash LRU；rc 非空时在其前增加一层跨实例共享的 Redis 缓存。
// 约束：缓存键按三位小数坐标，距离按查询点重新计算；Redis 读写失败只记录日志，回退到本地查询。
func NearbyQuery(ctx context.Context, rc *redis.Client, loc *revgeo.Locator, lat, lon float64, ttl time.Duration) (revgeo.Match, bool) {
	key := "nearby:" + formatCoord(lat) + ":" + formatCoord(lon)
	if rc != nil {
		s, err := rc.Get(ctx, key).Result()
		switch {
		case err == nil:
			var c nearbyCached
			if json.Unmarshal([]byte(s), &c) == nil {
				metrics.NearbyCacheHitsTotal.Inc()
				if !c.Found {
					return revgeo.Match{}, false
				}
				d := revgeo.Distance(c.Place, lat, lon)
				if d > loc.RadiusKm() {
					return revgeo.Match{}, false
				}
				return revgeo.Match{Place: c.Place, DistanceKm: d}, true
			}
		case !errors.Is(err, redis.Nil):
			logger.L().Debug("nearby_cache_get_error", "key", key, "err", err)
		}
	}
	m, ok := loc.Nearest(lat, lon)
	if rc != nil {
		b, _ := json.Marshal(nearbyCached{Found: ok, Place: m.Place})
		if err := rc.Set(ctx, key, string(b), ttl).Err(); err != nil {
			logger.L().Debug("nearby_cache_set_error", "key", key, "err", err)
		}
	}
	return m, ok
}

func formatCoord(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

type nearbyResult struct {
	County   revgeo.Match    `json:"county"`
	Source   string          `json:"source"`
	RadiusKm float64         `json:"radius_km"`
	IP       string          `json:"ip,omitempty"`
	Location *geoip.Location `json:"location,omitempty"`
}

// 文档注释：最近的县
// 参数：lat/lon 同时给出时按坐标查询；否则按 ip 参数或客户端 IP 经 GeoIP 定位。
// 约束：半径内没有县返回 404；未配置 GeoIP 且未给坐标返回 400。
func (s *server) nearby(w http.ResponseWriter, r *http.Request) {
	if s.Nearby == nil {
		writeError(w, http.StatusNotFound, errNoNearbyCounty)
		return
	}
	q := r.URL.Query()
	out := nearbyResult{Source: "coordinates", RadiusKm: s.Nearby.RadiusKm()}
	var lat, lon float64
	if q.Get("lat") != "" || q.Get("lon") != "" {
		var err error
		lat, lon, err = parseCoords(q.Get("lat"), q.Get("lon"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	} else {
		if s.GeoIP == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: lat and lon required", errBadRequest))
			return
		}
		ip := getClientIP(r)
		loc, err := s.GeoIP.Locate(ip)
		if err != nil {
			status := http.StatusNotFound
			if errors.Is(err, geoip.ErrBadIP) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}
		lat, lon = loc.Latitude, loc.Longitude
		out.Source, out.IP, out.Location = "ip", ip, &loc
	}
	m, ok := NearbyQuery(r.Context(), s.Redis, s.Nearby, lat, lon, s.NearbyCacheTTL)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: within %.0f km", errNoNearbyCounty, s.Nearby.RadiusKm()))
		return
	}
	out.County = m
	writeJSON(w, http.StatusOK, out)
}

func parseCoords(latS, lonS string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: bad lat %q", errBadRequest, latS)
	}
	lon, err := strconv.ParseFloat(lonS, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: bad lon %q", errBadRequest, lonS)
	}
	return lat, lon, nil
}
