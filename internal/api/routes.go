// 包 api：集中注册 HTTP API 路由，主入口只负责挂载到 API_BASE 前缀
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"counties/internal/country"
	"counties/internal/favourites"
	"counties/internal/geoip"
	"counties/internal/handoff"
	"counties/internal/history"
	"counties/internal/layout"
	"counties/internal/logger"
	"counties/internal/metrics"
	"counties/internal/revgeo"
	"counties/internal/shortcuts"
	"counties/internal/spotlight"

	"github.com/redis/go-redis/v9"
)

// Services：路由依赖的服务集合
// 约束：Country 与 History 必填；Favourites 为空时使用进程内存储；GeoIP 与 Redis 可为空，
// 为空时 /nearby 只接受坐标，附近查询只走进程内缓存
type Services struct {
	Country    *country.Country
	History    *history.Tracker
	Favourites *favourites.Controller
	Index      spotlight.Index
	Handoff    *handoff.Router
	Shortcuts  *shortcuts.Publisher
	Performer  *shortcuts.Performer
	Nearby     *revgeo.Locator
	GeoIP      geoip.Locator
	Redis      *redis.Client
	// NearbyCacheTTL：Redis 附近结果缓存时长，0 取 1 小时
	NearbyCacheTTL time.Duration
	// Display：/layout 未指定平台时使用的显示环境
	Display layout.DisplayMetrics
	// MaxSessions：保留的搜索会话上限，0 取 1024
	MaxSessions int
}

type server struct {
	Services
	sessions *sessions
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(svc Services) *http.ServeMux {
	if svc.Favourites == nil {
		svc.Favourites = favourites.New(svc.Country, favourites.NewMemoryStore())
	}
	if svc.Index == nil {
		svc.Index = spotlight.NewMemoryIndex()
	}
	if svc.Handoff == nil {
		svc.Handoff = handoff.NewRouter(svc.Country)
	}
	if svc.Performer == nil {
		svc.Performer = shortcuts.NewPerformer(svc.Country)
	}
	if svc.Shortcuts == nil && svc.History != nil {
		svc.Shortcuts = shortcuts.NewPublisher(svc.History)
	}
	if svc.NearbyCacheTTL <= 0 {
		svc.NearbyCacheTTL = time.Hour
	}
	if svc.Display.Scale == 0 {
		svc.Display = layout.Phone
	}
	s := &server{Services: svc}
	s.sessions = newSessions(svc.MaxSessions, func() *spotlight.Controller {
		return spotlight.NewController(svc.Country, svc.Index, svc.Favourites)
	})

	mux := http.NewServeMux()
	handle := func(pattern, route string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(route, fn))
	}
	handle("GET /country", "country", s.getCountry)
	handle("GET /counties", "counties", s.listCounties)
	handle("GET /counties/{id}", "county", s.getCounty)
	handle("GET /counties/{id}/activity", "county_activity", s.getCountyActivity)
	handle("POST /counties/{id}/view", "county_view", s.viewCounty)
	handle("GET /history", "history", s.getHistory)
	handle("GET /favourites", "favourites", s.listFavourites)
	handle("GET /favourites/regions", "favourites_regions", s.favouriteRegions)
	handle("PUT /favourites/{id}", "favourites_add", s.addFavourite)
	handle("DELETE /favourites/{id}", "favourites_remove", s.removeFavourite)
	handle("POST /favourites/sync", "favourites_sync", s.syncFavourites)
	handle("GET /search", "search", s.search)
	handle("POST /activities/resolve", "activities_resolve", s.resolveActivity)
	handle("GET /shortcuts", "shortcuts", s.listShortcuts)
	handle("POST /shortcuts/perform", "shortcuts_perform", s.performShortcut)
	handle("GET /nearby", "nearby", s.nearby)
	handle("GET /layout", "layout", s.layoutPlan)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// instrument：按路由记录请求数与耗时
func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Debug("http_write_error", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// errStatus：领域错误到状态码的映射，未知错误按 500 处理
func errStatus(err error) int {
	switch {
	case errors.Is(err, country.ErrCountyNotFound),
		errors.Is(err, handoff.ErrUnknownCounty),
		errors.Is(err, shortcuts.ErrUnknownCounty),
		errors.Is(err, errNoNearbyCounty):
		return http.StatusNotFound
	case errors.Is(err, handoff.ErrUnhandledActivity),
		errors.Is(err, handoff.ErrMissingSearchText),
		errors.Is(err, shortcuts.ErrUnknownShortcut),
		errors.Is(err, spotlight.ErrBadQuery),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, spotlight.ErrSuperseded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

// decodeBody：请求体限制 64KB，未知字段视为错误
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
