// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"counties/internal/api"
	"counties/internal/country"
	"counties/internal/favourites"
	"counties/internal/geoip"
	"counties/internal/history"
	"counties/internal/layout"
	"counties/internal/logger"
	"counties/internal/middleware"
	"counties/internal/migrate"
	"counties/internal/revgeo"
	"counties/internal/shortcuts"
	"counties/internal/spotlight"
	"counties/internal/store"
	"counties/internal/utils"
	"counties/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)
	apiBase := utils.EnvString("API_BASE", "/api")
	dataDir := utils.EnvString("DATA_DIR", "data")
	l.Debug("config_api_base", "base", apiBase, "data_dir", dataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uk := country.UnitedKingdom()
	if p := utils.EnvString("COUNTRY_JSON", ""); p != "" {
		c, err := country.Load(p)
		if err != nil {
			l.Error("country_load_error", "path", p, "err", err)
			os.Exit(1)
		}
		uk = c
	}
	l.Info("country_ready", "name", uk.Name, "regions", len(uk.Regions), "counties", len(uk.AllCounties()))

	// 最近浏览：默认 JSON 文件，HISTORY_BACKEND=bolt 时使用 bbolt 数据文件
	var histStore history.Store
	switch utils.EnvString("HISTORY_BACKEND", "file") {
	case "bolt":
		p := utils.EnvString("HISTORY_PATH", filepath.Join(dataDir, "history", "history.bolt"))
		bs, err := history.OpenBoltStore(p)
		if err != nil {
			l.Error("history_open_error", "path", p, "err", err)
			os.Exit(1)
		}
		defer bs.Close()
		histStore = bs
		l.Debug("config_history", "backend", "bolt", "path", p)
	default:
		p := utils.EnvString("HISTORY_PATH", filepath.Join(dataDir, "history", "CountyHistory.json"))
		histStore = history.NewFileStore(p)
		l.Debug("config_history", "backend", "file", "path", p)
	}
	hist := history.New(uk, histStore)

	// 收藏：Redis 可用时作为云端存储，否则回退到进程内存储（不跨实例）
	rc := utils.OpenRedisFromEnv()
	var kv favourites.KeyValueStore
	if rc != nil {
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = rc.Close()
			rc = nil
		} else {
			l.Info("redis_ping_ok")
			kv = favourites.NewRedisStore(rc, utils.EnvString("FAVOURITES_KEY_PREFIX", favourites.DefaultPrefix))
		}
	}
	if kv == nil {
		l.Info("favourites_memory_store")
		kv = favourites.NewMemoryStore()
	}
	fav := favourites.New(uk, kv)
	if err := fav.Watch(ctx); err != nil {
		l.Error("favourites_watch_error", "err", err)
	}
	fav.OnChange(func(ch favourites.Change) {
		l.Debug("favourites_changed", "count", len(ch.Counties), "external", ch.External)
	})
	_ = fav.Synchronise(ctx)
	fav.SyncEvery(ctx, utils.EnvSeconds("FAVOURITES_SYNC_INTERVAL_S", 5*time.Minute))

	idx, closeIndex, err := openIndex(ctx)
	if err != nil {
		l.Error("search_backend_error", "err", err)
		os.Exit(1)
	}
	defer closeIndex()
	flagsDir := utils.EnvString("FLAGS_DIR", filepath.Join(dataDir, "flags"))
	indexer := spotlight.NewIndexer(idx, flagsDir)
	indexer.IndexRegions(uk.Regions)

	pub := shortcuts.NewPublisher(hist)
	defer pub.Close()

	svc := api.Services{
		Country:        uk,
		History:        hist,
		Favourites:     fav,
		Index:          idx,
		Shortcuts:      pub,
		Nearby:         revgeo.NewLocator(revgeo.CountyPlaces(uk), revgeo.OptionsFromEnv()),
		Redis:          rc,
		NearbyCacheTTL: utils.EnvSeconds("NEARBY_CACHE_TTL_S", time.Hour),
		MaxSessions:    utils.EnvInt("SEARCH_MAX_SESSIONS", 1024),
	}
	if p := utils.EnvString("GEOIP_PATH", ""); p != "" {
		if r, err := geoip.Open(p); err == nil {
			svc.GeoIP = r
			defer r.Close()
		} else {
			l.Error("geoip_open_error", "path", p, "err", err)
		}
	} else {
		l.Info("geoip_disabled")
	}
	if d, err := layout.Preset(utils.EnvString("DISPLAY_PLATFORM", "phone")); err == nil {
		svc.Display = d
	} else {
		l.Warn("config_display_platform", "err", err)
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(svc)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	// 重建搜索索引：数据集或旗帜图片更新后由运维触发
	mux.HandleFunc("POST "+apiBase+"/reindex", func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if t == "" || t != os.Getenv("ADMIN_TOKEN") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := indexer.IndexRegionsSync(r.Context(), uk.Regions); err != nil {
			l.Error("search_reindex_error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		l.Info("search_reindexed")
		w.WriteHeader(http.StatusNoContent)
	})

	addr := utils.EnvString("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
		l.Info("server_shutdown")
	}()

	if utils.EnvBool("TLS_ENABLE", true) {
		certPath := utils.EnvString("TLS_CERT_PATH", filepath.Join(dataDir, "certs", "server.crt"))
		keyPath := utils.EnvString("TLS_KEY_PATH", filepath.Join(dataDir, "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "counties.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		// 可选：启动HTTP重定向到HTTPS（不改变HTTPS运行端口）
		if utils.EnvBool("TLS_REDIRECT_ENABLE", false) {
			go redirectToHTTPS(l, utils.EnvString("TLS_REDIRECT_ADDR", ":80"), addr)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		serveDone(l, s.ListenAndServeTLS(certPath, keyPath))
		return
	}
	l.Info("listening", "addr", addr)
	serveDone(l, s.ListenAndServe())
}

// openIndex：SEARCH_BACKEND=postgres 时使用 Postgres 索引（启动时确保表结构），否则使用进程内索引
func openIndex(ctx context.Context) (spotlight.Index, func(), error) {
	l := logger.L()
	switch strings.ToLower(utils.EnvString("SEARCH_BACKEND", "memory")) {
	case "memory":
		l.Info("search_backend", "kind", "memory")
		return spotlight.NewMemoryIndex(), func() {}, nil
	case "postgres":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		st := store.AttachDB(db)
		l.Info("search_backend", "kind", "postgres")
		return st, func() { _ = st.Close() }, nil
	}
	return nil, nil, errors.New("SEARCH_BACKEND must be memory or postgres")
}

func redirectToHTTPS(l *slog.Logger, redirAddr, httpsAddr string) {
	httpsPort := strings.TrimPrefix(httpsAddr, ":")
	redir := http.NewServeMux()
	redir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if i := strings.LastIndex(host, ":"); i != -1 {
			host = host[:i]
		}
		if httpsPort != "" && httpsPort != "443" {
			host += ":" + httpsPort
		}
		target := "https://" + host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		l.Debug("http_redirect", "from", r.Host, "to", target)
	})
	l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+httpsAddr)
	_ = http.ListenAndServe(redirAddr, redir)
}

func serveDone(l *slog.Logger, err error) {
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		os.Exit(1)
	}
}
