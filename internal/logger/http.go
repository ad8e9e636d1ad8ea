// 包 logger：HTTP 访问日志中间件
package logger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// recorder：记录已写出的状态码与字节数
type recorder struct {
	http.ResponseWriter
	status int
	n      int64
}

func (rw *recorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.n += int64(n)
	return n, err
}

// Unwrap：供 http.ResponseController 访问底层连接
func (rw *recorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// accessLevel：5xx 记为 Warn，其余为 Debug；抓取 /metrics 的请求降为不输出
func accessLevel(path string, status int) (slog.Level, bool) {
	if strings.HasSuffix(path, "/metrics") && status < 500 {
		return 0, false
	}
	if status >= 500 {
		return slog.LevelWarn, true
	}
	return slog.LevelDebug, true
}

// 文档注释：访问日志中间件
// 约束：不读取请求体；X-Session-ID 存在时一并记录，便于串联同一客户端的搜索请求。
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &recorder{ResponseWriter: w}
			begin := time.Now()
			next.ServeHTTP(rw, r)
			if rw.status == 0 {
				rw.status = http.StatusOK
			}
			lvl, ok := accessLevel(r.URL.Path, rw.status)
			if !ok {
				return
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Int64("bytes", rw.n),
				slog.Int64("duration_ms", time.Since(begin).Milliseconds()),
				slog.String("ip", r.RemoteAddr),
			}
			if sid := r.Header.Get("X-Session-ID"); sid != "" {
				attrs = append(attrs, slog.String("session", sid))
			}
			l.LogAttrs(r.Context(), lvl, "http_access", attrs...)
		})
	}
}
