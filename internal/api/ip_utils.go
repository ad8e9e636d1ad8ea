package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取客户端 IP（用于 /nearby 的 IP 定位）
// 背景：多层代理环境下，优先显式参数，其次常见反向代理头，最后回退远端地址。
// 约束：代理头可被伪造，只用于近似定位，不用于鉴权或限流。
func getClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := strings.TrimSpace(h.Get(k)); x != "" {
			return x
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if y, ok := forwardedFor(x); ok {
			return y
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// forwardedFor：取 RFC 7239 Forwarded 头第一个 for= 值，去掉引号、方括号与端口
func forwardedFor(v string) (string, bool) {
	i := strings.Index(strings.ToLower(v), "for=")
	if i < 0 {
		return "", false
	}
	y := v[i+4:]
	if p := strings.IndexAny(y, ";,"); p >= 0 {
		y = y[:p]
	}
	y = strings.Trim(y, "\" ")
	if strings.HasPrefix(y, "[") {
		if p := strings.IndexByte(y, ']'); p > 0 {
			return y[1:p], true
		}
	}
	if host, _, err := net.SplitHostPort(y); err == nil {
		return host, true
	}
	return y, y != ""
}
