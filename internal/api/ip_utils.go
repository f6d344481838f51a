package api

import (
	"net/http"
	"strings"
)

// 文档注释：获取待定位的 IP
// 背景：多层代理环境下，优先显式参数，其次常见反向代理头，最后回退远端地址；未给 ip 参数时按访问者定位。
// 约束：当头部存在伪造风险时需结合可信代理白名单处理。
func getClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return x
		}
	}
	if x := h.Get("forwarded"); x != "" {
		i := strings.Index(strings.ToLower(x), "for=")
		if i >= 0 {
			y := x[i+4:]
			y = strings.Trim(y, "\" ")
			if p := strings.IndexByte(y, ';'); p >= 0 {
				y = y[:p]
			}
			if p := strings.IndexByte(y, ','); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\" ")
		}
	}
	host := r.RemoteAddr
	if host != "" {
		if i := strings.LastIndex(host, ":"); i > 0 {
			return strings.Trim(host[:i], "[]")
		}
		return host
	}
	return ""
}

// splitNames：逗号分隔的名称列表，去空白并丢弃空项
func splitNames(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
