package api

import (
	"net/http"
	"strings"
)

// 文档注释：获取查询目标 IP（/visitor 接口）
// 背景：允许用 ?ip= 显式指定目标以便调试朝向；未指定时回退到访问者 IP。
func getClientIP(r *http.Request) string {
	if q := r.URL.Query().Get("ip"); q != "" {
		return q
	}
	return getVisitorIP(r)
}

// 文档注释：获取访问者 IP（用于访客去重与定位）
// 背景：多层代理环境下，优先常见反向代理头，最后回退远端地址。
// 约束：头部可被伪造；部署于未经信任的代理链路需配合网关过滤。
func getVisitorIP(r *http.Request) string {
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		return strings.TrimSpace(strings.Split(x, ",")[0])
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip", "x-edge-client-ip", "x-edgeone-ip"} {
		if x := h.Get(k); x != "" {
			return x
		}
	}
	if x := h.Get("forwarded"); x != "" {
		i := strings.Index(strings.ToLower(x), "for=")
		if i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			y = strings.Trim(y, "\" ")
			// 约束：IPv6 形如 "[2001:db8::1]:4711"，去掉方括号与端口
			if strings.HasPrefix(y, "[") {
				if p := strings.IndexByte(y, ']'); p > 0 {
					y = y[1:p]
				}
			}
			return y
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
