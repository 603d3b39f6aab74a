package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"dotglobe/internal/config"
)

// 文档注释：来源 IP 白名单（单 IP / CIDR）
// 背景：/metrics 等运维接口只对内网与指定调试 IP 开放；其他请求统一返回 403。
// 约束：支持 IPv4/IPv6 CIDR；来源 IP 以 RemoteAddr 为准，配置 RealIPHeader 时取该头首个有效 IP。
type Allowlist struct {
	l            *slog.Logger
	allowIPs     map[string]struct{}
	allowCIDRs   []*net.IPNet
	realIPHeader string
	mu           sync.RWMutex
}

// NewAllowlist 由配置构建；无效条目记录 warn 后跳过
func NewAllowlist(l *slog.Logger, mc config.MetricsConfig) *Allowlist {
	a := &Allowlist{l: l, allowIPs: map[string]struct{}{}, realIPHeader: strings.TrimSpace(mc.RealIPHeader)}
	for _, c := range mc.AllowCIDRs {
		if ip := net.ParseIP(c); ip != nil {
			a.allowIPs[ip.String()] = struct{}{}
			continue
		}
		if _, n, err := net.ParseCIDR(c); err == nil {
			a.allowCIDRs = append(a.allowCIDRs, n)
		} else {
			l.Warn("allowlist_bad_entry", "entry", c)
		}
	}
	if mc.AllowLocal {
		a.allowIPs["127.0.0.1"] = struct{}{}
		a.allowIPs["::1"] = struct{}{}
	}
	return a
}

// Empty 未配置任何条目
func (a *Allowlist) Empty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.allowIPs) == 0 && len(a.allowCIDRs) == 0
}

// Add 追加网段（运行期更新）
func (a *Allowlist) Add(cidrs ...*net.IPNet) {
	a.mu.Lock()
	a.allowCIDRs = mergeCIDRs(a.allowCIDRs, cidrs)
	a.mu.Unlock()
}

// Wrap 白名单为空时直接放行
func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	if a.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.extractIP(r)
		if ip == nil {
			a.l.Debug("allowlist_block", "reason", "no_ip")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if a.allowed(ip) {
			next.ServeHTTP(w, r)
			return
		}
		a.l.Debug("allowlist_block", "ip", ip.String(), "path", r.URL.Path)
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}

func (a *Allowlist) allowed(ip net.IP) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.allowIPs[ip.String()]; ok {
		return true
	}
	for _, n := range a.allowCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP：优先指定头的首个有效 IP，否则 RemoteAddr
func (a *Allowlist) extractIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			first := strings.TrimSpace(strings.Split(raw, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

// mergeCIDRs：合并并去重
func mergeCIDRs(old, add []*net.IPNet) []*net.IPNet {
	seen := make(map[string]bool, len(old)+len(add))
	out := make([]*net.IPNet, 0, len(old)+len(add))
	for _, n := range append(append([]*net.IPNet(nil), old...), add...) {
		if n == nil || seen[n.String()] {
			continue
		}
		seen[n.String()] = true
		out = append(out, n)
	}
	return out
}
