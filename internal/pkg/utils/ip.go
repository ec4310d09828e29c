package utils

import (
	"net"
	"strings"
)

// 私有/保留网段，这些地址不允许作为扫描目标
// 只挡私有段和真正不可达的保留段，文档示例段(192.0.2.0/24等)是合法目标
var reservedV4Blocks = mustParseCIDRs([]string{
	"0.0.0.0/8",      // "this" network
	"10.0.0.0/8",     // RFC1918
	"127.0.0.0/8",    // loopback
	"169.254.0.0/16", // link-local
	"172.16.0.0/12",  // RFC1918
	"192.168.0.0/16", // RFC1918
	"240.0.0.0/4",    // reserved
})

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

// NormalizeIP 标准化IP地址：
// - 去掉两端空白
// - 若是 IPv4-mapped IPv6 (::ffff:192.0.2.1)，转成纯 IPv4
func NormalizeIP(input string) string {
	ip := strings.TrimSpace(input)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	return parsed.String()
}

// IsPublicIPv4 判断是否为可路由的公网IPv4地址
// 私有段/保留段/回环/组播等均返回 false，IPv6 一律返回 false
func IsPublicIPv4(input string) bool {
	parsed := net.ParseIP(strings.TrimSpace(input))
	if parsed == nil {
		return false
	}
	v4 := parsed.To4()
	if v4 == nil {
		return false
	}
	for _, block := range reservedV4Blocks {
		if block.Contains(v4) {
			return false
		}
	}
	// 广播地址
	if v4.Equal(net.IPv4bcast) {
		return false
	}
	return true
}
