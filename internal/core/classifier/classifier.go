// 端口风险分类器
// 纯静态表查询，不发包不联网，任何输入都有确定输出
// @author: sun977
package classifier

import "sort"

// 风险等级
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
	SeverityInfo   = "INFO"
)

// UnknownService 目录表未收录端口的服务名
const UnknownService = "Unknown"

// Finding 单端口的分类结论
type Finding struct {
	Port           int    `json:"port"`
	Service        string `json:"service"`
	Severity       string `json:"severity"`
	Risk           string `json:"risk"`
	Recommendation string `json:"recommendation"`
}

// SeverityOf 返回端口的风险等级
// 全函数：任何端口号都有结论，未知端口归 INFO
func SeverityOf(port int) string {
	if _, ok := highRiskPorts[port]; ok {
		return SeverityHigh
	}
	if _, ok := mediumRiskPorts[port]; ok {
		return SeverityMedium
	}
	if _, ok := lowRiskPorts[port]; ok {
		return SeverityLow
	}
	return SeverityInfo
}

// ServiceOf 返回端口的服务名，未收录返回 Unknown
func ServiceOf(port int) string {
	if svc, ok := PortServices[port]; ok {
		return svc
	}
	return UnknownService
}

// RiskOf 返回端口的风险描述，未收录时 ok 为 false
func RiskOf(port int) (string, bool) {
	risk, ok := PortRisks[port]
	return risk, ok
}

// IsVulnerable 端口是否进入风险清单
// 以风险描述表收录为准，等级划分只决定报告里的严重程度
func IsVulnerable(port int) bool {
	_, ok := PortRisks[port]
	return ok
}

// ClassifyPort 给出单端口完整结论
func ClassifyPort(port int) Finding {
	risk := PortRisks[port]
	rec, ok := PortRecommendations[port]
	if !ok {
		rec = DefaultRecommendation
	}
	return Finding{
		Port:           port,
		Service:        ServiceOf(port),
		Severity:       SeverityOf(port),
		Risk:           risk,
		Recommendation: rec,
	}
}

// ReportFor 对一组开放端口生成分类报告，按端口号升序
func ReportFor(ports []int) []Finding {
	sorted := make([]int, len(ports))
	copy(sorted, ports)
	sort.Ints(sorted)

	findings := make([]Finding, 0, len(sorted))
	for _, p := range sorted {
		findings = append(findings, ClassifyPort(p))
	}
	return findings
}
