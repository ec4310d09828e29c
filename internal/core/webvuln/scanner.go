// Web 漏洞扫描器：对开放的 Web 端口依次执行五类无害化探测
// 目录穿越 -> XSS -> SQL注入 -> 文件包含 -> 信息泄露
// 网络错误一律静默跳过，只有确认的响应特征才产出结论
// @author: sun977
package webvuln

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultDetectTimeout = 3 * time.Second
	DefaultHTTPTimeout   = 10 * time.Second

	// 读响应体的上限，防止被超大响应拖垮
	maxBodySize = 1 << 20
)

// Finding 单项探测结论
type Finding struct {
	TestName string
	Severity string
	Details  map[string]interface{}
}

// Scanner Web 漏洞扫描器
type Scanner struct {
	client        *http.Client
	dialer        *net.Dialer
	detectTimeout time.Duration
}

// ScannerOption 扫描器配置项
type ScannerOption func(*Scanner)

func WithHTTPTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) { s.client.Timeout = d }
}

func WithDetectTimeout(d time.Duration) ScannerOption {
	return func(s *Scanner) { s.detectTimeout = d }
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // 忽略证书错误
				// 探测请求都是一次性的，不需要长连接
				DisableKeepAlives: true,
			},
			Timeout: DefaultHTTPTimeout,
		},
		dialer:        &net.Dialer{},
		detectTimeout: DefaultDetectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan 对目标IP的全部 Web 端口执行探测
func (s *Scanner) Scan(ctx context.Context, ip string) []Finding {
	var findings []Finding
	for _, port := range webPorts {
		if !s.isPortOpen(ctx, ip, port) {
			continue
		}
		scheme := "http"
		if _, ok := httpsPorts[port]; ok {
			scheme = "https"
		}
		baseURL := fmt.Sprintf("%s://%s:%d", scheme, ip, port)
		findings = append(findings, s.ScanTarget(ctx, baseURL)...)
	}
	return findings
}

// ScanTarget 对单个 Web 站点执行全部五类探测
func (s *Scanner) ScanTarget(ctx context.Context, baseURL string) []Finding {
	var findings []Finding

	if f := s.testDirectoryTraversal(ctx, baseURL); f != nil {
		findings = append(findings, *f)
	}
	if f := s.testXSS(ctx, baseURL); f != nil {
		findings = append(findings, *f)
	}
	if f := s.testSQLInjection(ctx, baseURL); f != nil {
		findings = append(findings, *f)
	}
	if f := s.testFileInclusion(ctx, baseURL); f != nil {
		findings = append(findings, *f)
	}
	findings = append(findings, s.testInfoDisclosure(ctx, baseURL)...)

	return findings
}

func (s *Scanner) isPortOpen(ctx context.Context, ip string, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, s.detectTimeout)
	defer cancel()

	conn, err := s.dialer.DialContext(dialCtx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// fetch 发起 GET 请求并读响应体
// 任何网络层错误都返回 nil，探测语义里网络不通不构成结论
func (s *Scanner) fetch(ctx context.Context, rawURL string) (int, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, ""
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, ""
	}
	return resp.StatusCode, string(body)
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

// testDirectoryTraversal 目录穿越探测，命中任一载荷即停
func (s *Scanner) testDirectoryTraversal(ctx context.Context, baseURL string) *Finding {
	for _, payload := range traversalPayloads {
		target := baseURL + "/" + payload
		status, body := s.fetch(ctx, target)
		if !successful(status) {
			continue
		}
		for _, sig := range traversalSignatures {
			if strings.Contains(body, sig) {
				return &Finding{
					TestName: "Directory Traversal",
					Severity: "high",
					Details: map[string]interface{}{
						"url":           target,
						"payload":       payload,
						"response_size": len(body),
						"evidence":      truncate(body, 500),
					},
				}
			}
		}
	}
	return nil
}

// testXSS 反射型 XSS 探测，参数×载荷全组合，命中即停
func (s *Scanner) testXSS(ctx context.Context, baseURL string) *Finding {
	for _, param := range xssParams {
		for _, payload := range xssPayloads {
			target := baseURL + "?" + param + "=" + url.QueryEscape(payload)
			status, body := s.fetch(ctx, target)
			// 载荷原样出现在响应里即为反射
			if successful(status) && strings.Contains(body, payload) {
				return &Finding{
					TestName: "Cross-Site Scripting (XSS)",
					Severity: "medium",
					Details: map[string]interface{}{
						"url":       target,
						"parameter": param,
						"payload":   payload,
						"reflected": true,
					},
				}
			}
		}
	}
	return nil
}

// testSQLInjection 报错型 SQL 注入探测，命中任一数据库报错特征即停
func (s *Scanner) testSQLInjection(ctx context.Context, baseURL string) *Finding {
	for _, param := range sqliParams {
		for _, payload := range sqliPayloads {
			target := baseURL + "?" + param + "=" + url.QueryEscape(payload)
			_, body := s.fetch(ctx, target)
			// 报错特征不要求 2xx，数据库报错往往伴随 500
			lower := strings.ToLower(body)
			for _, pattern := range sqliErrorPatterns {
				if strings.Contains(lower, strings.ToLower(pattern)) {
					return &Finding{
						TestName: "SQL Injection",
						Severity: "critical",
						Details: map[string]interface{}{
							"url":           target,
							"parameter":     param,
							"payload":       payload,
							"error_pattern": pattern,
							"evidence":      truncate(body, 1000),
						},
					}
				}
			}
		}
	}
	return nil
}

// testFileInclusion 本地文件包含探测，命中任一载荷即停
func (s *Scanner) testFileInclusion(ctx context.Context, baseURL string) *Finding {
	for _, payload := range lfiPayloads {
		target := baseURL + "/?" + payload
		status, body := s.fetch(ctx, target)
		if !successful(status) {
			continue
		}
		for _, sig := range lfiSignatures {
			if strings.Contains(body, sig) {
				return &Finding{
					TestName: "Local File Inclusion",
					Severity: "high",
					Details: map[string]interface{}{
						"url":      target,
						"payload":  payload,
						"evidence": truncate(body, 500),
					},
				}
			}
		}
	}
	return nil
}

// testInfoDisclosure 敏感文件探测，每条路径独立产出结论
// 严重等级按路径性质分档: .git/备份 高危, phpinfo 中危, 其余仅提示
func (s *Scanner) testInfoDisclosure(ctx context.Context, baseURL string) []Finding {
	var findings []Finding
	for _, path := range infoDisclosurePaths {
		target := baseURL + path
		status, body := s.fetch(ctx, target)
		if !successful(status) {
			continue
		}

		severity := "info"
		if strings.Contains(path, "phpinfo") && strings.Contains(body, "PHP Version") {
			severity = "medium"
		} else if strings.Contains(path, ".git") || strings.Contains(path, "backup") {
			severity = "high"
		}

		findings = append(findings, Finding{
			TestName: "Information Disclosure",
			Severity: severity,
			Details: map[string]interface{}{
				"url":             target,
				"file":            path,
				"response_size":   len(body),
				"content_preview": truncate(body, 200),
			},
		})
	}
	return findings
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
