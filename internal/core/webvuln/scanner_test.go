package webvuln

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// 回显服务器会把参数原样写回响应，应命中一条反射型 XSS
func TestScanTargetXSSReflection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只回显查询参数，其他路径一律 404
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		for _, values := range r.URL.Query() {
			for _, v := range values {
				fmt.Fprint(w, v)
			}
		}
	}))
	defer srv.Close()

	s := NewScanner()
	findings := s.ScanTarget(context.Background(), srv.URL)

	var xss []Finding
	for _, f := range findings {
		if f.TestName == "Cross-Site Scripting (XSS)" {
			xss = append(xss, f)
		}
	}
	if len(xss) != 1 {
		t.Fatalf("应命中恰好1条XSS结论, got %d (全部: %+v)", len(xss), findings)
	}
	f := xss[0]
	if f.Severity != "medium" {
		t.Errorf("XSS 应为中危, got %s", f.Severity)
	}
	// 首个参数×首个载荷即命中
	if f.Details["parameter"] != "q" {
		t.Errorf("应命中首个参数 q, got %v", f.Details["parameter"])
	}
	if f.Details["payload"] != `<script>alert("XSS")</script>` {
		t.Errorf("应命中首个载荷, got %v", f.Details["payload"])
	}
	if f.Details["reflected"] != true {
		t.Error("结论应标记 reflected")
	}
}

// 数据库报错页应命中 SQL 注入结论，且与 XSS 互不干扰
func TestScanTargetSQLInjection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "You have an error in your SQL syntax near ''1'='1'")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewScanner()
	findings := s.ScanTarget(context.Background(), srv.URL)

	var sqli []Finding
	for _, f := range findings {
		if f.TestName == "SQL Injection" {
			sqli = append(sqli, f)
		}
	}
	if len(sqli) != 1 {
		t.Fatalf("应命中恰好1条SQL注入结论, got %d", len(sqli))
	}
	f := sqli[0]
	if f.Severity != "critical" {
		t.Errorf("SQL注入应为严重, got %s", f.Severity)
	}
	if f.Details["error_pattern"] != "SQL syntax" {
		t.Errorf("应记录命中的报错特征, got %v", f.Details["error_pattern"])
	}
	if f.Details["parameter"] != "id" {
		t.Errorf("应命中 id 参数, got %v", f.Details["parameter"])
	}
}

// 信息泄露按路径分档，每条路径独立产出结论
func TestScanTargetInfoDisclosureSeverity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprint(w, "User-agent: *\nDisallow: /admin")
		case "/.git/config":
			fmt.Fprint(w, "[core]\n\trepositoryformatversion = 0")
		case "/phpinfo.php":
			fmt.Fprint(w, "<h1>PHP Version 7.4.3</h1>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewScanner()
	findings := s.ScanTarget(context.Background(), srv.URL)

	got := make(map[string]string) // file -> severity
	for _, f := range findings {
		if f.TestName == "Information Disclosure" {
			got[f.Details["file"].(string)] = f.Severity
		}
	}

	want := map[string]string{
		"/robots.txt":  "info",
		"/.git/config": "high",
		"/phpinfo.php": "medium",
	}
	if len(got) != len(want) {
		t.Fatalf("应产出%d条信息泄露结论, got %d: %v", len(want), len(got), got)
	}
	for file, sev := range want {
		if got[file] != sev {
			t.Errorf("%s 应为 %s 级, got %s", file, sev, got[file])
		}
	}
}

// 全 404 的站点不应产出任何结论
func TestScanTargetCleanSite(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewScanner()
	if findings := s.ScanTarget(context.Background(), srv.URL); len(findings) != 0 {
		t.Errorf("干净站点不应有结论: %+v", findings)
	}
}

// 站点不可达时静默返回空，不报错
func TestScanTargetUnreachable(t *testing.T) {
	s := NewScanner()
	// 端口1几乎不会有监听，连接立即被拒绝
	if findings := s.ScanTarget(context.Background(), "http://127.0.0.1:1"); len(findings) != 0 {
		t.Errorf("不可达站点不应有结论: %+v", findings)
	}
}
