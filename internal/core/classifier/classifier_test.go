package classifier

import "testing"

// 测试风险等级判定的全覆盖性
func TestSeverityOf(t *testing.T) {
	tests := []struct {
		name string
		port int
		want string
	}{
		{"Telnet高危", 23, SeverityHigh},
		{"SMB高危", 445, SeverityHigh},
		{"Redis高危", 6379, SeverityHigh},
		{"SSH中危", 22, SeverityMedium},
		{"MySQL中危", 3306, SeverityMedium},
		{"HTTP低危", 80, SeverityLow},
		{"HTTPS低危", 443, SeverityLow},
		{"未知端口归INFO", 12345, SeverityInfo},
		{"零端口归INFO", 0, SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeverityOf(tt.port); got != tt.want {
				t.Errorf("SeverityOf(%d) = %s, want %s", tt.port, got, tt.want)
			}
		})
	}
}

// 等级表与目录表分区校验：同一端口不能同时出现在两档里
func TestSeverityPartition(t *testing.T) {
	for p := range highRiskPorts {
		if _, ok := mediumRiskPorts[p]; ok {
			t.Errorf("端口 %d 同时出现在高危和中危表", p)
		}
		if _, ok := lowRiskPorts[p]; ok {
			t.Errorf("端口 %d 同时出现在高危和低危表", p)
		}
	}
	for p := range mediumRiskPorts {
		if _, ok := lowRiskPorts[p]; ok {
			t.Errorf("端口 %d 同时出现在中危和低危表", p)
		}
	}
}

func TestClassifyPort(t *testing.T) {
	f := ClassifyPort(22)
	if f.Service != "SSH" {
		t.Errorf("Service = %s, want SSH", f.Service)
	}
	if f.Severity != SeverityMedium {
		t.Errorf("Severity = %s, want MEDIUM", f.Severity)
	}
	if f.Risk == "" {
		t.Error("22端口应有风险描述")
	}
	if f.Recommendation == "" {
		t.Error("22端口应有加固建议")
	}

	// 未收录端口走兜底
	unknown := ClassifyPort(54321)
	if unknown.Service != UnknownService {
		t.Errorf("未知端口 Service = %s, want %s", unknown.Service, UnknownService)
	}
	if unknown.Recommendation != DefaultRecommendation {
		t.Errorf("未知端口应给通用建议, got %s", unknown.Recommendation)
	}
}

func TestReportFor(t *testing.T) {
	findings := ReportFor([]int{80, 22})
	if len(findings) != 2 {
		t.Fatalf("期望2条结论, got %d", len(findings))
	}
	// 按端口号升序
	if findings[0].Port != 22 || findings[1].Port != 80 {
		t.Errorf("结论应按端口升序: got %d, %d", findings[0].Port, findings[1].Port)
	}
	if findings[0].Severity != SeverityMedium {
		t.Errorf("22端口 Severity = %s, want MEDIUM", findings[0].Severity)
	}
	if findings[1].Severity != SeverityLow {
		t.Errorf("80端口 Severity = %s, want LOW", findings[1].Severity)
	}

	// 空输入返回空报告
	if got := ReportFor(nil); len(got) != 0 {
		t.Errorf("空端口列表应返回空报告, got %d 条", len(got))
	}
}

func TestIsVulnerable(t *testing.T) {
	tests := []struct {
		port int
		want bool
	}{
		{23, true},   // 风险表收录
		{22, true},   // 风险表收录
		{110, false}, // 中危但风险表未收录(POP3)
		{161, false}, // 中危但风险表未收录(SNMP)
		{993, false}, // 中危但风险表未收录(IMAPS)
		{80, false},  // 低危，未收录
		{443, false},
		{9999, false},
	}
	for _, tt := range tests {
		if got := IsVulnerable(tt.port); got != tt.want {
			t.Errorf("IsVulnerable(%d) = %v, want %v", tt.port, got, tt.want)
		}
	}
}

// 风险清单的成员资格和取值都以风险描述表为准
func TestRiskOf(t *testing.T) {
	risk, ok := RiskOf(22)
	if !ok || risk != PortRisks[22] {
		t.Errorf("RiskOf(22) = (%q, %v), want 风险表原文", risk, ok)
	}
	if _, ok := RiskOf(110); ok {
		t.Error("110 不在风险描述表中，RiskOf 应返回 false")
	}
	// 进入风险清单的端口必须都有风险描述
	for port := range PortRisks {
		if !IsVulnerable(port) {
			t.Errorf("端口 %d 有风险描述却不在风险清单", port)
		}
	}
}
