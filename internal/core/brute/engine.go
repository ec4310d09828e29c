// 弱口令爆破引擎
// 先做服务识别(TCP Connect)，再按协议分发给 Cracker 逐个试凭据
// @author: sun977
package brute

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"neoprobe/internal/pkg/logger"
)

// servicePorts 服务识别目录：端口 -> 服务名
var servicePorts = map[int]string{
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	135:  "rpc",
	139:  "netbios",
	143:  "imap",
	443:  "https",
	445:  "smb",
	993:  "imaps",
	995:  "pop3s",
	1433: "mssql",
	3306: "mysql",
	3389: "rdp",
	5432: "postgresql",
	5900: "vnc",
}

// crackableServices 需要凭据爆破的服务
// 识别到这些服务但没有对应 Cracker 时属于能力缺失，会话应判失败
var crackableServices = map[string]struct{}{
	"ssh":        {},
	"ftp":        {},
	"telnet":     {},
	"mysql":      {},
	"postgresql": {},
}

// detectOnlyFindings 只做检测不做爆破的服务及其固定结论
var detectOnlyFindings = map[string]Finding{
	"rdp": {
		TestName: "RDP Service Detected",
		Severity: "medium",
		Details: map[string]interface{}{
			"service":        "RDP",
			"recommendation": "Implement strong passwords and account lockout policies",
			"risk":           "Vulnerable to brute force attacks",
		},
	},
	"smb": {
		TestName: "SMB Service Detected",
		Severity: "medium",
		Details: map[string]interface{}{
			"service":        "SMB",
			"recommendation": "Ensure proper authentication and disable unnecessary shares",
			"risk":           "Potential for unauthorized file access",
		},
	},
}

// weakCredentialMeta 各协议命中弱口令后的结论元数据
var weakCredentialMeta = map[string]struct {
	TestName string
	Severity string
	Service  string
	Risk     string
}{
	"ssh":        {"Weak SSH Credentials", "critical", "SSH", "Allows remote system access"},
	"ftp":        {"Weak FTP Credentials", "high", "FTP", "Allows file system access"},
	"telnet":     {"Weak Telnet Credentials", "critical", "Telnet", "Allows unencrypted remote access"},
	"mysql":      {"Weak MySQL Credentials", "critical", "MySQL", "Allows database access and potential data theft"},
	"postgresql": {"Weak PostgreSQL Credentials", "critical", "PostgreSQL", "Allows database access and potential data theft"},
}

// Credential 命中的有效凭据
type Credential struct {
	Service     string
	Port        int
	Username    string
	Password    string
	AccessLevel string
}

// Finding 爆破阶段的漏洞结论
type Finding struct {
	TestName string
	Severity string
	Details  map[string]interface{}
}

// Report 单目标一次爆破的产出
type Report struct {
	Credentials []Credential
	Findings    []Finding
}

// ServiceDetector 服务识别接口，测试时可替换
type ServiceDetector interface {
	Detect(ctx context.Context, ip string) map[int]string
}

// Engine 爆破引擎
type Engine struct {
	crackers      map[string]Cracker
	dict          *DictManager
	dialer        *net.Dialer
	detector      ServiceDetector
	detectTimeout time.Duration
	authTimeout   time.Duration
}

// EngineOption 引擎配置项
type EngineOption func(*Engine)

func WithDetectTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.detectTimeout = d }
}

func WithAuthTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.authTimeout = d }
}

func WithDict(d *DictManager) EngineOption {
	return func(e *Engine) { e.dict = d }
}

func WithDetector(d ServiceDetector) EngineOption {
	return func(e *Engine) { e.detector = d }
}

func NewEngine(crackers []Cracker, opts ...EngineOption) *Engine {
	e := &Engine{
		crackers:      make(map[string]Cracker, len(crackers)),
		dict:          NewDictManager(),
		dialer:        &net.Dialer{},
		detectTimeout: 3 * time.Second,
		authTimeout:   3 * time.Second,
	}
	for _, c := range crackers {
		e.crackers[c.Name()] = c
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run 对单个目标执行 服务识别 -> 弱口令爆破
// 识别到需要爆破的服务但缺少 Cracker 时返回 ErrCapabilityUnavailable
func (e *Engine) Run(ctx context.Context, ip string) (*Report, error) {
	report := &Report{}

	var services map[int]string
	if e.detector != nil {
		services = e.detector.Detect(ctx, ip)
	} else {
		services = e.detectServices(ctx, ip)
	}
	// 按端口号升序处理，保证结论顺序稳定
	ports := make([]int, 0, len(services))
	for p := range services {
		ports = append(ports, p)
	}
	sort.Ints(ports)

	for _, port := range ports {
		svc := services[port]
		// 只检测不爆破的服务直接给固定结论
		if finding, ok := detectOnlyFindings[svc]; ok {
			f := finding
			f.Details = cloneDetails(finding.Details)
			f.Details["port"] = port
			report.Findings = append(report.Findings, f)
			continue
		}

		if _, ok := crackableServices[svc]; !ok {
			continue // smtp/dns/http 等服务不在爆破范围内
		}

		cracker, ok := e.crackers[svc]
		if !ok {
			return nil, fmt.Errorf("爆破 %s 服务(端口%d)缺少协议支持: %w", svc, port, ErrCapabilityUnavailable)
		}

		cred, finding := e.crackService(ctx, ip, port, svc, cracker)
		if cred != nil {
			report.Credentials = append(report.Credentials, *cred)
			report.Findings = append(report.Findings, *finding)
		}
	}

	return report, nil
}

// detectServices 识别目标开放的已知服务
func (e *Engine) detectServices(ctx context.Context, ip string) map[int]string {
	found := make(map[int]string)
	for port, svc := range servicePorts {
		if e.isPortOpen(ctx, ip, port) {
			found[port] = svc
		}
	}
	return found
}

func (e *Engine) isPortOpen(ctx context.Context, ip string, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, e.detectTimeout)
	defer cancel()

	conn, err := e.dialer.DialContext(dialCtx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// crackService 按字典顺序逐个试凭据，命中即停
// 单个凭据的连接错误不中断整轮尝试
func (e *Engine) crackService(ctx context.Context, ip string, port int, svc string, cracker Cracker) (*Credential, *Finding) {
	for _, auth := range e.dict.Credentials() {
		checkCtx, cancel := context.WithTimeout(ctx, e.authTimeout)
		ok, err := cracker.Check(checkCtx, ip, port, auth)
		cancel()

		if err != nil {
			logger.Debugf("凭据验证出错 %s@%s:%d service=%s err=%v", auth.Username, ip, port, svc, err)
			continue
		}
		if !ok {
			continue
		}

		meta := weakCredentialMeta[svc]
		cred := &Credential{
			Service:     svc,
			Port:        port,
			Username:    auth.Username,
			Password:    auth.Password,
			AccessLevel: AccessLevelFor(svc, auth.Username),
		}
		finding := &Finding{
			TestName: meta.TestName,
			Severity: meta.Severity,
			Details: map[string]interface{}{
				"service":  meta.Service,
				"port":     port,
				"username": auth.Username,
				"password": auth.Password,
				"risk":     meta.Risk,
			},
		}
		logger.Infof("命中弱口令 %s@%s:%d service=%s", auth.Username, ip, port, svc)
		return cred, finding
	}
	return nil, nil
}

func cloneDetails(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
