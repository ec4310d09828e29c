package model

import (
	"time"

	"neoprobe/internal/model/basemodel"
)

// 会话状态
// created -> running -> completed/failed/cancelled (终态)
const (
	SessionStatusCreated   = "created"
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
	SessionStatusCancelled = "cancelled"
)

// 渗透测试模块类型
const (
	ModuleBruteForce = "brute_force"
	ModuleWebVuln    = "web_vuln"
)

// 渗透测试结果严重等级
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// 凭据访问级别
const (
	AccessLevelGuest = "guest"
	AccessLevelUser  = "user"
	AccessLevelAdmin = "admin"
	AccessLevelRoot  = "root"
)

// StringList JSON字符串数组列
type StringList []string

// DetailMap 结构化明细，存储为JSON列
type DetailMap map[string]interface{}

// PentestSession 渗透测试会话实体
// 由操作员从已完成批次的在线主机中选取目标后创建
type PentestSession struct {
	basemodel.BaseModel

	SessionID   string     `json:"session_id" gorm:"uniqueIndex;not null;size:36;comment:会话唯一标识"`
	BatchID     string     `json:"batch_id" gorm:"index;size:36;comment:来源批次ID"`
	TargetIPs   StringList `json:"target_ips" gorm:"type:json;serializer:json;comment:目标IP集合"`
	Status      string     `json:"status" gorm:"size:20;default:'created';index;comment:会话状态"`
	Description string     `json:"description" gorm:"type:text;comment:状态说明或失败原因"`
	StartedAt   *time.Time `json:"started_at" gorm:"comment:开始时间"`
	FinishedAt  *time.Time `json:"finished_at" gorm:"comment:结束时间"`
}

// TableName 定义表名
func (PentestSession) TableName() string {
	return "pentest_sessions"
}

// PentestResult 渗透测试发现实体 (append-only)
// 同一会话的多个目标并发产出结果，只增不改
type PentestResult struct {
	basemodel.BaseModel

	SessionID   string    `json:"session_id" gorm:"index;not null;size:36;comment:所属会话ID"`
	IPAddress   string    `json:"ip_address" gorm:"size:45;not null;comment:目标IP"`
	ModuleType  string    `json:"module_type" gorm:"size:20;not null;comment:模块类型(brute_force/web_vuln)"`
	TestName    string    `json:"test_name" gorm:"size:100;not null;comment:测试名称"`
	Severity    string    `json:"severity" gorm:"size:20;not null;comment:严重等级"`
	Description string    `json:"description" gorm:"type:text;comment:描述"`
	Details     DetailMap `json:"details" gorm:"type:json;serializer:json;comment:结构化明细"`
	TestedAt    time.Time `json:"tested_at" gorm:"comment:测试时间"`
}

// TableName 定义表名
func (PentestResult) TableName() string {
	return "pentest_results"
}

// DiscoveredCredential 发现的有效凭据实体 (append-only)
// 密码明文存储：操作员需要原文做复核，这是本系统的既定策略
// stop-on-success 策略下每个 (session, ip, service) 至多一条
type DiscoveredCredential struct {
	basemodel.BaseModel

	SessionID    string    `json:"session_id" gorm:"index;not null;size:36;comment:所属会话ID"`
	IPAddress    string    `json:"ip_address" gorm:"size:45;not null;comment:目标IP"`
	Service      string    `json:"service" gorm:"size:32;not null;comment:服务名"`
	Port         int       `json:"port" gorm:"comment:端口"`
	Username     string    `json:"username" gorm:"size:128;comment:用户名"`
	Password     string    `json:"password" gorm:"size:128;comment:密码(明文)"`
	AccessLevel  string    `json:"access_level" gorm:"size:16;default:'user';comment:访问级别"`
	Verified     bool      `json:"verified" gorm:"default:false;comment:是否已验证"`
	DiscoveredAt time.Time `json:"discovered_at" gorm:"comment:发现时间"`
}

// TableName 定义表名
func (DiscoveredCredential) TableName() string {
	return "discovered_credentials"
}
