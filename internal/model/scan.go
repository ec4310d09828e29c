package model

import (
	"time"

	"neoprobe/internal/model/basemodel"
)

// 任务状态
// pending -> scanning -> completed/failed (终态)
const (
	TaskStatusPending   = "pending"
	TaskStatusScanning  = "scanning"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// PortMap 端口->描述 映射，存储为JSON列
// key 为端口号，value 为服务名或风险描述
type PortMap map[int]string

// ScanTask 单IP扫描任务实体
// 仅由自身的探测执行修改，不随批次之外的操作变更
// 删除跟随所属批次级联，不单独删除
type ScanTask struct {
	basemodel.BaseModel

	BatchID         string     `json:"batch_id" gorm:"index;not null;size:36;comment:所属批次ID"`
	IPAddress       string     `json:"ip_address" gorm:"size:45;not null;comment:目标IP地址"`
	Status          string     `json:"status" gorm:"size:20;default:'pending';index;comment:任务状态"`
	IsOnline        bool       `json:"is_online" gorm:"default:false;comment:是否在线"`
	PingTime        *int64     `json:"ping_time" gorm:"comment:往返时延(ms)"`
	OpenPorts       PortMap    `json:"open_ports" gorm:"type:json;serializer:json;comment:开放端口(端口->服务名)"`
	VulnerablePorts PortMap    `json:"vulnerable_ports" gorm:"type:json;serializer:json;comment:风险端口(端口->风险描述)"`
	ScanDetails     string     `json:"scan_details" gorm:"type:text;comment:探测原始输出或失败原因"`
	ScannedAt       *time.Time `json:"scanned_at" gorm:"comment:扫描完成时间"`
}

// TableName 定义表名
func (ScanTask) TableName() string {
	return "ip_scans"
}
