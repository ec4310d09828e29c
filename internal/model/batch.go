package model

import (
	"time"

	"neoprobe/internal/model/basemodel"
)

// 批次状态
// pending -> processing -> completed/failed
const (
	BatchStatusPending    = "pending"
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

// UploadBatch 上传批次实体
// 一个批次对应一次目标IP集合的导入，持有聚合统计计数器
// 计数器不变量: 0 <= scanned <= total, online <= scanned, vulnerable <= online
// UploadBatch(聚合) -- ScanTask(执行单元)[按 batch_id 关联]
type UploadBatch struct {
	basemodel.BaseModel

	BatchID       string     `json:"batch_id" gorm:"uniqueIndex;not null;size:36;comment:批次唯一标识"`
	Filename      string     `json:"filename" gorm:"size:255;comment:来源文件名"`
	TotalIPs      int        `json:"total_ips" gorm:"default:0;comment:目标总数"`
	ScannedIPs    int        `json:"scanned_ips" gorm:"default:0;comment:已完成扫描数"`
	OnlineIPs     int        `json:"online_ips" gorm:"default:0;comment:在线主机数"`
	VulnerableIPs int        `json:"vulnerable_ips" gorm:"default:0;comment:存在风险端口的主机数"`
	Status        string     `json:"status" gorm:"size:20;default:'pending';index;comment:批次状态"`
	ErrorMessage  string     `json:"error_message" gorm:"type:text;comment:失败原因"`
	StartedAt     *time.Time `json:"started_at" gorm:"comment:开始扫描时间"`
	CompletedAt   *time.Time `json:"completed_at" gorm:"comment:完成时间"`
}

// TableName 定义表名
func (UploadBatch) TableName() string {
	return "upload_batches"
}
