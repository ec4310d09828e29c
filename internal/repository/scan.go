/**
 * 扫描任务仓库层:单IP扫描任务数据访问
 * @author: sun977
 * @description: 任务数据访问层，结果写入采用单条UPDATE保证原子性
 */
package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
)

// ScanTaskRepository 扫描任务仓库接口定义
type ScanTaskRepository interface {
	BulkCreate(tasks []*model.ScanTask) error
	GetByID(id uint64) (*model.ScanTask, error)
	ListByBatch(batchID string) ([]*model.ScanTask, error)
	UpdateStatus(id uint64, status string) error
	SaveResult(task *model.ScanTask) error
	MarkFailed(id uint64, detail string) error
	AnyFailed(batchID string) (bool, error)
}

type scanTaskRepository struct {
	db *gorm.DB
}

func NewScanTaskRepository(db *gorm.DB) ScanTaskRepository {
	return &scanTaskRepository{db: db}
}

// BulkCreate 批量创建扫描任务
func (r *scanTaskRepository) BulkCreate(tasks []*model.ScanTask) error {
	if len(tasks) == 0 {
		return nil
	}
	// 分批插入避免单条SQL过大
	if err := r.db.CreateInBatches(tasks, 200).Error; err != nil {
		logger.Errorf("扫描任务批量创建失败 batch_id=%s count=%d err=%v", tasks[0].BatchID, len(tasks), err)
		return err
	}
	return nil
}

// GetByID 根据主键获取任务，未找到返回 (nil, nil)
func (r *scanTaskRepository) GetByID(id uint64) (*model.ScanTask, error) {
	var task model.ScanTask
	result := r.db.First(&task, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListByBatch 获取批次下全部任务，按主键升序
func (r *scanTaskRepository) ListByBatch(batchID string) ([]*model.ScanTask, error) {
	var tasks []*model.ScanTask
	if err := r.db.Where("batch_id = ?", batchID).Order("id asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus 更新任务状态
func (r *scanTaskRepository) UpdateStatus(id uint64, status string) error {
	result := r.db.Model(&model.ScanTask{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("扫描任务不存在: %d", id)
	}
	return nil
}

// SaveResult 写入探测结果
// 状态与结果字段在同一条UPDATE里落库，读端看不到半成品
func (r *scanTaskRepository) SaveResult(task *model.ScanTask) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":           model.TaskStatusCompleted,
		"is_online":        task.IsOnline,
		"ping_time":        task.PingTime,
		"open_ports":       task.OpenPorts,
		"vulnerable_ports": task.VulnerablePorts,
		"scan_details":     task.ScanDetails,
		"scanned_at":       &now,
	}

	result := r.db.Model(&model.ScanTask{}).Where("id = ?", task.ID).Updates(updates)
	if result.Error != nil {
		logger.Errorf("扫描结果写入失败 task_id=%d ip=%s err=%v", task.ID, task.IPAddress, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("扫描任务不存在: %d", task.ID)
	}
	return nil
}

// MarkFailed 任务判定失败，detail 记录失败环节信息
func (r *scanTaskRepository) MarkFailed(id uint64, detail string) error {
	now := time.Now()
	result := r.db.Model(&model.ScanTask{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       model.TaskStatusFailed,
		"scan_details": detail,
		"scanned_at":   &now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("扫描任务不存在: %d", id)
	}
	return nil
}

// AnyFailed 批次下是否存在失败任务
func (r *scanTaskRepository) AnyFailed(batchID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ScanTask{}).
		Where("batch_id = ? AND status = ?", batchID, model.TaskStatusFailed).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
