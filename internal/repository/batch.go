/**
 * 批次仓库层:上传批次数据访问
 * @author: sun977
 * @description: 批次数据访问层，专注于数据操作，不包含业务逻辑
 * @func: 批次CRUD + 聚合计数重算(行锁)
 */
package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
)

// BatchRepository 批次仓库接口定义
type BatchRepository interface {
	Create(batch *model.UploadBatch) error
	GetByBatchID(batchID string) (*model.UploadBatch, error)
	UpdateStatus(batchID string, status string, errorMessage string) error
	MarkStarted(batchID string) error
	RecomputeCounters(batchID string) (*model.UploadBatch, error)
	Delete(batchID string) error
}

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

// Create 创建批次记录
func (r *batchRepository) Create(batch *model.UploadBatch) error {
	if err := r.db.Create(batch).Error; err != nil {
		logger.Errorf("批次记录创建失败 batch_id=%s err=%v", batch.BatchID, err)
		return err
	}
	return nil
}

// GetByBatchID 根据业务ID获取批次，未找到返回 (nil, nil)
func (r *batchRepository) GetByBatchID(batchID string) (*model.UploadBatch, error) {
	var batch model.UploadBatch
	result := r.db.Where("batch_id = ?", batchID).First(&batch)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &batch, nil
}

// UpdateStatus 更新批次状态，errorMessage 为空时不覆盖原值
func (r *batchRepository) UpdateStatus(batchID string, status string, errorMessage string) error {
	updates := map[string]interface{}{"status": status}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if status == model.BatchStatusCompleted || status == model.BatchStatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	result := r.db.Model(&model.UploadBatch{}).Where("batch_id = ?", batchID).Updates(updates)
	if result.Error != nil {
		logger.Errorf("批次状态更新失败 batch_id=%s status=%s err=%v", batchID, status, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("批次不存在: %s", batchID)
	}
	return nil
}

// MarkStarted 批次进入处理中状态并记录开始时间
func (r *batchRepository) MarkStarted(batchID string) error {
	now := time.Now()
	return r.db.Model(&model.UploadBatch{}).
		Where("batch_id = ? AND status = ?", batchID, model.BatchStatusPending).
		Updates(map[string]interface{}{
			"status":     model.BatchStatusProcessing,
			"started_at": &now,
		}).Error
}

// RecomputeCounters 从任务表重算批次聚合计数
// 行锁串行化并发重算，整个计算在一个事务内从源数据推导，天然幂等
// 扫描数追平总数时批次自动转入完成态
func (r *batchRepository) RecomputeCounters(batchID string) (*model.UploadBatch, error) {
	var batch model.UploadBatch

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// SELECT ... FOR UPDATE 锁住批次行
		// SQLite 不支持行锁语法，事务本身已是串行的
		query := tx
		if tx.Dialector.Name() == "mysql" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.Where("batch_id = ?", batchID).First(&batch).Error; err != nil {
			return err
		}

		var tasks []model.ScanTask
		if err := tx.Select("status", "is_online", "vulnerable_ports").
			Where("batch_id = ?", batchID).Find(&tasks).Error; err != nil {
			return err
		}

		var scanned, online, vulnerable int
		for _, t := range tasks {
			if t.Status == model.TaskStatusCompleted {
				scanned++
			}
			if t.IsOnline {
				online++
			}
			if len(t.VulnerablePorts) > 0 {
				vulnerable++
			}
		}

		updates := map[string]interface{}{
			"scanned_ips":    scanned,
			"online_ips":     online,
			"vulnerable_ips": vulnerable,
		}
		if scanned >= batch.TotalIPs && batch.Status == model.BatchStatusProcessing {
			now := time.Now()
			updates["status"] = model.BatchStatusCompleted
			updates["completed_at"] = &now
			batch.Status = model.BatchStatusCompleted
			batch.CompletedAt = &now
		}
		batch.ScannedIPs = scanned
		batch.OnlineIPs = online
		batch.VulnerableIPs = vulnerable

		return tx.Model(&model.UploadBatch{}).Where("batch_id = ?", batchID).Updates(updates).Error
	})
	if err != nil {
		logger.Errorf("批次计数重算失败 batch_id=%s err=%v", batchID, err)
		return nil, err
	}
	return &batch, nil
}

// Delete 删除批次并级联删除其全部扫描任务
func (r *batchRepository) Delete(batchID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&model.ScanTask{}).Error; err != nil {
			return err
		}
		result := tx.Where("batch_id = ?", batchID).Delete(&model.UploadBatch{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("批次不存在: %s", batchID)
		}
		return nil
	})
}
