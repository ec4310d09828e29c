/**
 * 批次编排服务:批次生命周期管理
 * @author: sun977
 * @description: 创建批次并派发任务、状态查询(带读时失败覆盖)、批次删除
 * 状态查询结果走 Redis 短TTL缓存，轮询场景下减轻数据库压力
 */
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/pkg/utils"
	"neoprobe/internal/repository"
)

const statusCacheKeyPrefix = "neoprobe:batch:status:"

// BatchStatus 批次状态查询结果
type BatchStatus struct {
	Batch           *model.UploadBatch `json:"batch"`
	Progress        int                `json:"progress"`
	EffectiveStatus string             `json:"effective_status"`
}

// Orchestrator 批次编排服务
type Orchestrator struct {
	batchRepo repository.BatchRepository
	taskRepo  repository.ScanTaskRepository
	scheduler *Scheduler

	// 可选的状态缓存，nil 时直连数据库
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewOrchestrator(
	batchRepo repository.BatchRepository,
	taskRepo repository.ScanTaskRepository,
	scheduler *Scheduler,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *Orchestrator {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Second
	}
	return &Orchestrator{
		batchRepo: batchRepo,
		taskRepo:  taskRepo,
		scheduler: scheduler,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
	}
}

// CreateBatch 创建批次并为每个IP派发独立扫描任务
// 入参IP必须全部是合法公网IPv4，任何一个不合格整批拒绝
func (o *Orchestrator) CreateBatch(ctx context.Context, filename string, ips []string) (*model.UploadBatch, error) {
	if len(ips) == 0 {
		return nil, &ValidationError{Field: "ips", Message: "IP列表不能为空"}
	}

	normalized := make([]string, 0, len(ips))
	for _, raw := range ips {
		ip := utils.NormalizeIP(raw)
		if !utils.IsPublicIPv4(ip) {
			return nil, &ValidationError{Field: "ips", Message: fmt.Sprintf("非法或不可扫描的IP地址: %s", raw)}
		}
		// 重复IP不做去重，产生重复任务
		normalized = append(normalized, ip)
	}

	batch := &model.UploadBatch{
		BatchID:  utils.MustUUID(),
		Filename: filename,
		TotalIPs: len(normalized),
		Status:   model.BatchStatusPending,
	}
	if err := o.batchRepo.Create(batch); err != nil {
		return nil, NewStepError(StepPersist, KindPersistence, err)
	}

	tasks := make([]*model.ScanTask, 0, len(normalized))
	for _, ip := range normalized {
		tasks = append(tasks, &model.ScanTask{
			BatchID:   batch.BatchID,
			IPAddress: ip,
			Status:    model.TaskStatusPending,
		})
	}
	if err := o.taskRepo.BulkCreate(tasks); err != nil {
		return nil, NewStepError(StepPersist, KindPersistence, err)
	}

	if err := o.batchRepo.MarkStarted(batch.BatchID); err != nil {
		return nil, NewStepError(StepPersist, KindPersistence, err)
	}
	batch.Status = model.BatchStatusProcessing

	// 每个任务独立入队，互相之间无顺序保证
	for _, t := range tasks {
		o.scheduler.Enqueue(t.ID)
	}

	logger.Infof("批次创建完成 batch_id=%s filename=%s total=%d", batch.BatchID, filename, batch.TotalIPs)
	return batch, nil
}

// Status 查询批次状态
// effectiveStatus 是读时覆盖：批次下任何任务失败都报 failed，与落库状态无关
func (o *Orchestrator) Status(ctx context.Context, batchID string) (*BatchStatus, error) {
	if cached := o.readCache(ctx, batchID); cached != nil {
		return cached, nil
	}

	batch, err := o.batchRepo.GetByBatchID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, nil
	}

	anyFailed, err := o.taskRepo.AnyFailed(batchID)
	if err != nil {
		return nil, err
	}

	effective := batch.Status
	if anyFailed {
		effective = model.BatchStatusFailed
	}

	status := &BatchStatus{
		Batch:           batch,
		Progress:        Progress(batch.ScannedIPs, batch.TotalIPs),
		EffectiveStatus: effective,
	}
	o.writeCache(ctx, batchID, status)
	return status, nil
}

// DeleteBatch 删除批次及其全部任务
func (o *Orchestrator) DeleteBatch(ctx context.Context, batchID string) error {
	if err := o.batchRepo.Delete(batchID); err != nil {
		return err
	}
	o.invalidateCache(ctx, batchID)
	logger.Infof("批次已删除 batch_id=%s", batchID)
	return nil
}

// Progress 扫描进度百分比，四舍五入；总数为0时进度为0
func Progress(scanned, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(scanned) / float64(total) * 100))
}

func (o *Orchestrator) readCache(ctx context.Context, batchID string) *BatchStatus {
	if o.redis == nil {
		return nil
	}
	raw, err := o.redis.Get(ctx, statusCacheKeyPrefix+batchID).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("批次状态缓存读取失败 batch_id=%s err=%v", batchID, err)
		}
		return nil
	}
	var status BatchStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil
	}
	return &status
}

func (o *Orchestrator) writeCache(ctx context.Context, batchID string, status *BatchStatus) {
	if o.redis == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := o.redis.Set(ctx, statusCacheKeyPrefix+batchID, raw, o.cacheTTL).Err(); err != nil {
		logger.Warnf("批次状态缓存写入失败 batch_id=%s err=%v", batchID, err)
	}
}

func (o *Orchestrator) invalidateCache(ctx context.Context, batchID string) {
	if o.redis == nil {
		return
	}
	if err := o.redis.Del(ctx, statusCacheKeyPrefix+batchID).Err(); err != nil {
		logger.Warnf("批次状态缓存删除失败 batch_id=%s err=%v", batchID, err)
	}
}
