/**
 * 扫描任务执行器:单任务状态机
 * @author: sun977
 * @description: pending -> scanning -> {completed | failed}
 * 探测成功后结果原子落库并触发批次聚合重算
 * 编排环节失败会级联把所属批次也判失败，错误按环节归因
 */
package scan

import (
	"context"

	"neoprobe/internal/core/probe"
	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/repository"
)

// Prober 探测引擎接口，测试时可替换
type Prober interface {
	Probe(ctx context.Context, ip string) (*probe.Result, error)
}

// TaskRunner 单任务执行器
type TaskRunner struct {
	taskRepo  repository.ScanTaskRepository
	batchRepo repository.BatchRepository
	prober    Prober
}

func NewTaskRunner(taskRepo repository.ScanTaskRepository, batchRepo repository.BatchRepository, prober Prober) *TaskRunner {
	return &TaskRunner{
		taskRepo:  taskRepo,
		batchRepo: batchRepo,
		prober:    prober,
	}
}

// Run 执行单个扫描任务
// 返回的 *StepError 由调度器决定是否重试；任务已处于终态时直接返回 nil
func (r *TaskRunner) Run(ctx context.Context, taskID uint64) error {
	task, err := r.taskRepo.GetByID(taskID)
	if err != nil {
		return NewStepError(StepPersist, KindPersistence, err)
	}
	if task == nil {
		// 任务已被删除(批次级联删除)，无事可做
		logger.Warnf("扫描任务不存在，跳过执行 task_id=%d", taskID)
		return nil
	}
	// 已完成的任务不重复执行；失败的任务允许被调度器重试复活
	if task.Status == model.TaskStatusCompleted {
		return nil
	}

	if err := r.taskRepo.UpdateStatus(task.ID, model.TaskStatusScanning); err != nil {
		stepErr := NewStepError(StepPersist, KindPersistence, err)
		r.fail(task, stepErr)
		return stepErr
	}

	// 探测环节：引擎内部已把"不可达/端口关闭"消化为负向结论
	// 这里冒出来的错误都是未预期的
	result, err := r.prober.Probe(ctx, task.IPAddress)
	if err != nil {
		stepErr := NewStepError(StepProbe, KindUnexpected, err)
		r.fail(task, stepErr)
		return stepErr
	}

	task.IsOnline = result.IsOnline
	task.PingTime = result.PingTime
	task.OpenPorts = model.PortMap(result.OpenPorts)
	task.VulnerablePorts = model.PortMap(result.VulnerablePorts)
	task.ScanDetails = result.RawDetails

	if err := r.taskRepo.SaveResult(task); err != nil {
		stepErr := NewStepError(StepPersist, KindPersistence, err)
		r.fail(task, stepErr)
		return stepErr
	}

	if _, err := r.batchRepo.RecomputeCounters(task.BatchID); err != nil {
		stepErr := NewStepError(StepAggregate, KindPersistence, err)
		r.fail(task, stepErr)
		return stepErr
	}

	logger.Infof("扫描任务完成 task_id=%d ip=%s online=%v open=%d vulnerable=%d",
		task.ID, task.IPAddress, result.IsOnline, len(result.OpenPorts), len(result.VulnerablePorts))
	return nil
}

// fail 任务判失败并级联到所属批次，失败原因带环节归因
// 级联写库的二次错误只记日志，不再递归处理
func (r *TaskRunner) fail(task *model.ScanTask, stepErr *StepError) {
	msg := stepErr.Error()
	if err := r.taskRepo.MarkFailed(task.ID, msg); err != nil {
		logger.Errorf("任务失败状态写入失败 task_id=%d err=%v", task.ID, err)
	}
	if err := r.batchRepo.UpdateStatus(task.BatchID, model.BatchStatusFailed, msg); err != nil {
		logger.Errorf("批次级联失败状态写入失败 batch_id=%s err=%v", task.BatchID, err)
	}
	logger.Errorf("扫描任务失败 task_id=%d ip=%s %s", task.ID, task.IPAddress, msg)
}
