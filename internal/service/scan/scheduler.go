/**
 * 任务调度器:工作池 + 重试策略
 * @author: sun977
 * @description: 固定数量的 worker 消费任务队列
 * 重试/超时策略是调度器配置，不挂在任务身上
 */
package scan

import (
	"context"
	"sync"
	"time"

	"neoprobe/internal/pkg/logger"
)

const (
	DefaultWorkers     = 10
	DefaultQueueSize   = 1024
	DefaultMaxAttempts = 3
	DefaultTaskTimeout = 300 * time.Second
)

// workItem 队列中的工作单元
type workItem struct {
	taskID  uint64
	attempt int // 从1开始
}

// Runner 任务执行接口，调度器只认这个
type Runner interface {
	Run(ctx context.Context, taskID uint64) error
}

// Scheduler 工作池调度器
type Scheduler struct {
	runner      Runner
	queue       chan workItem
	workers     int
	maxAttempts int
	taskTimeout time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// SchedulerOption 调度器配置项
type SchedulerOption func(*Scheduler)

func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithQueueSize(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.queue = make(chan workItem, n)
		}
	}
}

func WithMaxAttempts(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithTaskTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.taskTimeout = d
		}
	}
}

func NewScheduler(runner Runner, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner:      runner,
		queue:       make(chan workItem, DefaultQueueSize),
		workers:     DefaultWorkers,
		maxAttempts: DefaultMaxAttempts,
		taskTimeout: DefaultTaskTimeout,
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 启动工作池，ctx 取消后 worker 退出
func (s *Scheduler) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	logger.Infof("任务调度器启动 workers=%d max_attempts=%d timeout=%s", s.workers, s.maxAttempts, s.taskTimeout)
}

// Stop 停止接收新任务并等待在途任务结束
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
	})
	s.wg.Wait()
}

// Enqueue 投递一个任务的首次执行
// 队列满时阻塞投递方，起到天然的背压作用
func (s *Scheduler) Enqueue(taskID uint64) {
	select {
	case <-s.stopped:
		logger.Warnf("调度器已停止，任务被丢弃 task_id=%d", taskID)
	case s.queue <- workItem{taskID: taskID, attempt: 1}:
	}
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case item := <-s.queue:
			s.execute(ctx, item)
		}
	}
}

// execute 执行单次尝试，失败且未达次数上限则重新入队
func (s *Scheduler) execute(ctx context.Context, item workItem) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	err := s.runner.Run(attemptCtx, item.taskID)
	cancel()

	if err == nil {
		return
	}

	// 能力缺失类错误重试也不会好转，直接放弃
	if stepErr, ok := err.(*StepError); ok && stepErr.Kind == KindCapability {
		logger.Errorf("任务能力缺失不重试 task_id=%d err=%v", item.taskID, err)
		return
	}

	if item.attempt >= s.maxAttempts {
		logger.Errorf("任务重试次数耗尽 task_id=%d attempts=%d err=%v", item.taskID, item.attempt, err)
		return
	}

	logger.Warnf("任务执行失败准备重试 task_id=%d attempt=%d err=%v", item.taskID, item.attempt, err)
	next := workItem{taskID: item.taskID, attempt: item.attempt + 1}
	select {
	case <-s.stopped:
	case <-ctx.Done():
	case s.queue <- next:
	}
}
