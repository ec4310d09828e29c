package scan

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"neoprobe/internal/model"
	"neoprobe/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.UploadBatch{},
		&model.ScanTask{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// idleScheduler 只入队不消费的调度器，用于验证派发行为
func idleScheduler() *Scheduler {
	return NewScheduler(nil, WithQueueSize(64))
}

func newTestOrchestrator(t *testing.T, db *gorm.DB) *Orchestrator {
	t.Helper()
	return NewOrchestrator(
		repository.NewBatchRepository(db),
		repository.NewScanTaskRepository(db),
		idleScheduler(),
		nil, // 无缓存，直连数据库
		time.Second,
	)
}

func TestCreateBatch(t *testing.T) {
	db := setupTestDB(t)
	o := newTestOrchestrator(t, db)

	// 重复IP不去重，带空白的IP被标准化
	batch, err := o.CreateBatch(context.Background(), "targets.txt", []string{"1.1.1.1", " 8.8.8.8 ", "1.1.1.1"})
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, 3, batch.TotalIPs)
	assert.Equal(t, model.BatchStatusProcessing, batch.Status)
	assert.NotEmpty(t, batch.BatchID)

	var tasks []model.ScanTask
	require.NoError(t, db.Where("batch_id = ?", batch.BatchID).Order("id asc").Find(&tasks).Error)
	require.Len(t, tasks, 3)
	assert.Equal(t, "8.8.8.8", tasks[1].IPAddress)
	assert.Equal(t, model.TaskStatusPending, tasks[0].Status)

	// 每个任务都进入了调度队列
	assert.Len(t, o.scheduler.queue, 3)

	var stored model.UploadBatch
	require.NoError(t, db.Where("batch_id = ?", batch.BatchID).First(&stored).Error)
	assert.Equal(t, model.BatchStatusProcessing, stored.Status)
	assert.NotNil(t, stored.StartedAt)
}

func TestCreateBatchRejectsBadIPs(t *testing.T) {
	db := setupTestDB(t)
	o := newTestOrchestrator(t, db)

	tests := []struct {
		name string
		ips  []string
	}{
		{"空列表", nil},
		{"私有地址", []string{"1.1.1.1", "192.168.1.1"}},
		{"回环地址", []string{"127.0.0.1"}},
		{"链路本地", []string{"169.254.1.1"}},
		{"非IP字符串", []string{"not-an-ip"}},
		{"IPv6", []string{"2001:db8::1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := o.CreateBatch(context.Background(), "bad.txt", tt.ips)
			assert.Nil(t, batch)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}

	// 任何一个IP不合格整批拒绝，不产生任何落库数据
	var count int64
	require.NoError(t, db.Model(&model.UploadBatch{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStatusEffectiveFailedOverride(t *testing.T) {
	db := setupTestDB(t)
	o := newTestOrchestrator(t, db)

	batch, err := o.CreateBatch(context.Background(), "t.txt", []string{"1.1.1.1", "8.8.8.8"})
	require.NoError(t, err)

	status, err := o.Status(context.Background(), batch.BatchID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, model.BatchStatusProcessing, status.EffectiveStatus)
	assert.Equal(t, 0, status.Progress)

	// 其中一个任务失败后，读时状态被覆盖为 failed
	var task model.ScanTask
	require.NoError(t, db.Where("batch_id = ?", batch.BatchID).First(&task).Error)
	require.NoError(t, db.Model(&task).Update("status", model.TaskStatusFailed).Error)

	status, err = o.Status(context.Background(), batch.BatchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, status.EffectiveStatus)
	// 落库状态不受读时覆盖影响
	assert.Equal(t, model.BatchStatusProcessing, status.Batch.Status)
}

func TestStatusNotFound(t *testing.T) {
	db := setupTestDB(t)
	o := newTestOrchestrator(t, db)

	status, err := o.Status(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, status)
}

func TestDeleteBatch(t *testing.T) {
	db := setupTestDB(t)
	o := newTestOrchestrator(t, db)

	batch, err := o.CreateBatch(context.Background(), "t.txt", []string{"1.1.1.1"})
	require.NoError(t, err)

	require.NoError(t, o.DeleteBatch(context.Background(), batch.BatchID))

	status, err := o.Status(context.Background(), batch.BatchID)
	assert.NoError(t, err)
	assert.Nil(t, status)

	var taskCount int64
	require.NoError(t, db.Model(&model.ScanTask{}).Where("batch_id = ?", batch.BatchID).Count(&taskCount).Error)
	assert.Zero(t, taskCount)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		scanned int
		total   int
		want    int
	}{
		{"空批次", 0, 0, 0},
		{"未开始", 0, 4, 0},
		{"四分之三", 3, 4, 75},
		{"四舍五入", 1, 3, 33},
		{"进一", 2, 3, 67},
		{"完成", 4, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.scanned, tt.total))
		})
	}
}
