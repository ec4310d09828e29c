package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"neoprobe/internal/model"
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
		&model.PentestSession{},
		&model.PentestResult{},
		&model.DiscoveredCredential{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// 造一个 processing 批次和对应任务
func seedBatch(t *testing.T, db *gorm.DB, batchID string, total int) *model.UploadBatch {
	t.Helper()
	now := time.Now()
	batch := &model.UploadBatch{
		BatchID:   batchID,
		Filename:  "targets.txt",
		TotalIPs:  total,
		Status:    model.BatchStatusProcessing,
		StartedAt: &now,
	}
	require.NoError(t, db.Create(batch).Error)
	return batch
}

func TestRecomputeCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	seedBatch(t, db, "batch-recompute", 4)

	ping := int64(10)
	tasks := []*model.ScanTask{
		{BatchID: "batch-recompute", IPAddress: "100.64.0.1", Status: model.TaskStatusCompleted,
			IsOnline: true, PingTime: &ping,
			OpenPorts:       model.PortMap{22: "SSH", 80: "HTTP"},
			VulnerablePorts: model.PortMap{22: "SSH服务可能存在弱密码或暴力破解风险"}},
		{BatchID: "batch-recompute", IPAddress: "100.64.0.2", Status: model.TaskStatusCompleted,
			IsOnline: true, OpenPorts: model.PortMap{443: "HTTPS"}},
		{BatchID: "batch-recompute", IPAddress: "100.64.0.3", Status: model.TaskStatusCompleted},
		{BatchID: "batch-recompute", IPAddress: "100.64.0.4", Status: model.TaskStatusFailed},
	}
	require.NoError(t, db.Create(&tasks).Error)

	batch, err := repo.RecomputeCounters("batch-recompute")
	require.NoError(t, err)
	require.NotNil(t, batch)

	// 失败任务不计入已扫描数
	assert.Equal(t, 3, batch.ScannedIPs)
	assert.Equal(t, 2, batch.OnlineIPs)
	assert.Equal(t, 1, batch.VulnerableIPs)
	// 4个目标只完成3个，批次保持处理中
	assert.Equal(t, model.BatchStatusProcessing, batch.Status)
	assert.Nil(t, batch.CompletedAt)
}

func TestRecomputeCountersIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	seedBatch(t, db, "batch-idem", 2)

	tasks := []*model.ScanTask{
		{BatchID: "batch-idem", IPAddress: "100.64.1.1", Status: model.TaskStatusCompleted, IsOnline: true,
			VulnerablePorts: model.PortMap{3389: "RDP服务存在暴力破解和BlueKeep等漏洞风险"}},
		{BatchID: "batch-idem", IPAddress: "100.64.1.2", Status: model.TaskStatusCompleted},
	}
	require.NoError(t, db.Create(&tasks).Error)

	first, err := repo.RecomputeCounters("batch-idem")
	require.NoError(t, err)
	second, err := repo.RecomputeCounters("batch-idem")
	require.NoError(t, err)

	// 同一份源数据重算任意次，结果一致
	assert.Equal(t, first.ScannedIPs, second.ScannedIPs)
	assert.Equal(t, first.OnlineIPs, second.OnlineIPs)
	assert.Equal(t, first.VulnerableIPs, second.VulnerableIPs)
	assert.Equal(t, first.Status, second.Status)
}

func TestRecomputeCountersCompletesBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	seedBatch(t, db, "batch-done", 2)

	tasks := []*model.ScanTask{
		{BatchID: "batch-done", IPAddress: "100.64.2.1", Status: model.TaskStatusCompleted, IsOnline: true},
		{BatchID: "batch-done", IPAddress: "100.64.2.2", Status: model.TaskStatusCompleted},
	}
	require.NoError(t, db.Create(&tasks).Error)

	batch, err := repo.RecomputeCounters("batch-done")
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, batch.Status)
	require.NotNil(t, batch.CompletedAt)

	// 完成后再次重算不会改写完成时间
	firstDone := *batch.CompletedAt
	again, err := repo.RecomputeCounters("batch-done")
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, again.Status)

	var stored model.UploadBatch
	require.NoError(t, db.Where("batch_id = ?", "batch-done").First(&stored).Error)
	require.NotNil(t, stored.CompletedAt)
	assert.WithinDuration(t, firstDone, *stored.CompletedAt, time.Second)
}

func TestRecomputeCountersFailedBatchStaysFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	batch := seedBatch(t, db, "batch-keep-failed", 1)
	require.NoError(t, db.Model(batch).Update("status", model.BatchStatusFailed).Error)

	task := &model.ScanTask{BatchID: "batch-keep-failed", IPAddress: "100.64.3.1", Status: model.TaskStatusCompleted}
	require.NoError(t, db.Create(task).Error)

	// 已失败的批次不会被重算拉回完成态
	got, err := repo.RecomputeCounters("batch-keep-failed")
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, got.Status)
	assert.Equal(t, 1, got.ScannedIPs)
}

func TestBatchUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	seedBatch(t, db, "batch-status", 1)

	require.NoError(t, repo.UpdateStatus("batch-status", model.BatchStatusFailed, "探测引擎异常"))

	got, err := repo.GetByBatchID("batch-status")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.BatchStatusFailed, got.Status)
	assert.Equal(t, "探测引擎异常", got.ErrorMessage)
	assert.NotNil(t, got.CompletedAt)

	// 不存在的批次返回错误
	assert.Error(t, repo.UpdateStatus("no-such-batch", model.BatchStatusFailed, ""))
}

func TestBatchMarkStarted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)

	batch := &model.UploadBatch{BatchID: "batch-start", Filename: "a.txt", TotalIPs: 1, Status: model.BatchStatusPending}
	require.NoError(t, db.Create(batch).Error)

	require.NoError(t, repo.MarkStarted("batch-start"))
	got, err := repo.GetByBatchID("batch-start")
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusProcessing, got.Status)
	assert.NotNil(t, got.StartedAt)

	// 非 pending 状态下重复调用不改变状态
	require.NoError(t, repo.UpdateStatus("batch-start", model.BatchStatusCompleted, ""))
	require.NoError(t, repo.MarkStarted("batch-start"))
	got, err = repo.GetByBatchID("batch-start")
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, got.Status)
}

func TestBatchGetByBatchIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)

	got, err := repo.GetByBatchID("missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBatchDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBatchRepository(db)
	seedBatch(t, db, "batch-del", 2)

	tasks := []*model.ScanTask{
		{BatchID: "batch-del", IPAddress: "100.64.4.1", Status: model.TaskStatusPending},
		{BatchID: "batch-del", IPAddress: "100.64.4.2", Status: model.TaskStatusPending},
	}
	require.NoError(t, db.Create(&tasks).Error)

	require.NoError(t, repo.Delete("batch-del"))

	var batchCount, taskCount int64
	require.NoError(t, db.Model(&model.UploadBatch{}).Where("batch_id = ?", "batch-del").Count(&batchCount).Error)
	require.NoError(t, db.Model(&model.ScanTask{}).Where("batch_id = ?", "batch-del").Count(&taskCount).Error)
	assert.Zero(t, batchCount)
	assert.Zero(t, taskCount)

	assert.Error(t, repo.Delete("batch-del"))
}
