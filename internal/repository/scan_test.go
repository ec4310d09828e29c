package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neoprobe/internal/model"
)

func TestScanTaskBulkCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanTaskRepository(db)
	seedBatch(t, db, "batch-tasks", 3)

	tasks := []*model.ScanTask{
		{BatchID: "batch-tasks", IPAddress: "100.64.10.1", Status: model.TaskStatusPending},
		{BatchID: "batch-tasks", IPAddress: "100.64.10.2", Status: model.TaskStatusPending},
		{BatchID: "batch-tasks", IPAddress: "100.64.10.3", Status: model.TaskStatusPending},
	}
	require.NoError(t, repo.BulkCreate(tasks))

	// 空切片是no-op
	require.NoError(t, repo.BulkCreate(nil))

	got, err := repo.ListByBatch("batch-tasks")
	require.NoError(t, err)
	require.Len(t, got, 3)
	// 按主键升序返回
	assert.Equal(t, "100.64.10.1", got[0].IPAddress)
	assert.Equal(t, "100.64.10.3", got[2].IPAddress)
}

func TestScanTaskGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanTaskRepository(db)

	got, err := repo.GetByID(999)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestScanTaskSaveResult(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanTaskRepository(db)
	seedBatch(t, db, "batch-result", 1)

	task := &model.ScanTask{BatchID: "batch-result", IPAddress: "100.64.11.1", Status: model.TaskStatusScanning}
	require.NoError(t, db.Create(task).Error)

	ping := int64(23)
	task.IsOnline = true
	task.PingTime = &ping
	task.OpenPorts = model.PortMap{22: "SSH", 6379: "Redis"}
	task.VulnerablePorts = model.PortMap{6379: "Redis数据库服务，默认无认证，存在数据泄露风险"}
	task.ScanDetails = "64 bytes from 100.64.11.1: icmp_seq=1 ttl=64 time=23.0 ms"
	require.NoError(t, repo.SaveResult(task))

	got, err := repo.GetByID(task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.TaskStatusCompleted, got.Status)
	assert.True(t, got.IsOnline)
	require.NotNil(t, got.PingTime)
	assert.Equal(t, int64(23), *got.PingTime)
	// JSON列往返后端口映射保持完整
	assert.Equal(t, "SSH", got.OpenPorts[22])
	assert.Equal(t, "Redis", got.OpenPorts[6379])
	assert.Len(t, got.VulnerablePorts, 1)
	assert.NotNil(t, got.ScannedAt)
}

func TestScanTaskMarkFailedAndAnyFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanTaskRepository(db)
	seedBatch(t, db, "batch-fail", 2)

	tasks := []*model.ScanTask{
		{BatchID: "batch-fail", IPAddress: "100.64.12.1", Status: model.TaskStatusScanning},
		{BatchID: "batch-fail", IPAddress: "100.64.12.2", Status: model.TaskStatusPending},
	}
	require.NoError(t, repo.BulkCreate(tasks))

	failed, err := repo.AnyFailed("batch-fail")
	require.NoError(t, err)
	assert.False(t, failed)

	require.NoError(t, repo.MarkFailed(tasks[0].ID, "step=probe kind=unexpected_probe: 探测超时"))

	got, err := repo.GetByID(tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ScanDetails, "探测超时")
	assert.NotNil(t, got.ScannedAt)

	failed, err = repo.AnyFailed("batch-fail")
	require.NoError(t, err)
	assert.True(t, failed)

	// 不存在的任务返回错误
	assert.Error(t, repo.MarkFailed(888, "x"))
	assert.Error(t, repo.UpdateStatus(888, model.TaskStatusScanning))
}
