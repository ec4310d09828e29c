/**
 * 批次导出服务:任务明细的CSV行生成
 * @author: sun977
 * @description: 只做格式化，不含业务判断
 */
package scan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"neoprobe/internal/model"
	"neoprobe/internal/repository"
)

// ExportHeader CSV表头
var ExportHeader = []string{
	"ip_address", "status", "is_online", "ping_time_ms",
	"open_ports", "vulnerable_ports", "vulnerability_count", "scanned_at",
}

// Exporter 批次导出服务
type Exporter struct {
	taskRepo repository.ScanTaskRepository
}

func NewExporter(taskRepo repository.ScanTaskRepository) *Exporter {
	return &Exporter{taskRepo: taskRepo}
}

// Rows 生成批次的导出行，不含表头，每任务一行
func (e *Exporter) Rows(batchID string) ([][]string, error) {
	tasks, err := e.taskRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, taskRow(task))
	}
	return rows, nil
}

func taskRow(task *model.ScanTask) []string {
	pingTime := ""
	if task.PingTime != nil {
		pingTime = strconv.FormatInt(*task.PingTime, 10)
	}
	scannedAt := ""
	if task.ScannedAt != nil {
		scannedAt = task.ScannedAt.Format("2006-01-02 15:04:05")
	}

	return []string{
		task.IPAddress,
		task.Status,
		strconv.FormatBool(task.IsOnline),
		pingTime,
		joinPorts(task.OpenPorts),
		joinPorts(task.VulnerablePorts),
		strconv.Itoa(len(task.VulnerablePorts)),
		scannedAt,
	}
}

// joinPorts 端口表拼成 "22(SSH), 80(HTTP)" 形式，升序
func joinPorts(ports model.PortMap) string {
	if len(ports) == 0 {
		return ""
	}
	keys := make([]int, 0, len(ports))
	for p := range ports {
		keys = append(keys, p)
	}
	sort.Ints(keys)

	parts := make([]string, 0, len(keys))
	for _, p := range keys {
		parts = append(parts, fmt.Sprintf("%d(%s)", p, ports[p]))
	}
	return strings.Join(parts, ", ")
}
