/**
 * 漏洞报表服务:批次维度的风险汇总
 * @author: sun977
 */
package scan

import (
	"sort"

	"neoprobe/internal/core/classifier"
	"neoprobe/internal/model"
	"neoprobe/internal/repository"
)

// VulnReport 批次漏洞报表
type VulnReport struct {
	VulnerableHosts []*model.ScanTask               `json:"vulnerable_hosts"`
	OnlineHosts     []*model.ScanTask               `json:"online_hosts"`
	Report          map[string][]classifier.Finding `json:"report"`            // ip -> 分类结论
	PortSeverityMap map[int]string                  `json:"port_severity_map"` // 涉及端口 -> 等级
	SeverityCounts  map[string]int                  `json:"severity_counts"`   // HIGH/MEDIUM/LOW 计数
}

// Reporter 报表服务
type Reporter struct {
	taskRepo repository.ScanTaskRepository
}

func NewReporter(taskRepo repository.ScanTaskRepository) *Reporter {
	return &Reporter{taskRepo: taskRepo}
}

// Report 生成批次漏洞报表
// 逐主机把风险端口交给分类器出结论，再汇总端口等级分布
func (r *Reporter) Report(batchID string) (*VulnReport, error) {
	tasks, err := r.taskRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	report := &VulnReport{
		Report:          make(map[string][]classifier.Finding),
		PortSeverityMap: make(map[int]string),
		SeverityCounts: map[string]int{
			classifier.SeverityHigh:   0,
			classifier.SeverityMedium: 0,
			classifier.SeverityLow:    0,
		},
	}

	for _, task := range tasks {
		if task.IsOnline {
			report.OnlineHosts = append(report.OnlineHosts, task)
		}
		if len(task.VulnerablePorts) == 0 {
			continue
		}
		report.VulnerableHosts = append(report.VulnerableHosts, task)

		ports := make([]int, 0, len(task.VulnerablePorts))
		for p := range task.VulnerablePorts {
			ports = append(ports, p)
		}
		report.Report[task.IPAddress] = classifier.ReportFor(ports)
	}

	// 涉及端口的等级分布，同一端口出现在多台主机只计一次
	for _, findings := range report.Report {
		for _, f := range findings {
			if _, seen := report.PortSeverityMap[f.Port]; seen {
				continue
			}
			report.PortSeverityMap[f.Port] = f.Severity
			if _, ok := report.SeverityCounts[f.Severity]; ok {
				report.SeverityCounts[f.Severity]++
			}
		}
	}

	return report, nil
}

// InvolvedPorts 报表涉及的全部端口，升序
func (v *VulnReport) InvolvedPorts() []int {
	ports := make([]int, 0, len(v.PortSeverityMap))
	for p := range v.PortSeverityMap {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}
