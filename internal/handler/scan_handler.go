/**
 * 扫描批次处理器:批次相关HTTP接口
 * @author: sun977
 * @description: 处理层只做参数绑定和响应封装，业务在service层
 */
package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/service/scan"
)

// ScanHandler 扫描批次处理器
type ScanHandler struct {
	orchestrator *scan.Orchestrator
	reporter     *scan.Reporter
	exporter     *scan.Exporter
}

func NewScanHandler(orchestrator *scan.Orchestrator, reporter *scan.Reporter, exporter *scan.Exporter) *ScanHandler {
	return &ScanHandler{
		orchestrator: orchestrator,
		reporter:     reporter,
		exporter:     exporter,
	}
}

// CreateBatchRequest 创建批次请求
type CreateBatchRequest struct {
	Filename string   `json:"filename" binding:"required"`
	IPs      []string `json:"ips" binding:"required"`
}

// CreateBatch 创建扫描批次
func (h *ScanHandler) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	batch, err := h.orchestrator.CreateBatch(c.Request.Context(), req.Filename, req.IPs)
	if err != nil {
		if scan.IsValidationError(err) {
			c.JSON(http.StatusUnprocessableEntity, model.APIResponse{
				Code:    http.StatusUnprocessableEntity,
				Status:  "error",
				Message: "IP validation failed",
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to create batch",
			Error:   err.Error(),
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"path":     c.Request.URL.String(),
		"batch_id": batch.BatchID,
		"total":    batch.TotalIPs,
	}).Info("批次创建成功")

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Batch created successfully",
		Data:    batch,
	})
}

// GetStatus 查询批次状态
func (h *ScanHandler) GetStatus(c *gin.Context) {
	batchID := c.Param("id")

	status, err := h.orchestrator.Status(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to get batch status",
			Error:   err.Error(),
		})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, model.APIResponse{
			Code:    http.StatusNotFound,
			Status:  "error",
			Message: "Batch not found",
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Success",
		Data:    status,
	})
}

// GetReport 查询批次漏洞报表
func (h *ScanHandler) GetReport(c *gin.Context) {
	batchID := c.Param("id")

	report, err := h.reporter.Report(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to build report",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Success",
		Data:    report,
	})
}

// ExportCSV 导出批次任务明细CSV
func (h *ScanHandler) ExportCSV(c *gin.Context) {
	batchID := c.Param("id")

	rows, err := h.exporter.Rows(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to export batch",
			Error:   err.Error(),
		})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=scan_batch_%s.csv", batchID))

	w := csv.NewWriter(c.Writer)
	_ = w.Write(scan.ExportHeader)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
}

// DeleteBatch 删除批次及其任务
func (h *ScanHandler) DeleteBatch(c *gin.Context) {
	batchID := c.Param("id")

	if err := h.orchestrator.DeleteBatch(c.Request.Context(), batchID); err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to delete batch",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Batch deleted successfully",
	})
}
