/**
 * 渗透会话处理器:会话相关HTTP接口
 * @author: sun977
 */
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/service/pentest"
)

// PentestHandler 渗透会话处理器
type PentestHandler struct {
	service *pentest.Service
}

func NewPentestHandler(service *pentest.Service) *PentestHandler {
	return &PentestHandler{service: service}
}

// CreateSessionRequest 创建会话请求
// target_ips 为空时默认选取批次全部在线主机
type CreateSessionRequest struct {
	BatchID     string   `json:"batch_id" binding:"required"`
	Description string   `json:"description"`
	TargetIPs   []string `json:"target_ips"`
}

// CreateSession 创建渗透会话并异步执行
func (h *PentestHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req.BatchID, req.Description, req.TargetIPs)
	if err != nil {
		if errors.Is(err, pentest.ErrBatchNotReady) {
			c.JSON(http.StatusUnprocessableEntity, model.APIResponse{
				Code:    http.StatusUnprocessableEntity,
				Status:  "error",
				Message: "Batch is not ready for pentest",
				Error:   err.Error(),
			})
			return
		}
		if errors.Is(err, pentest.ErrTargetNotOnline) {
			c.JSON(http.StatusUnprocessableEntity, model.APIResponse{
				Code:    http.StatusUnprocessableEntity,
				Status:  "error",
				Message: "Target is not an online host of the batch",
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to create session",
			Error:   err.Error(),
		})
		return
	}

	// 会话执行与请求生命周期解耦，进度通过查询接口获取
	go func(sessionID string) {
		if err := h.service.Run(context.Background(), sessionID); err != nil {
			logger.Errorf("渗透会话执行失败 session_id=%s err=%v", sessionID, err)
		}
	}(session.SessionID)

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Session created successfully",
		Data:    session,
	})
}

// CancelSession 取消会话
func (h *PentestHandler) CancelSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.service.Cancel(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, pentest.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, model.APIResponse{
				Code:    http.StatusNotFound,
				Status:  "error",
				Message: "Session not found",
			})
		case errors.Is(err, pentest.ErrSessionNotCancellable):
			c.JSON(http.StatusConflict, model.APIResponse{
				Code:    http.StatusConflict,
				Status:  "error",
				Message: "Session already finished",
				Error:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, model.APIResponse{
				Code:    http.StatusInternalServerError,
				Status:  "error",
				Message: "Failed to cancel session",
				Error:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Session cancelled",
	})
}

// GetSession 查询会话及其结论与凭据
func (h *PentestHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	report, err := h.service.Report(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, pentest.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, model.APIResponse{
				Code:    http.StatusNotFound,
				Status:  "error",
				Message: "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to get session",
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
