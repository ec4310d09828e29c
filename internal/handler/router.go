/**
 * 路由注册
 * @author: sun977
 */
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter 构建HTTP路由
func NewRouter(scanHandler *ScanHandler, pentestHandler *PentestHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		batches := v1.Group("/batches")
		{
			batches.POST("", scanHandler.CreateBatch)
			batches.GET("/:id/status", scanHandler.GetStatus)
			batches.GET("/:id/report", scanHandler.GetReport)
			batches.GET("/:id/export", scanHandler.ExportCSV)
			batches.DELETE("/:id", scanHandler.DeleteBatch)
		}

		sessions := v1.Group("/pentest/sessions")
		{
			sessions.POST("", pentestHandler.CreateSession)
			sessions.POST("/:id/cancel", pentestHandler.CancelSession)
			sessions.GET("/:id", pentestHandler.GetSession)
		}
	}

	return r
}
