package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 挂载页面、记录 API 和健康检查。
func RegisterRoutes(router *gin.Engine, records *RecordHandler, page *PageHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/", page.Index)
	router.POST("/generate", page.Generate)

	api := router.Group("/api")
	{
		api.GET("/options", records.Options)

		rec := api.Group("/records")
		{
			rec.POST("", records.Generate)
			rec.POST("/stream", records.StreamGenerate)
			rec.GET("", records.List)
			rec.POST("/clear", records.Clear)
			rec.GET("/:id", records.Get)
			rec.DELETE("/:id", records.Delete)
		}
	}
}
