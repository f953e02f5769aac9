package api

import (
	"Fieldclip/internal/api/config"
	"Fieldclip/internal/api/middleware"
	"Fieldclip/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, logCfg config.LogstashConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logCfg.Index, logCfg.Token)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		clipGroup := apiGroup.Group("/clips")
		{
			clipGroup.POST("", group.ClipHandler.CreateClip)
			clipGroup.GET("", group.ClipHandler.ListClips)
			clipGroup.PUT("/status", group.ClipHandler.UpdateClipsStatus)
			clipGroup.GET("/pending", group.ClipHandler.ListPendingClips)
			clipGroup.POST("/:clip_id/review", group.ClipHandler.ReviewClip)
			clipGroup.POST("/:clip_id/reopen", group.ClipHandler.ReopenClip)
			clipGroup.GET("/:clip_id/stats", group.ClipHandler.GetClipStats)
			clipGroup.DELETE("/:clip_id", group.ClipHandler.DeleteClip)
		}
	}

	return r
}
