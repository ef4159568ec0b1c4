package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Slingshot-Innovation/podcast-builder/controllers"
	"github.com/Slingshot-Innovation/podcast-builder/middleware"
	"github.com/Slingshot-Innovation/podcast-builder/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	//Quản lý episode
	api.POST("/episodes", controllers.CreateEpisode)
	api.GET("/episodes", controllers.GetEpisodes)
	api.GET("/episodes/:id", controllers.GetEpisodeDetail)
	api.DELETE("/episodes/:id", controllers.DeleteEpisode)

	r.GET("/ws/episode/:id", ws.HandleEpisodeWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
