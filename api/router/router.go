package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"forum-harvest/api/handlers"
	"forum-harvest/api/middleware"
	_ "forum-harvest/docs"
	"forum-harvest/services"
)

// New builds the ops API. When apiToken is set, starting a run requires it as a bearer token.
func New(svc *services.RunService, apiToken string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogging())

	r.GET("/health", handlers.HealthHandler(svc))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/runs", handlers.ListRunsHandler(svc))
		api.POST("/runs/:collector", middleware.RequireToken(apiToken), handlers.StartRunHandler(svc))
	}

	return r
}
