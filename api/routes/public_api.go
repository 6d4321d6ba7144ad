package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thepradipthapa/livechat/api/handlers"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/login", handlers.Login)
		publicEndpoints.POST("auth/verify", handlers.Verify)
	}
	return publicEndpoints
}
