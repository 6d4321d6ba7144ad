package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/thepradipthapa/livechat/api/handlers"
	"github.com/thepradipthapa/livechat/api/middleware"
)

func ChatApi(router *gin.Engine) *gin.RouterGroup {
	authorizedEndpoints := router.Group("/api/v1/")
	authorizedEndpoints.Use(middleware.AuthMiddleware())
	{
		authorizedEndpoints.POST("auth/logout", handlers.Logout)
		authorizedEndpoints.GET("me", handlers.Profile)
		authorizedEndpoints.GET("users", handlers.UserList)
		authorizedEndpoints.GET("users/:id", handlers.UserGet)

		authorizedEndpoints.POST("chat/create", handlers.CreateOrGetChat)
		authorizedEndpoints.GET("chat/list", handlers.ChatList)
		authorizedEndpoints.POST("chat/:id/send", handlers.SendMessage)
		authorizedEndpoints.GET("chat/:id/messages", handlers.ListMessages)
		authorizedEndpoints.GET("chat/ws", handlers.WSChatHandler)
	}
	return authorizedEndpoints
}
