package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat *ChatHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", Health)
	api.POST("/chat", deps.Chat.Chat)
}
