package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/hmobot/internal/pkg/response"
)

func Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "OK"})
}
