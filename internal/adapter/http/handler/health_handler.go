package handler

import (
	"net/http"

	"todosync/internal/adapter/http/helper"

	"github.com/gin-gonic/gin"
)

func Liveness(c *gin.Context) {
	c.String(http.StatusOK, helper.MsgRunning)
}
