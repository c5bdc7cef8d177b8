package handler

import (
	"github.com/aki307/frext/model"
	"github.com/gin-gonic/gin"
)

// ok writes a success envelope. data may be nil.
func ok[T any](c *gin.Context, status int, data *T, message string) {
	c.JSON(status, model.OK(data, message))
}

// fail writes a failure envelope.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, model.Failure[struct{}](msg, nil))
}
