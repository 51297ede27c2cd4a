package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrValidation marks a request that is missing required fields or carries
// values outside the allowed set.
var ErrValidation = errors.New("validation failed")

func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "internal error")
}
