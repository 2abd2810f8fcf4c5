package api

import (
	"log/slog"
	"net/http"

	"stockroom/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// respondInternal logs the failure with a trimmed stack before answering 500;
// internal detail never reaches the client.
func respondInternal(c *gin.Context, err error) {
	slog.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"stack", errs.ExtractStackLines(err, 8))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}
