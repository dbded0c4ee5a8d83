package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/procurebase/internal/pkg"
)

// renderError sends the standard JSON envelope for a router-level error.
func renderError(c *gin.Context, code int, message string) {
	c.JSON(code, pkg.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// noRouteHandler answers requests that match no route.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

// noMethodHandler answers requests whose path exists under another method.
func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}
