package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-catalog/internal/transport/http/web"
)

// Timeout 给请求上下文设超时；DB / 会话存储调用都会感知
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			web.ErrorPage(c, http.StatusGatewayTimeout, "The request took too long. Please try again.")
			c.Abort()
		}
	}
}
