package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/transport/http/web"
)

// Sessions 载入会话与身份；处理器没写响应时在结束前兜底落盘
func Sessions(m *web.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := m.Load(c)
		web.Bind(c, s)
		c.Next()
		if !c.Writer.Written() {
			if err := s.Commit(c); err != nil {
				web.Logger(c).Error("session commit failed", zap.Error(err))
			}
		}
	}
}
