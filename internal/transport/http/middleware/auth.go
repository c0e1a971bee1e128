package middleware

import (
	"github.com/gin-gonic/gin"

	"library-catalog/internal/domain"
	"library-catalog/internal/transport/http/web"
)

// RequireAuth 未登录跳转登录页
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if web.CurrentUser(c) == nil {
			web.FlashError(c, "Please log in to access this page.")
			web.Redirect(c, "/auth/login")
			return
		}
		c.Next()
	}
}

// RequireGuest 已登录用户不能再访问登录/注册
func RequireGuest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if web.CurrentUser(c) != nil {
			web.Redirect(c, "/")
			return
		}
		c.Next()
	}
}

// RequireRole 角色不符跳回首页；未登录同 RequireAuth
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := web.CurrentUser(c)
		if u == nil {
			web.FlashError(c, "Please log in to access this page.")
			web.Redirect(c, "/auth/login")
			return
		}
		if !u.HasRole(roles...) {
			web.FlashError(c, "You do not have permission to access this page.")
			web.Redirect(c, "/")
			return
		}
		c.Next()
	}
}
