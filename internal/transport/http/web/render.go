package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// commit 会话必须在写响应头之前落盘（Set-Cookie）
func commit(c *gin.Context) {
	s := SessionOf(c)
	if s == nil {
		return
	}
	if err := s.Commit(c); err != nil {
		Logger(c).Error("session commit failed", zap.Error(err))
	}
}

// Render 合并公共变量（当前用户、一次性提示）后渲染页面
func Render(c *gin.Context, status int, name string, data gin.H) {
	locals := gin.H{
		"currentUser": CurrentUser(c),
		"path":        c.Request.URL.Path,
	}
	if s := SessionOf(c); s != nil {
		success, errMsg := s.popFlash()
		locals["success"] = success
		locals["error"] = errMsg
	}
	for k, v := range data {
		locals[k] = v
	}
	commit(c)
	c.HTML(status, name, locals)
}

func Redirect(c *gin.Context, to string) {
	commit(c)
	c.Redirect(http.StatusFound, to)
	c.Abort()
}

func FlashSuccess(c *gin.Context, msg string) {
	if s := SessionOf(c); s != nil {
		s.flash(msg, "")
	}
}

func FlashError(c *gin.Context, msg string) {
	if s := SessionOf(c); s != nil {
		s.flash("", msg)
	}
}

// NotFound 404 页面
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "404", gin.H{"title": "Page not found"})
}

// ErrorPage message 面向用户，不含内部细节
func ErrorPage(c *gin.Context, status int, message string) {
	if message == "" {
		message = "Something went wrong. Please try again later."
	}
	Render(c, status, "error", gin.H{"title": "Server error", "message": message})
}

func ServerError(c *gin.Context, message string) {
	ErrorPage(c, http.StatusInternalServerError, message)
}
