package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/service"
	resp "library-catalog/internal/transport/http/response"
	"library-catalog/internal/transport/http/web"
)

// Pinger 健康检查探测的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type PageHandler struct {
	books  *service.BookService
	checks map[string]Pinger
}

// NewPageHandler checks 为 nil 时 /health 只报告进程存活
func NewPageHandler(books *service.BookService, checks map[string]Pinger) *PageHandler {
	return &PageHandler{books: books, checks: checks}
}

func (h *PageHandler) Home(c *gin.Context) {
	home, err := h.books.Home(c.Request.Context())
	if err != nil {
		web.Logger(c).Error("load home failed", zap.Error(err))
		home = service.HomeData{}
	}
	web.Render(c, http.StatusOK, "index", gin.H{"title": "Library", "home": home})
}

func (h *PageHandler) About(c *gin.Context) {
	web.Render(c, http.StatusOK, "about", gin.H{"title": "About"})
}

func (h *PageHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			web.Logger(c).Warn("health check failed", zap.String("dep", name), zap.Error(err))
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, resp.New(resp.CodeUnavailable, resp.CodeMsgMap[resp.CodeUnavailable], status))
		return
	}
	c.JSON(http.StatusOK, resp.OK(status))
}
