package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"library-catalog/internal/core/config"
	"library-catalog/internal/domain"
	"library-catalog/internal/transport/http/handler"
	mdw "library-catalog/internal/transport/http/middleware"
	"library-catalog/internal/transport/http/view"
	"library-catalog/internal/transport/http/web"
)

type Deps struct {
	Log      *zap.Logger
	HTTP     config.HTTP
	Sessions *web.Manager
	Pages    *handler.PageHandler
	Auth     *handler.AuthHandler
	Books    *handler.BookHandler
	Users    *handler.UserHandler
}

func NewWebEngine(d Deps) (*gin.Engine, error) {
	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	r := gin.New()
	r.HTMLRender = views

	// 中间件（顺序有意义：rid → recovery → 指标/日志 → 限流 → 会话）
	r.Use(
		mdw.RequestID(d.Log),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(),
	)
	h := d.HTTP
	if h.RateLimitRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(h.RateLimitRPS), max(h.RateLimitBurst, 1), 10*time.Minute))
	}
	if h.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(h.MaxConcurrent))
	}
	if h.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(h.MaxBodyBytes))
	}
	if h.RequestTimeout > 0 {
		r.Use(mdw.Timeout(time.Duration(h.RequestTimeout) * time.Second))
	}
	if len(h.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     h.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", mdw.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 探活与指标不读会话
	r.GET("/health", d.Pages.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/static", view.Static())

	site := r.Group("", mdw.Sessions(d.Sessions))
	site.GET("/", d.Pages.Home)
	site.GET("/about", d.Pages.About)

	mountAuth(site.Group("/auth"), d.Auth)
	mountBooks(site.Group("/books"), d.Books)
	mountUsers(site.Group("/users"), d.Users)

	// 未匹配的路由也要带上会话（显示登录状态）
	r.NoRoute(mdw.Sessions(d.Sessions), web.NotFound)
	return r, nil
}

func mountAuth(g *gin.RouterGroup, h *handler.AuthHandler) {
	guest := g.Group("", mdw.RequireGuest())
	guest.GET("/register", h.RegisterForm)
	guest.POST("/register", h.Register)
	guest.GET("/login", h.LoginForm)
	guest.POST("/login", h.Login)

	authed := g.Group("", mdw.RequireAuth())
	authed.POST("/logout", h.Logout)
	authed.GET("/profile", h.Profile)
	authed.POST("/profile/update", h.UpdateProfile)
	authed.POST("/profile/change-password", h.ChangePassword)
}

func mountBooks(g *gin.RouterGroup, h *handler.BookHandler) {
	g.GET("", h.List)

	staff := g.Group("", mdw.RequireRole(domain.RoleLibrarian, domain.RoleAdmin))
	staff.GET("/create", h.CreateForm)
	staff.POST("/create", h.Create)
	staff.GET("/edit/:id", h.EditForm)
	staff.POST("/edit/:id", h.Update)

	g.POST("/delete/:id", mdw.RequireRole(domain.RoleAdmin), h.Delete)

	readers := g.Group("", mdw.RequireAuth())
	readers.POST("/borrow/:id", h.Borrow)
	readers.POST("/return/:id", h.Return)
}

func mountUsers(g *gin.RouterGroup, h *handler.UserHandler) {
	staff := g.Group("", mdw.RequireRole(domain.RoleLibrarian, domain.RoleAdmin))
	staff.GET("", h.List)
	staff.GET("/:id", h.Details)

	admin := g.Group("", mdw.RequireRole(domain.RoleAdmin))
	admin.GET("/create", h.CreateForm)
	admin.POST("/create", h.Create)
	admin.GET("/edit/:id", h.EditForm)
	admin.POST("/edit/:id", h.Update)
	admin.POST("/delete/:id", h.Delete)
}
