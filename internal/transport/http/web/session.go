package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/core/auth"
	"library-catalog/internal/core/session"
	"library-catalog/internal/domain"
	"library-catalog/pkg/utils"
)

const (
	ctxSession  = "web.session"
	ctxIdentity = "web.identity"
	ctxLogger   = "web.logger"
)

// Manager cookie 里是签名过的会话 id，内容在 Store
type Manager struct {
	Store  session.Store
	Tokens *auth.JWTer
	Cookie string
	TTL    time.Duration
	Secure bool
}

// Session 单次请求内的会话；写出响应头之前必须 Commit
type Session struct {
	mgr       *Manager
	id        string
	staleID   string
	Data      session.Data
	dirty     bool
	rotated   bool
	destroyed bool
	// loadFailed 存储读失败：本次请求不能覆盖客户端已有的 cookie
	loadFailed bool
}

// Load 读 cookie → 校验签名 → 取会话；cookie 无效时当作新会话，存储出错时标记 loadFailed
func (m *Manager) Load(c *gin.Context) *Session {
	s := &Session{mgr: m}
	raw, err := c.Cookie(m.Cookie)
	if err != nil || raw == "" {
		return s
	}
	claims, err := m.Tokens.Parse(raw)
	if err != nil {
		return s
	}
	d, err := m.Store.Load(c.Request.Context(), claims.SID)
	if err != nil {
		Logger(c).Warn("session load failed", zap.Error(err))
		s.loadFailed = true
		return s
	}
	if d != nil {
		s.id = claims.SID
		s.Data = *d
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) touch() { s.dirty = true }

// SetUser 登录成功：换新 id 防止会话固定
func (s *Session) SetUser(u *domain.User) {
	if s.id != "" {
		s.staleID = s.id
		s.id = ""
	}
	// 主动登录，允许下发新 cookie
	s.loadFailed = false
	s.Data.UserID = u.ID
	s.RefreshUser(u)
}

// RefreshUser 资料修改后同步会话里的展示字段
func (s *Session) RefreshUser(u *domain.User) {
	s.Data.FirstName = u.FirstName
	s.Data.LastName = u.LastName
	s.Data.Email = u.Email
	s.Data.Role = string(u.Role)
	s.Data.Status = string(u.Status)
	s.Data.Phone = u.Phone
	s.touch()
}

func (s *Session) Destroy() {
	s.destroyed = true
}

func (s *Session) flash(success, errMsg string) {
	if success != "" {
		s.Data.Success = success
	}
	if errMsg != "" {
		s.Data.Error = errMsg
	}
	s.touch()
}

func (s *Session) popFlash() (string, string) {
	success, errMsg := s.Data.PopFlash()
	if success != "" || errMsg != "" {
		s.touch()
	}
	return success, errMsg
}

// Commit 持久化会话并按需下发 cookie
func (s *Session) Commit(c *gin.Context) error {
	m := s.mgr
	ctx := c.Request.Context()
	c.SetSameSite(http.SameSiteLaxMode)

	if s.staleID != "" {
		if err := m.Store.Destroy(ctx, s.staleID); err != nil {
			return err
		}
		s.staleID = ""
	}
	if s.destroyed {
		s.destroyed = false
		if s.id != "" {
			if err := m.Store.Destroy(ctx, s.id); err != nil {
				return err
			}
		}
		s.id, s.Data, s.dirty = "", session.Data{}, false
		c.SetCookie(m.Cookie, "", -1, "/", "", m.Secure, true)
		return nil
	}
	if !s.dirty {
		return nil
	}
	s.dirty = false
	if s.loadFailed {
		Logger(c).Warn("session store unavailable, changes dropped")
		return nil
	}
	// 匿名且无内容不建会话
	if s.id == "" && s.Data.Empty() {
		return nil
	}
	if s.id == "" {
		s.id = utils.NewID()
		s.rotated = true
	}
	if err := m.Store.Save(ctx, s.id, &s.Data, m.TTL); err != nil {
		return err
	}
	if s.rotated {
		tok, err := m.Tokens.Issue(s.id)
		if err != nil {
			return err
		}
		c.SetCookie(m.Cookie, tok, int(m.TTL.Seconds()), "/", "", m.Secure, true)
		s.rotated = false
	}
	return nil
}

func Bind(c *gin.Context, s *Session) {
	c.Set(ctxSession, s)
	if s.Data.LoggedIn() {
		c.Set(ctxIdentity, identityFrom(&s.Data))
	}
}

func SessionOf(c *gin.Context) *Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return nil
}

func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}

func SetLogger(c *gin.Context, l *zap.Logger) { c.Set(ctxLogger, l) }
