package web

import (
	"github.com/gin-gonic/gin"

	"library-catalog/internal/core/session"
	"library-catalog/internal/domain"
)

// Identity 当前请求的登录用户，由会话中间件放入上下文
type Identity struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      domain.Role
	Status    domain.UserStatus
}

func identityFrom(d *session.Data) *Identity {
	return &Identity{
		ID:        d.UserID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Role:      domain.Role(d.Role),
		Status:    domain.UserStatus(d.Status),
	}
}

func (i *Identity) FullName() string { return i.FirstName + " " + i.LastName }

func (i *Identity) HasRole(roles ...domain.Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool { return i.HasRole(domain.RoleAdmin) }

// IsStaff 图书管理员或管理员
func (i *Identity) IsStaff() bool { return i.HasRole(domain.RoleLibrarian, domain.RoleAdmin) }

// CurrentUser 未登录时返回 nil
func CurrentUser(c *gin.Context) *Identity {
	if v, ok := c.Get(ctxIdentity); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}

// SignIn 写会话并刷新本次请求的身份
func SignIn(c *gin.Context, u *domain.User) {
	s := SessionOf(c)
	if s == nil {
		return
	}
	s.SetUser(u)
	c.Set(ctxIdentity, identityFrom(&s.Data))
}

func RefreshIdentity(c *gin.Context, u *domain.User) {
	s := SessionOf(c)
	if s == nil {
		return
	}
	s.RefreshUser(u)
	c.Set(ctxIdentity, identityFrom(&s.Data))
}

func SignOut(c *gin.Context) {
	if s := SessionOf(c); s != nil {
		s.Destroy()
	}
	c.Set(ctxIdentity, (*Identity)(nil))
}
