package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/domain"
	"library-catalog/internal/service"
	"library-catalog/internal/transport/http/web"
)

// UserHandler 用户管理（列表/详情给馆员，增删改只给管理员）
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *gin.Context) {
	q := service.UserQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Role:   domain.Role(c.Query("role")),
		Status: domain.UserStatus(c.Query("status")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	page, err := h.users.List(c.Request.Context(), q)
	if err != nil {
		web.Logger(c).Error("list users failed", zap.Error(err))
		web.ServerError(c, "Could not load the user list.")
		return
	}
	web.Render(c, http.StatusOK, "users", gin.H{
		"title":          "Users",
		"page":           page,
		"base":           "/users",
		"query":          listQuery(c, "search", "role", "status", "limit"),
		"search":         q.Search,
		"selectedRole":   c.Query("role"),
		"selectedStatus": c.Query("status"),
		"roles":          domain.Roles,
		"statuses":       domain.UserStatuses,
	})
}

func (h *UserHandler) form(title, action string, f UserForm, isEdit bool) *web.Form {
	return &web.Form{Template: "user-form", Data: gin.H{
		"title":    title,
		"action":   action,
		"form":     f.Echo(),
		"isEdit":   isEdit,
		"roles":    domain.Roles,
		"statuses": domain.UserStatuses,
	}}
}

func (h *UserHandler) CreateForm(c *gin.Context) {
	f := h.form("Add a new user", "/users/create", UserForm{
		Role: string(domain.RoleReader), Status: string(domain.UserActive),
	}, false)
	web.Render(c, http.StatusOK, f.Template, f.Data)
}

func (h *UserHandler) Create(c *gin.Context) {
	var in UserForm
	_ = c.ShouldBind(&in)
	u := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      domain.Role(in.Role),
		Status:    domain.UserStatus(in.Status),
		Password:  in.Password,
	}
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		web.Fail(c, err, "/users", "Could not add the user.", h.form("Add a new user", "/users/create", in, false))
		return
	}
	web.FlashSuccess(c, "User added successfully!")
	web.Redirect(c, "/users")
}

func (h *UserHandler) EditForm(c *gin.Context) {
	id := c.Param("id")
	u, err := h.users.ForEdit(c.Request.Context(), web.CurrentUser(c).ID, id)
	if err != nil {
		web.Fail(c, err, "/users", "Could not load the user.", nil)
		return
	}
	f := h.form("Edit user", "/users/edit/"+id, userFormOf(u), true)
	web.Render(c, http.StatusOK, f.Template, f.Data)
}

func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var in UserForm
	_ = c.ShouldBind(&in)
	_, err := h.users.Update(c.Request.Context(), web.CurrentUser(c).ID, id, service.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      domain.Role(in.Role),
		Status:    domain.UserStatus(in.Status),
		Password:  in.Password,
	})
	if err != nil {
		web.Fail(c, err, "/users", "Could not update the user.", h.form("Edit user", "/users/edit/"+id, in, true))
		return
	}
	web.FlashSuccess(c, "User updated successfully!")
	web.Redirect(c, "/users")
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), web.CurrentUser(c).ID, c.Param("id")); err != nil {
		web.Fail(c, err, "/users", "Could not delete the user.", nil)
		return
	}
	web.FlashSuccess(c, "User deleted successfully!")
	web.Redirect(c, "/users")
}

func (h *UserHandler) Details(c *gin.Context) {
	u, err := h.users.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Fail(c, err, "/users", "Could not load the user.", nil)
		return
	}
	web.Render(c, http.StatusOK, "user-details", gin.H{
		"title": "User: " + u.FullName(),
		"user":  u,
	})
}
