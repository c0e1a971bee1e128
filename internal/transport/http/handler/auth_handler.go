package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-catalog/internal/domain"
	"library-catalog/internal/service"
	"library-catalog/internal/transport/http/web"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "register", gin.H{"title": "Register", "form": RegisterForm{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in RegisterForm
	_ = c.ShouldBind(&in)
	echo := in
	echo.Password, echo.ConfirmPassword = "", ""
	form := &web.Form{Template: "register", Data: gin.H{"title": "Register", "form": echo}}

	if in.Password != in.ConfirmPassword {
		web.Fail(c, domain.NewValidationError(map[string]string{
			"confirmPassword": "passwords do not match",
		}), "/auth/register", "", form)
		return
	}
	_, err := h.auth.Register(c.Request.Context(), service.Registration{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Phone:     in.Phone,
	})
	if err != nil {
		web.Fail(c, err, "/auth/register", "Registration failed. Please try again.", form)
		return
	}
	web.FlashSuccess(c, "Registration successful! You can now log in.")
	web.Redirect(c, "/auth/login")
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "login", gin.H{"title": "Log in", "form": LoginForm{}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in LoginForm
	_ = c.ShouldBind(&in)
	form := &web.Form{Template: "login", Data: gin.H{"title": "Log in", "form": LoginForm{Email: in.Email}}}

	u, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		web.Fail(c, err, "/auth/login", "Login failed. Please try again.", form)
		return
	}
	web.SignIn(c, u)
	web.FlashSuccess(c, "Welcome, "+u.FirstName+"!")
	web.Redirect(c, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	web.SignOut(c)
	web.Redirect(c, "/auth/login")
}

func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.auth.Profile(c.Request.Context(), web.CurrentUser(c).ID)
	if err != nil {
		web.Fail(c, err, "/", "Could not load your profile.", nil)
		return
	}
	web.Render(c, http.StatusOK, "profile", gin.H{"title": "My profile", "user": u})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in ProfileForm
	_ = c.ShouldBind(&in)
	u, err := h.auth.UpdateProfile(c.Request.Context(), web.CurrentUser(c).ID, in.FirstName, in.LastName, in.Phone)
	if err != nil {
		web.Fail(c, err, "/auth/profile", "Could not update your profile.", nil)
		return
	}
	web.RefreshIdentity(c, u)
	web.FlashSuccess(c, "Profile updated successfully!")
	web.Redirect(c, "/auth/profile")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var in PasswordForm
	_ = c.ShouldBind(&in)
	err := h.auth.ChangePassword(c.Request.Context(), web.CurrentUser(c).ID,
		in.CurrentPassword, in.NewPassword, in.ConfirmPassword)
	if err != nil {
		web.Fail(c, err, "/auth/profile", "Could not change your password.", nil)
		return
	}
	web.FlashSuccess(c, "Password changed successfully!")
	web.Redirect(c, "/auth/profile")
}
