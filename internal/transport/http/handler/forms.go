package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"library-catalog/internal/domain"
)

// BookForm 表单原样回显，数字字段保持字符串
type BookForm struct {
	Title       string `form:"title"`
	Author      string `form:"author"`
	Year        string `form:"year"`
	Genre       string `form:"genre"`
	Description string `form:"description"`
	Image       string `form:"image"`
	ISBN        string `form:"isbn"`
	Status      string `form:"status"`
	Copies      string `form:"copies"`
	Publisher   string `form:"publisher"`
	Pages       string `form:"pages"`
	Language    string `form:"language"`
}

func bookFormOf(b *domain.Book) BookForm {
	f := BookForm{
		Title:       b.Title,
		Author:      b.Author,
		Year:        strconv.Itoa(b.Year),
		Genre:       string(b.Genre),
		Description: b.Description,
		Image:       b.Image,
		ISBN:        b.ISBN,
		Status:      string(b.Status),
		Copies:      strconv.Itoa(b.Copies),
		Publisher:   b.Publisher,
		Language:    b.Language,
	}
	if b.Pages != nil {
		f.Pages = strconv.Itoa(*b.Pages)
	}
	return f
}

func newBookForm() BookForm {
	return BookForm{Status: string(domain.BookAvailable), Copies: "1", Language: domain.DefaultLanguage}
}

// Book 解析数字字段；copies 为空按 1，pages 为空不设
func (f BookForm) Book() (*domain.Book, error) {
	fields := map[string]string{}
	b := &domain.Book{
		Title:       f.Title,
		Author:      f.Author,
		Genre:       domain.Genre(strings.TrimSpace(f.Genre)),
		Description: f.Description,
		Image:       f.Image,
		ISBN:        f.ISBN,
		Status:      domain.BookStatus(strings.TrimSpace(f.Status)),
		Publisher:   f.Publisher,
		Language:    strings.TrimSpace(f.Language),
		Copies:      1,
	}
	if n, ok := atoi(f.Year, fields, "year"); ok {
		b.Year = n
	}
	if strings.TrimSpace(f.Copies) != "" {
		if n, ok := atoi(f.Copies, fields, "copies"); ok {
			b.Copies = n
		}
	}
	if strings.TrimSpace(f.Pages) != "" {
		if n, ok := atoi(f.Pages, fields, "pages"); ok {
			b.Pages = &n
		}
	}
	// 其余字段规则一并报告
	if ve, ok := domain.AsValidation(b.Validate()); ok {
		for k, v := range ve.Fields {
			if _, dup := fields[k]; !dup {
				fields[k] = v
			}
		}
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}
	return b, nil
}

func atoi(s string, fields map[string]string, key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		fields[key] = key + " must be a whole number"
		return 0, false
	}
	return n, true
}

type UserForm struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Email     string `form:"email"`
	Phone     string `form:"phone"`
	Role      string `form:"role"`
	Status    string `form:"status"`
	Password  string `form:"password"`
}

func userFormOf(u *domain.User) UserForm {
	return UserForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Status:    string(u.Status),
	}
}

// Echo 回显时去掉密码
func (f UserForm) Echo() UserForm {
	f.Password = ""
	return f
}

type RegisterForm struct {
	FirstName       string `form:"firstName"`
	LastName        string `form:"lastName"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type ProfileForm struct {
	FirstName string `form:"firstName"`
	LastName  string `form:"lastName"`
	Phone     string `form:"phone"`
}

type PasswordForm struct {
	CurrentPassword string `form:"currentPassword"`
	NewPassword     string `form:"newPassword"`
	ConfirmPassword string `form:"confirmPassword"`
}

// listQuery 列表页的查询参数（翻页链接沿用，page 除外）
func listQuery(c *gin.Context, keys ...string) url.Values {
	q := url.Values{}
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
