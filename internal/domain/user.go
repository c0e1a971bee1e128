package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"library-catalog/internal/core/validate"
	"library-catalog/pkg/utils"
)

type Role string

const (
	RoleReader    Role = "reader"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

var Roles = []Role{RoleReader, RoleLibrarian, RoleAdmin}

func (r Role) Label() string {
	switch r {
	case RoleReader:
		return "Reader"
	case RoleLibrarian:
		return "Librarian"
	case RoleAdmin:
		return "Administrator"
	}
	return string(r)
}

func (r Role) Valid() bool {
	for _, x := range Roles {
		if x == r {
			return true
		}
	}
	return false
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

var UserStatuses = []UserStatus{UserActive, UserInactive, UserSuspended}

func (s UserStatus) Label() string {
	switch s {
	case UserActive:
		return "Active"
	case UserInactive:
		return "Inactive"
	case UserSuspended:
		return "Suspended"
	}
	return string(s)
}

const MinPasswordLen = 6

type User struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	FirstName        string     `gorm:"size:64;not null" json:"firstName" validate:"required"`
	LastName         string     `gorm:"size:64;not null" json:"lastName" validate:"required"`
	Email            string     `gorm:"uniqueIndex;size:191;not null" json:"email" validate:"required,mail"`
	PasswordHash     string     `gorm:"size:100;not null" json:"-" validate:"required"`
	Phone            string     `gorm:"size:32" json:"phone" validate:"phone"`
	Role             Role       `gorm:"size:16;not null;index" json:"role" validate:"oneof=reader librarian admin"`
	Status           UserStatus `gorm:"size:16;not null;index" json:"status" validate:"oneof=active inactive suspended"`
	RegistrationDate time.Time  `gorm:"not null" json:"registrationDate"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	Loans            []Loan     `gorm:"foreignKey:UserID" json:"loans,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Password 明文，仅在设置/修改时赋值；保存时哈希后清空
	Password string `gorm:"-" json:"-" validate:"omitempty,min=6"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

func (u *User) normalize() {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Phone = strings.TrimSpace(u.Phone)
	if u.Role == "" {
		u.Role = RoleReader
	}
	if u.Status == "" {
		u.Status = UserActive
	}
}

func (u *User) Validate() error {
	u.normalize()
	fields := validate.Struct(u)
	// 新密码尚未哈希时 PasswordHash 为空属正常
	if _, ok := fields["PasswordHash"]; ok {
		delete(fields, "PasswordHash")
		if u.Password == "" {
			fields["password"] = "password is required"
		}
	}
	if msg, ok := fields["Password"]; ok {
		delete(fields, "Password")
		fields["password"] = msg
	}
	return NewValidationError(fields)
}

// BeforeSave 校验字段；设置了明文密码则加盐哈希
func (u *User) BeforeSave(tx *gorm.DB) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now().UTC()
	}
	if u.Password != "" {
		h, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = h
		u.Password = ""
	}
	return nil
}

func (u *User) CheckPassword(pw string) bool {
	return utils.CheckPassword(pw, u.PasswordHash)
}

type UserFilter struct {
	Search string
	Role   Role
	Status UserStatus
	Offset int
	Limit  int
}
