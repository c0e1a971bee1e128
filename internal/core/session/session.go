// Package session keeps login state and one-shot flash messages on the
// server side. The browser only holds a signed token naming the session id.
package session

import (
	"context"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Data 会话内容；Success / Error 为一次性提示，渲染后清空
type Data struct {
	UserID    string `json:"userId,omitempty" bson:"userId,omitempty"`
	FirstName string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
	Role      string `json:"role,omitempty" bson:"role,omitempty"`
	Status    string `json:"status,omitempty" bson:"status,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`

	Success string `json:"success,omitempty" bson:"success,omitempty"`
	Error   string `json:"error,omitempty" bson:"error,omitempty"`
}

func (d *Data) LoggedIn() bool { return d != nil && d.UserID != "" }

// PopFlash 取出并清空提示
func (d *Data) PopFlash() (success, errMsg string) {
	success, errMsg = d.Success, d.Error
	d.Success, d.Error = "", ""
	return
}

func (d *Data) Empty() bool { return *d == Data{} }

// Store 会话存储；Load 查不到时返回 (nil, nil)
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, d *Data, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}
