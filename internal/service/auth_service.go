package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"library-catalog/internal/domain"
)

type AuthService struct {
	store domain.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewAuthService(store domain.Store, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{store: store, log: log, now: time.Now}
}

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// Register 自助注册的账号一律是 reader
func (s *AuthService) Register(ctx context.Context, r Registration) (*domain.User, error) {
	u := &domain.User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
		Role:      domain.RoleReader,
		Status:    domain.UserActive,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("id", u.ID))
	return u, nil
}

// Login 校验密码与账号状态，并记录最后登录时间
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !u.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	if u.Status != domain.UserActive {
		return nil, domain.ErrAccountInactive
	}
	now := s.now().UTC()
	u.LastLogin = &now
	if err := s.store.Users().Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save last login: %w", err)
	}
	return u, nil
}

// Profile 当前用户及借阅记录
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	loans, err := s.store.Loans().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	u.Loans = loans
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName, phone string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.Phone = phone
	if err := s.store.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next, confirm string) error {
	if next != confirm {
		return domain.ErrPasswordMismatch
	}
	if len(next) < domain.MinPasswordLen {
		return domain.NewValidationError(map[string]string{
			"newPassword": fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLen),
		})
	}
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	if !u.CheckPassword(current) {
		return domain.ErrWrongPassword
	}
	u.Password = next
	if err := s.store.Users().Save(ctx, u); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user", userID))
	return nil
}
