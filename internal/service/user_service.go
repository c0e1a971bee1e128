package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"library-catalog/internal/domain"
)

type UserService struct {
	store domain.Store
	log   *zap.Logger
}

func NewUserService(store domain.Store, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{store: store, log: log}
}

type UserQuery struct {
	Search string
	Role   domain.Role
	Status domain.UserStatus
	Page   int
	Limit  int
}

func (s *UserService) List(ctx context.Context, q UserQuery) (Page[domain.User], error) {
	offset, limit, page := PageArgs(q.Page, q.Limit)
	users, total, err := s.store.Users().List(ctx, domain.UserFilter{
		Search: q.Search, Role: q.Role, Status: q.Status,
		Offset: offset, Limit: limit,
	})
	if err != nil {
		return Page[domain.User]{}, err
	}
	return newPage(users, total, page, limit), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Details 用户及其借阅历史（含书目）
func (s *UserService) Details(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	u.Loans = loans
	return u, nil
}

func (s *UserService) Create(ctx context.Context, u *domain.User) error {
	u.ID = ""
	if err := s.store.Users().Create(ctx, u); err != nil {
		return err
	}
	s.log.Info("user created", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	return nil
}

// ForEdit 管理员不能在用户管理里编辑自己
func (s *UserService) ForEdit(ctx context.Context, actorID, id string) (*domain.User, error) {
	if actorID == id {
		return nil, domain.ErrSelfModification
	}
	return s.Get(ctx, id)
}

type UserPatch struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      domain.Role
	Status    domain.UserStatus
	Password  string // 为空则不改
}

func (s *UserService) Update(ctx context.Context, actorID, id string, p UserPatch) (*domain.User, error) {
	u, err := s.ForEdit(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Email = p.Email
	u.Phone = p.Phone
	u.Role = p.Role
	u.Status = p.Status
	u.Password = p.Password
	if err := s.store.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("id", id), zap.String("by", actorID))
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return domain.ErrSelfModification
	}
	ok, err := s.store.Users().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	s.log.Info("user deleted", zap.String("id", id), zap.String("by", actorID))
	return nil
}

// SetRole 运维命令用，按 email 定位
func (s *UserService) SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	u, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	if err := s.store.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
