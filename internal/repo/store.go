package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"library-catalog/internal/domain"
)

// Store 基于同一个 *gorm.DB 的仓储集合
type Store struct {
	db    *gorm.DB
	books *BookRepo
	users *UserRepo
	loans *LoanRepo
}

var _ domain.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		books: NewBookRepo(db),
		users: NewUserRepo(db),
		loans: NewLoanRepo(db),
	}
}

func (s *Store) Books() domain.BookRepository { return s.books }
func (s *Store) Users() domain.UserRepository { return s.users }
func (s *Store) Loans() domain.LoanRepository { return s.loans }

func (s *Store) Transaction(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的驱动兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func pageArgs(offset, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// likeArg 配合 "LIKE ? ESCAPE '!'"（mysql/postgres/sqlite 通用）
func likeArg(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(s))) + "%"
}
