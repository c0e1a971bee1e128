package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-catalog/internal/domain"
)

type LoanRepo struct{ db *gorm.DB }

func NewLoanRepo(db *gorm.DB) *LoanRepo { return &LoanRepo{db: db} }

func (r *LoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *LoanRepo) Save(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepo) FindOpen(ctx context.Context, bookID, userID string) (*domain.Loan, error) {
	var l domain.Loan
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ? AND returned = ?", bookID, userID, false).
		Order("borrow_date").
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByUser 用户的借阅历史（含书目），最新在前
func (r *LoanRepo) ListByUser(ctx context.Context, userID string) ([]domain.Loan, error) {
	var ls []domain.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("borrow_date DESC").
		Find(&ls).Error
	return ls, err
}

// ListByBook 书的借阅历史（含读者），最新在前
func (r *LoanRepo) ListByBook(ctx context.Context, bookID string) ([]domain.Loan, error) {
	var ls []domain.Loan
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", bookID).
		Order("borrow_date DESC").
		Find(&ls).Error
	return ls, err
}
