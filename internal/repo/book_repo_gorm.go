package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-catalog/internal/core/database"
	"library-catalog/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(ctx context.Context, b *domain.Book) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
	if err != nil && isDupKey(err) {
		return domain.ErrISBNTaken
	}
	return err
}

// Save 全字段更新；关联（Loans）不随 Book 写入
func (r *BookRepo) Save(ctx context.Context, b *domain.Book) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
	if err != nil && isDupKey(err) {
		return domain.ErrISBNTaken
	}
	return err
}

func (r *BookRepo) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *BookRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Book, error) {
	q := r.db.WithContext(ctx)
	if database.SupportsRowLocks(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(q, id)
}

func (r *BookRepo) first(q *gorm.DB, id string) (*domain.Book, error) {
	var b domain.Book
	err := q.First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) List(ctx context.Context, f domain.BookFilter) ([]domain.Book, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Book{})
	if f.Search != "" {
		like := likeArg(f.Search)
		q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", like, like, like)
	}
	if f.Genre != "" {
		q = q.Where("genre = ?", f.Genre)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	offset, limit := pageArgs(f.Offset, f.Limit)
	var books []domain.Book
	if err := q.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

func (r *BookRepo) Recent(ctx context.Context, n int) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Limit(n).Find(&books).Error
	return books, err
}

func (r *BookRepo) Stats(ctx context.Context, year int) (domain.BookStats, error) {
	var s domain.BookStats
	db := r.db.WithContext(ctx).Model(&domain.Book{})
	if err := db.Count(&s.Total).Error; err != nil {
		return s, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Book{}).Where("status = ?", domain.BookAvailable).Count(&s.Available).Error; err != nil {
		return s, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.Book{}).Where("year = ?", year).Count(&s.New).Error; err != nil {
		return s, err
	}
	return s, nil
}

func (r *BookRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
