package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"library-catalog/internal/domain"
)

type BookService struct {
	store domain.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewBookService(store domain.Store, log *zap.Logger) *BookService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookService{store: store, log: log, now: time.Now}
}

type BookQuery struct {
	Search string
	Genre  domain.Genre
	Year   int
	Status domain.BookStatus
	Page   int
	Limit  int
}

func (s *BookService) List(ctx context.Context, q BookQuery) (Page[domain.Book], error) {
	offset, limit, page := PageArgs(q.Page, q.Limit)
	books, total, err := s.store.Books().List(ctx, domain.BookFilter{
		Search: q.Search, Genre: q.Genre, Year: q.Year, Status: q.Status,
		Offset: offset, Limit: limit,
	})
	if err != nil {
		return Page[domain.Book]{}, err
	}
	return newPage(books, total, page, limit), nil
}

func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	b, err := s.store.Books().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	if b == nil {
		return nil, domain.ErrBookNotFound
	}
	return b, nil
}

// Create createdBy 为当前登录用户
func (s *BookService) Create(ctx context.Context, b *domain.Book, createdBy string) error {
	b.ID = ""
	if createdBy != "" {
		b.CreatedBy = &createdBy
	}
	if err := s.store.Books().Create(ctx, b); err != nil {
		return err
	}
	s.log.Info("book created", zap.String("id", b.ID), zap.String("isbn", b.ISBN), zap.String("by", createdBy))
	return nil
}

// Update 只覆盖可编辑字段；派生字段在保存时重算
func (s *BookService) Update(ctx context.Context, id string, in *domain.Book) (*domain.Book, error) {
	var out *domain.Book
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		b, err := tx.Books().FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("find book: %w", err)
		}
		if b == nil {
			return domain.ErrBookNotFound
		}
		b.Title = in.Title
		b.Author = in.Author
		b.Year = in.Year
		b.Genre = in.Genre
		b.Description = in.Description
		b.Image = in.Image
		b.ISBN = in.ISBN
		b.Status = in.Status
		b.Copies = in.Copies
		b.Publisher = in.Publisher
		b.Pages = in.Pages
		b.Language = in.Language
		if err := tx.Books().Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("book updated", zap.String("id", id))
	return out, nil
}

// Delete 借阅历史保留
func (s *BookService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Books().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !ok {
		return domain.ErrBookNotFound
	}
	s.log.Info("book deleted", zap.String("id", id))
	return nil
}

type HomeData struct {
	Recent []domain.Book
	Stats  domain.BookStats
}

func (s *BookService) Home(ctx context.Context) (HomeData, error) {
	recent, err := s.store.Books().Recent(ctx, 4)
	if err != nil {
		return HomeData{}, fmt.Errorf("recent books: %w", err)
	}
	stats, err := s.store.Books().Stats(ctx, s.now().Year())
	if err != nil {
		return HomeData{}, fmt.Errorf("book stats: %w", err)
	}
	return HomeData{Recent: recent, Stats: stats}, nil
}

// Years 筛选下拉框：最近 10 年
func (s *BookService) Years() []int {
	y := s.now().Year()
	out := make([]int, 10)
	for i := range out {
		out[i] = y - i
	}
	return out
}
