package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"library-catalog/internal/domain"
)

// LoanService 借还书；借阅记录与书目重算在同一事务内完成
type LoanService struct {
	store  domain.Store
	period time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewLoanService(store domain.Store, days int, log *zap.Logger) *LoanService {
	period := domain.DefaultLoanPeriod
	if days > 0 {
		period = time.Duration(days) * 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LoanService{store: store, period: period, log: log, now: time.Now}
}

func (s *LoanService) Period() time.Duration { return s.period }

// Borrow 书和用户都须存在、书可借、该用户没有未还的同一本书
func (s *LoanService) Borrow(ctx context.Context, bookID, userID string) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		book, _, err := lockPair(ctx, tx, bookID, userID)
		if err != nil {
			return err
		}
		if !book.IsAvailable() {
			return domain.ErrBookUnavailable
		}
		open, err := tx.Loans().FindOpen(ctx, bookID, userID)
		if err != nil {
			return fmt.Errorf("find open loan: %w", err)
		}
		if open != nil {
			return domain.ErrAlreadyBorrowed
		}

		now := s.now().UTC()
		l := &domain.Loan{
			BookID:     bookID,
			UserID:     userID,
			BorrowDate: now,
			DueDate:    now.Add(s.period),
		}
		if err := tx.Loans().Create(ctx, l); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		// 重新保存触发 availableCopies / status 重算
		if err := tx.Books().Save(ctx, book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("book borrowed",
		zap.String("book", bookID), zap.String("user", userID), zap.Time("due", loan.DueDate))
	return loan, nil
}

// Return 找不到未还的借阅记录时返回 ErrLoanNotFound
func (s *LoanService) Return(ctx context.Context, bookID, userID string) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.store.Transaction(ctx, func(tx domain.Store) error {
		book, _, err := lockPair(ctx, tx, bookID, userID)
		if err != nil {
			return err
		}
		l, err := tx.Loans().FindOpen(ctx, bookID, userID)
		if err != nil {
			return fmt.Errorf("find open loan: %w", err)
		}
		if l == nil {
			return domain.ErrLoanNotFound
		}

		now := s.now().UTC()
		l.Returned = true
		l.ReturnDate = &now
		if err := tx.Loans().Save(ctx, l); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if err := tx.Books().Save(ctx, book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("book returned", zap.String("book", bookID), zap.String("user", userID))
	return loan, nil
}

// lockPair 先锁书再查用户，保证同一本书的借还串行
func lockPair(ctx context.Context, tx domain.Store, bookID, userID string) (*domain.Book, *domain.User, error) {
	book, err := tx.Books().FindByIDForUpdate(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("find book: %w", err)
	}
	if book == nil {
		return nil, nil, domain.ErrBookNotFound
	}
	user, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	return book, user, nil
}

// BookLoans 书的借阅历史，编辑页展示给馆员
func (s *LoanService) BookLoans(ctx context.Context, bookID string) ([]domain.Loan, error) {
	loans, err := s.store.Loans().ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// OpenBookIDs 用户当前未还的书，列表页据此显示“归还”按钮
func (s *LoanService) OpenBookIDs(ctx context.Context, userID string) (map[string]bool, error) {
	out := map[string]bool{}
	if userID == "" {
		return out, nil
	}
	loans, err := s.store.Loans().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	for _, l := range loans {
		if !l.Returned {
			out[l.BookID] = true
		}
	}
	return out, nil
}
