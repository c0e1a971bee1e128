package domain

import "context"

// 查询不到时返回 (nil, nil)，由调用方决定映射成哪种 NotFound

type BookRepository interface {
	Create(ctx context.Context, b *Book) error
	Save(ctx context.Context, b *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	// FindByIDForUpdate 在事务内加行锁读取（驱动支持时）
	FindByIDForUpdate(ctx context.Context, id string) (*Book, error)
	List(ctx context.Context, f BookFilter) ([]Book, int64, error)
	Recent(ctx context.Context, n int) ([]Book, error)
	Stats(ctx context.Context, year int) (BookStats, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type LoanRepository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	// FindOpen 查找 (book, user) 的未归还借阅
	FindOpen(ctx context.Context, bookID, userID string) (*Loan, error)
	ListByUser(ctx context.Context, userID string) ([]Loan, error)
	ListByBook(ctx context.Context, bookID string) ([]Loan, error)
}

// Store 聚合仓储；Transaction 内的 Store 绑定同一个事务
type Store interface {
	Books() BookRepository
	Users() UserRepository
	Loans() LoanRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
