package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"library-catalog/internal/domain"
	"library-catalog/internal/repo"
	"library-catalog/internal/repo/repotest"
)

type loanFixture struct {
	store *repo.Store
	svc   *LoanService
	book  *domain.Book
	alice *domain.User
	bob   *domain.User
	clock time.Time
}

func newLoanFixture(t *testing.T, copies int) *loanFixture {
	t.Helper()
	return newLoanFixtureOn(t, repotest.NewStore(t), copies)
}

func newLoanFixtureOn(t *testing.T, store *repo.Store, copies int) *loanFixture {
	t.Helper()
	ctx := context.Background()
	f := &loanFixture{store: store, clock: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	f.svc = NewLoanService(f.store, 0, nil)
	f.svc.now = func() time.Time { return f.clock }

	f.book = repotest.Book("Тіні забутих предків", "9786177654231", copies)
	f.alice = repotest.User("alice@library.com", domain.RoleReader)
	f.bob = repotest.User("bob@library.com", domain.RoleReader)
	if err := f.store.Books().Create(ctx, f.book); err != nil {
		t.Fatal(err)
	}
	for _, u := range []*domain.User{f.alice, f.bob} {
		if err := f.store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *loanFixture) reload(t *testing.T) *domain.Book {
	t.Helper()
	b, err := f.store.Books().FindByID(context.Background(), f.book.ID)
	if err != nil || b == nil {
		t.Fatalf("reload book: %v", err)
	}
	return b
}

func (f *loanFixture) openLoans(t *testing.T) int {
	t.Helper()
	loans, err := f.svc.BookLoans(context.Background(), f.book.ID)
	if err != nil {
		t.Fatalf("book loans: %v", err)
	}
	n := 0
	for _, l := range loans {
		if !l.Returned {
			n++
		}
	}
	return n
}

func TestBorrowSingleCopy(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 1)
	if !f.book.IsAvailable() {
		t.Fatal("new book with one copy should be available")
	}

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if got := loan.DueDate.Sub(loan.BorrowDate); got != 14*24*time.Hour {
		t.Fatalf("loan period = %v", got)
	}
	if loan.Returned || loan.ReturnDate != nil {
		t.Fatalf("fresh loan marked returned: %+v", loan)
	}

	b := f.reload(t)
	if b.AvailableCopies != 0 || b.Status != domain.BookBorrowed {
		t.Fatalf("after borrow: %d %s", b.AvailableCopies, b.Status)
	}

	// 书侧与用户侧看到的是同一条记录
	byBook, _ := f.store.Loans().ListByBook(ctx, f.book.ID)
	byUser, _ := f.store.Loans().ListByUser(ctx, f.alice.ID)
	if len(byBook) != 1 || len(byUser) != 1 || byBook[0].ID != byUser[0].ID {
		t.Fatalf("loan views diverge: %d %d", len(byBook), len(byUser))
	}
	if byUser[0].Book == nil || byUser[0].Book.Title != f.book.Title {
		t.Fatalf("user view missing book: %+v", byUser[0].Book)
	}
	if byBook[0].User == nil || byBook[0].User.Email != "alice@library.com" {
		t.Fatalf("book view missing user: %+v", byBook[0].User)
	}

	if _, err := f.svc.Borrow(ctx, f.book.ID, f.bob.ID); !errors.Is(err, domain.ErrBookUnavailable) {
		t.Fatalf("second borrower: want ErrBookUnavailable, got %v", err)
	}
}

func TestBorrowRejectsDuplicateActiveLoan(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 3)
	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); !errors.Is(err, domain.ErrAlreadyBorrowed) {
		t.Fatalf("want ErrAlreadyBorrowed, got %v", err)
	}
	if n := f.openLoans(t); n != 1 {
		t.Fatalf("open loans = %d", n)
	}
	if b := f.reload(t); b.AvailableCopies != 2 || b.Status != domain.BookAvailable {
		t.Fatalf("after duplicate: %d %s", b.AvailableCopies, b.Status)
	}
}

func TestConcurrentBorrowBySameUser(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixtureOn(t, repo.NewStore(repotest.OpenFileDB(t)), 3)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.Borrow(ctx, f.book.ID, f.alice.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyBorrowed):
			dup++
		default:
			t.Errorf("unexpected borrow error: %v", err)
		}
	}
	if ok != 1 || dup != n-1 {
		t.Fatalf("successes=%d duplicates=%d", ok, dup)
	}
	if c := f.openLoans(t); c != 1 {
		t.Fatalf("open loans = %d", c)
	}
	if b := f.reload(t); b.AvailableCopies != 2 {
		t.Fatalf("availableCopies = %d, want 2", b.AvailableCopies)
	}
}

func TestBorrowRejectsNonAvailableStatus(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 2)
	f.book.Status = domain.BookMaintenance
	if err := f.store.Books().Save(ctx, f.book); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); !errors.Is(err, domain.ErrBookUnavailable) {
		t.Fatalf("want ErrBookUnavailable, got %v", err)
	}
}

func TestBorrowMissingRecords(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 1)
	if _, err := f.svc.Borrow(ctx, "missing", f.alice.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}
	if _, err := f.svc.Borrow(ctx, f.book.ID, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if n := f.openLoans(t); n != 0 {
		t.Fatalf("failed borrow left a loan behind")
	}
}

func TestReturn(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 1)
	if _, err := f.svc.Return(ctx, f.book.ID, f.alice.ID); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("return without loan: want ErrLoanNotFound, got %v", err)
	}

	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); err != nil {
		t.Fatal(err)
	}
	f.clock = f.clock.Add(3 * 24 * time.Hour)
	loan, err := f.svc.Return(ctx, f.book.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if !loan.Returned || loan.ReturnDate == nil || !loan.ReturnDate.Equal(f.clock) {
		t.Fatalf("returned loan = %+v", loan)
	}

	byBook, _ := f.store.Loans().ListByBook(ctx, f.book.ID)
	byUser, _ := f.store.Loans().ListByUser(ctx, f.alice.ID)
	if !byBook[0].Returned || !byUser[0].Returned {
		t.Fatal("views disagree on returned flag")
	}
	if !byBook[0].ReturnDate.Equal(*byUser[0].ReturnDate) {
		t.Fatal("views disagree on return date")
	}

	if b := f.reload(t); b.AvailableCopies != 1 || b.Status != domain.BookAvailable {
		t.Fatalf("after return: %d %s", b.AvailableCopies, b.Status)
	}

	if _, err := f.svc.Return(ctx, f.book.ID, f.alice.ID); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("double return: want ErrLoanNotFound, got %v", err)
	}
	// 历史保留，可再次借阅
	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); err != nil {
		t.Fatalf("borrow again: %v", err)
	}
	if all, _ := f.store.Loans().ListByUser(ctx, f.alice.ID); len(all) != 2 {
		t.Fatalf("history = %d loans", len(all))
	}
}

func TestLoanPeriodFromConfig(t *testing.T) {
	if p := NewLoanService(nil, 7, nil).Period(); p != 7*24*time.Hour {
		t.Fatalf("period = %v", p)
	}
	if p := NewLoanService(nil, 0, nil).Period(); p != domain.DefaultLoanPeriod {
		t.Fatalf("default period = %v", p)
	}
}

func TestOpenBookIDs(t *testing.T) {
	ctx := context.Background()
	f := newLoanFixture(t, 2)
	ids, err := f.svc.OpenBookIDs(ctx, f.alice.ID)
	if err != nil || len(ids) != 0 {
		t.Fatalf("before borrow: %v %v", ids, err)
	}
	if _, err := f.svc.Borrow(ctx, f.book.ID, f.alice.ID); err != nil {
		t.Fatal(err)
	}
	ids, _ = f.svc.OpenBookIDs(ctx, f.alice.ID)
	if !ids[f.book.ID] {
		t.Fatalf("borrowed book missing: %v", ids)
	}
	if _, err := f.svc.Return(ctx, f.book.ID, f.alice.ID); err != nil {
		t.Fatal(err)
	}
	ids, _ = f.svc.OpenBookIDs(ctx, f.alice.ID)
	if ids[f.book.ID] {
		t.Fatalf("returned book still open: %v", ids)
	}
}
