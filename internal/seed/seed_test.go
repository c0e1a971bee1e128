package seed_test

import (
	"context"
	"testing"

	"library-catalog/internal/domain"
	"library-catalog/internal/repo"
	"library-catalog/internal/repo/repotest"
	"library-catalog/internal/seed"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := repotest.OpenDB(t)

	first, err := seed.Run(ctx, db, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Users != len(seed.Accounts) || first.Books == 0 {
		t.Fatalf("first run = %+v", first)
	}
	second, err := seed.Run(ctx, db, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Users != 0 || second.Books != 0 {
		t.Fatalf("second run created %+v, want nothing", second)
	}

	store := repo.NewStore(db)
	for _, a := range seed.Accounts {
		u, err := store.Users().FindByEmail(ctx, a.Email)
		if err != nil || u == nil {
			t.Fatalf("account %s missing: %v", a.Email, err)
		}
		if u.Role != a.Role || !u.CheckPassword(a.Password) {
			t.Errorf("account %s: role %s, password ok %v", a.Email, u.Role, u.CheckPassword(a.Password))
		}
	}

	admin, _ := store.Users().FindByEmail(ctx, "admin@library.com")
	books, total, err := store.Books().List(ctx, domain.BookFilter{Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if int(total) != first.Books {
		t.Fatalf("total books = %d, want %d", total, first.Books)
	}
	for _, b := range books {
		if b.CreatedBy == nil || *b.CreatedBy != admin.ID {
			t.Errorf("book %q createdBy = %v", b.Title, b.CreatedBy)
		}
		if b.AvailableCopies != b.Copies || b.Status != domain.BookAvailable {
			t.Errorf("book %q: available %d/%d status %s", b.Title, b.AvailableCopies, b.Copies, b.Status)
		}
	}
}

func TestRunResetWipesExistingData(t *testing.T) {
	ctx := context.Background()
	db := repotest.OpenDB(t)
	store := repo.NewStore(db)

	extra := repotest.User("someone@example.com", domain.RoleReader)
	if err := store.Users().Create(ctx, extra); err != nil {
		t.Fatal(err)
	}
	if _, err := seed.Run(ctx, db, true, nil); err != nil {
		t.Fatal(err)
	}
	u, err := store.Users().FindByEmail(ctx, extra.Email)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Fatal("reset kept a pre-existing user")
	}
}
