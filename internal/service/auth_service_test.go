package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-catalog/internal/domain"
	"library-catalog/internal/repo/repotest"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore(t)
	svc := NewAuthService(store, nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	u, err := svc.Register(ctx, Registration{
		FirstName: "Ірина", LastName: "Шевчук", Email: "Iryna@Example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != domain.RoleReader || u.Email != "iryna@example.com" {
		t.Fatalf("registered user = %+v", u)
	}
	if _, err := svc.Register(ctx, Registration{FirstName: "A", LastName: "B", Email: "iryna@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	_, err = svc.Register(ctx, Registration{FirstName: "A", LastName: "B", Email: "short@example.com", Password: "123"})
	if ve, ok := domain.AsValidation(err); !ok || ve.Fields["password"] == "" {
		t.Fatalf("want password validation error, got %v", err)
	}

	if _, err := svc.Login(ctx, "iryna@example.com", "wrong!!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}

	got, err := svc.Login(ctx, "IRYNA@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(fixed) {
		t.Fatalf("last login = %v", got.LastLogin)
	}
	stored, _ := store.Users().FindByID(ctx, u.ID)
	if stored.LastLogin == nil || !stored.LastLogin.Equal(fixed) {
		t.Fatalf("stored last login = %v", stored.LastLogin)
	}
}

func TestLoginRejectsInactiveAccounts(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore(t)
	svc := NewAuthService(store, nil)
	for _, st := range []domain.UserStatus{domain.UserInactive, domain.UserSuspended} {
		u := repotest.User(string(st)+"@library.com", domain.RoleReader)
		u.Status = st
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Login(ctx, u.Email, "secret123"); !errors.Is(err, domain.ErrAccountInactive) {
			t.Fatalf("%s: want ErrAccountInactive, got %v", st, err)
		}
	}
}

func TestProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore(t)
	svc := NewAuthService(store, nil)
	u := repotest.User("p@library.com", domain.RoleReader)
	if err := store.Users().Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	upd, err := svc.UpdateProfile(ctx, u.ID, "Нове", "Ім'я", "+380 (44) 123-45-67")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if upd.FirstName != "Нове" || upd.Phone != "+380 (44) 123-45-67" {
		t.Fatalf("profile = %+v", upd)
	}
	_, err = svc.UpdateProfile(ctx, u.ID, "Нове", "Ім'я", "call me")
	if ve, ok := domain.AsValidation(err); !ok || ve.Fields["phone"] == "" {
		t.Fatalf("want phone validation error, got %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "secret123", "newpass1", "newpass2"); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("mismatch: %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "nope", "newpass1", "newpass1"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("wrong current: %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret123", "abc", "abc"); err == nil {
		t.Fatal("short password accepted")
	}
	if err := svc.ChangePassword(ctx, u.ID, "secret123", "newpass1", "newpass1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "p@library.com", "newpass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	p, err := svc.Profile(ctx, u.ID)
	if err != nil || p.ID != u.ID || len(p.Loans) != 0 {
		t.Fatalf("profile: %v %v", p, err)
	}
	if _, err := svc.Profile(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing profile: %v", err)
	}
}
