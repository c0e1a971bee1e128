// Package seed fills an empty catalog with demo accounts and books.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-catalog/internal/domain"
	"library-catalog/internal/repo"
)

// Account 演示账号，密码明文只用于打印
type Account struct {
	Email    string
	Password string
	Role     domain.Role
}

var Accounts = []Account{
	{Email: "admin@library.com", Password: "admin123", Role: domain.RoleAdmin},
	{Email: "librarian@library.com", Password: "librarian123", Role: domain.RoleLibrarian},
	{Email: "user@library.com", Password: "user123", Role: domain.RoleReader},
}

var names = map[string][2]string{
	"admin@library.com":     {"Адміністратор", "Системи"},
	"librarian@library.com": {"Бібліотекар", "Головний"},
	"user@library.com":      {"Іван", "Петренко"},
}

func books() []domain.Book {
	return []domain.Book{
		{
			Title:       "Я бачу, вас цікавить пітьма",
			Author:      "Ілларіон Павлюк",
			Year:        2020,
			Genre:       domain.GenreThriller,
			Description: "Трилер про загадкові події в сучасному світі та боротьбу з невідомим.",
			ISBN:        "9786177654231",
			Copies:      5,
		},
		{
			Title:       "Колонія",
			Author:      "Макс Кідрук",
			Year:        2023,
			Genre:       domain.GenreFantasy,
			Description: "Фантастичний роман про подорожі, технології та виживання у складних умовах.",
			ISBN:        "9786178026452",
			Copies:      3,
		},
		{
			Title:       "Тигролови",
			Author:      "Іван Багряний",
			Year:        1944,
			Genre:       domain.GenreClassic,
			Description: "Пригодницький роман про втечу з ешелону та життя в тайзі.",
			ISBN:        "9789660359971",
			Copies:      2,
		},
		{
			Title:       "Кобзар",
			Author:      "Тарас Шевченко",
			Year:        1840,
			Genre:       domain.GenrePoetry,
			Description: "Збірка поетичних творів.",
			ISBN:        "9789660350145",
			Copies:      4,
		},
		{
			Title:       "Захар Беркут",
			Author:      "Іван Франко",
			Year:        1883,
			Genre:       domain.GenreHistorical,
			Description: "Історична повість про громаду Тухольщини.",
			ISBN:        "9789661038516",
			Copies:      1,
		},
	}
}

type Result struct {
	Users int
	Books int
}

// Run 已存在的邮箱 / ISBN 跳过；reset 时先清空三张表
func Run(ctx context.Context, db *gorm.DB, reset bool, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if reset {
		if err := wipe(ctx, db); err != nil {
			return Result{}, err
		}
		log.Warn("catalog wiped")
	}

	store := repo.NewStore(db)
	var res Result
	var adminID string
	for _, a := range Accounts {
		n := names[a.Email]
		u := &domain.User{
			FirstName: n[0],
			LastName:  n[1],
			Email:     a.Email,
			Password:  a.Password,
			Role:      a.Role,
			Status:    domain.UserActive,
		}
		err := store.Users().Create(ctx, u)
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			existing, ferr := store.Users().FindByEmail(ctx, a.Email)
			if ferr != nil {
				return res, ferr
			}
			u = existing
		case err != nil:
			return res, fmt.Errorf("seed user %s: %w", a.Email, err)
		default:
			res.Users++
		}
		if a.Role == domain.RoleAdmin && u != nil {
			adminID = u.ID
		}
	}

	for _, b := range books() {
		if adminID != "" {
			b.CreatedBy = &adminID
		}
		err := store.Books().Create(ctx, &b)
		switch {
		case errors.Is(err, domain.ErrISBNTaken):
		case err != nil:
			return res, fmt.Errorf("seed book %s: %w", b.ISBN, err)
		default:
			res.Books++
		}
	}
	log.Info("seed done", zap.Int("users", res.Users), zap.Int("books", res.Books))
	return res, nil
}

func wipe(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&domain.Loan{}, &domain.Book{}, &domain.User{}} {
			if err := all.Delete(m).Error; err != nil {
				return fmt.Errorf("wipe %T: %w", m, err)
			}
		}
		return nil
	})
}
