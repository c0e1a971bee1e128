// Package repotest opens throwaway in-memory SQLite stores for tests.
package repotest

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"library-catalog/internal/core/database"
	"library-catalog/internal/domain"
	"library-catalog/internal/repo"
)

var seq atomic.Int64

func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))
	return open(t, dsn, 1)
}

// OpenFileDB 临时目录里的 SQLite 文件，连接池不设上限，用于并发测试
func OpenFileDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "library.db") + "?_foreign_keys=on"
	return open(t, dsn, 0)
}

func open(t testing.TB, dsn string, maxOpen int) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent", MaxOpenConns: maxOpen})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewStore(t testing.TB) *repo.Store {
	t.Helper()
	return repo.NewStore(OpenDB(t))
}

func Book(title, isbn string, copies int) *domain.Book {
	return &domain.Book{
		Title:  title,
		Author: "Test Author",
		Year:   2020,
		Genre:  domain.GenreNovel,
		ISBN:   isbn,
		Copies: copies,
	}
}

func User(email string, role domain.Role) *domain.User {
	return &domain.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "secret123",
		Role:      role,
	}
}
