package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"library-catalog/internal/core/validate"
	"library-catalog/pkg/utils"
)

type Genre string

const (
	GenreThriller   Genre = "трилер"
	GenreFantasy    Genre = "фантастика"
	GenreHistorical Genre = "історичний"
	GenreDrama      Genre = "драма"
	GenreClassic    Genre = "класика"
	GenreNovel      Genre = "роман"
	GenrePoetry     Genre = "поезія"
	GenreDetective  Genre = "детектив"
	GenreBiography  Genre = "біографія"
	GenreScience    Genre = "наукова"
)

var Genres = []Genre{
	GenreThriller, GenreFantasy, GenreHistorical, GenreDrama, GenreClassic,
	GenreNovel, GenrePoetry, GenreDetective, GenreBiography, GenreScience,
}

var genreLabels = map[Genre]string{
	GenreThriller:   "Thriller",
	GenreFantasy:    "Science fiction",
	GenreHistorical: "Historical",
	GenreDrama:      "Drama",
	GenreClassic:    "Classics",
	GenreNovel:      "Novel",
	GenrePoetry:     "Poetry",
	GenreDetective:  "Detective",
	GenreBiography:  "Biography",
	GenreScience:    "Popular science",
}

// Label 界面显示名；库里仍存原值
func (g Genre) Label() string {
	if l, ok := genreLabels[g]; ok {
		return l
	}
	return string(g)
}

type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookBorrowed    BookStatus = "borrowed"
	BookReserved    BookStatus = "reserved"
	BookMaintenance BookStatus = "maintenance"
)

var BookStatuses = []BookStatus{BookAvailable, BookBorrowed, BookReserved, BookMaintenance}

func (s BookStatus) Label() string {
	switch s {
	case BookAvailable:
		return "Available"
	case BookBorrowed:
		return "On loan"
	case BookReserved:
		return "Reserved"
	case BookMaintenance:
		return "Under maintenance"
	}
	return string(s)
}

const DefaultLanguage = "українська"

var Languages = []string{"українська", "російська", "англійська", "польська", "німецька"}

var languageLabels = map[string]string{
	"українська": "Ukrainian",
	"російська":  "Russian",
	"англійська": "English",
	"польська":   "Polish",
	"німецька":   "German",
}

func LanguageLabel(lang string) string {
	if l, ok := languageLabels[lang]; ok {
		return l
	}
	return lang
}

type Book struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title" validate:"required"`
	Author          string     `gorm:"size:255;not null;index" json:"author" validate:"required"`
	Year            int        `gorm:"not null" json:"year" validate:"required,min=1000,notfuture"`
	Genre           Genre      `gorm:"size:32;not null;index" json:"genre" validate:"required,oneof=трилер фантастика історичний драма класика роман поезія детектив біографія наукова"`
	Description     string     `gorm:"type:text" json:"description"`
	Image           string     `gorm:"size:1024" json:"image"`
	ISBN            string     `gorm:"column:isbn;size:13;uniqueIndex;not null" json:"isbn" validate:"isbn"`
	Status          BookStatus `gorm:"size:16;not null;index" json:"status" validate:"oneof=available borrowed reserved maintenance"`
	Copies          int        `gorm:"not null" json:"copies" validate:"min=0"`
	AvailableCopies int        `gorm:"not null" json:"availableCopies" validate:"min=0"`
	Publisher       string     `gorm:"size:255" json:"publisher"`
	Pages           *int       `json:"pages,omitempty" validate:"omitempty,min=1"`
	Language        string     `gorm:"size:32" json:"language"`
	CreatedBy       *string    `gorm:"size:36;index" json:"createdBy,omitempty"`
	Loans           []Loan     `gorm:"foreignKey:BookID" json:"loans,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

// IsAvailable 可借：有剩余副本且状态为 available
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0 && b.Status == BookAvailable
}

// Recompute 根据未归还借阅数重算 AvailableCopies / Status。
// reserved / maintenance 只在副本耗尽时被覆盖为 borrowed。
func (b *Book) Recompute(openLoans int) {
	b.AvailableCopies = max(0, b.Copies-openLoans)
	switch {
	case b.AvailableCopies == 0:
		b.Status = BookBorrowed
	case b.Status == BookBorrowed:
		b.Status = BookAvailable
	}
}

func (b *Book) normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Description = strings.TrimSpace(b.Description)
	b.Image = strings.TrimSpace(b.Image)
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Publisher = strings.TrimSpace(b.Publisher)
	if b.Status == "" {
		b.Status = BookAvailable
	}
	if b.Language == "" {
		b.Language = DefaultLanguage
	}
}

// Validate 只做字段规则校验，不访问数据库
func (b *Book) Validate() error {
	b.normalize()
	fields := validate.Struct(b)
	if _, ok := fields["genre"]; ok && b.Genre != "" {
		fields["genre"] = "genre must be one of the catalog genres"
	}
	return NewValidationError(fields)
}

// BeforeSave 每次保存前校验并重算派生字段（与借阅写入处于同一事务）
func (b *Book) BeforeSave(tx *gorm.DB) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = utils.NewID()
	}
	open, err := countOpenLoans(tx.Session(&gorm.Session{NewDB: true}), b.ID)
	if err != nil {
		return err
	}
	b.Recompute(int(open))
	return nil
}

type BookFilter struct {
	Search string
	Genre  Genre
	Year   int
	Status BookStatus
	Offset int
	Limit  int
}

type BookStats struct {
	Total     int64
	Available int64
	New       int64 // 当年出版
}
