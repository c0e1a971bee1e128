package domain

import (
	"time"

	"gorm.io/gorm"

	"library-catalog/pkg/utils"
)

// Loan 借阅记录只存一份；Book.Loans 与 User.Loans 都是它的查询视图
type Loan struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	BookID     string     `gorm:"size:36;not null;index:idx_loans_open,priority:1" json:"bookId"`
	UserID     string     `gorm:"size:36;not null;index;index:idx_loans_open,priority:2" json:"userId"`
	BorrowDate time.Time  `gorm:"not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"not null" json:"dueDate"`
	Returned   bool       `gorm:"not null;index:idx_loans_open,priority:3" json:"returned"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Book       *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = utils.NewID()
	}
	return nil
}

// Overdue 未归还且已过应还日期
func (l *Loan) Overdue(now time.Time) bool {
	return !l.Returned && now.After(l.DueDate)
}

func countOpenLoans(db *gorm.DB, bookID string) (int64, error) {
	var n int64
	err := db.Model(&Loan{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&n).Error
	return n, err
}

// DefaultLoanPeriod 借期 14 天
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Models 供 AutoMigrate 使用
func Models() []any { return []any{&User{}, &Book{}, &Loan{}} }
