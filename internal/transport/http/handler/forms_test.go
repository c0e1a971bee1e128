package handler

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"library-catalog/internal/domain"
)

func validBookForm() BookForm {
	return BookForm{
		Title:  "Кайдашева сім'я",
		Author: "Іван Нечуй-Левицький",
		Year:   "1879",
		Genre:  string(domain.GenreClassic),
		ISBN:   "9789660000006",
	}
}

func TestBookFormDefaults(t *testing.T) {
	b, err := validBookForm().Book()
	if err != nil {
		t.Fatal(err)
	}
	if b.Copies != 1 || b.Pages != nil || b.Status != domain.BookAvailable || b.Language != domain.DefaultLanguage {
		t.Fatalf("defaults = copies %d pages %v status %s language %s", b.Copies, b.Pages, b.Status, b.Language)
	}
}

func TestBookFormParsesNumbers(t *testing.T) {
	f := validBookForm()
	f.Copies = " 3 "
	f.Pages = "320"
	b, err := f.Book()
	if err != nil {
		t.Fatal(err)
	}
	if b.Copies != 3 || b.Pages == nil || *b.Pages != 320 || b.Year != 1879 {
		t.Fatalf("parsed = %+v", b)
	}
}

func TestBookFormReportsEveryField(t *testing.T) {
	f := validBookForm()
	f.Title = " "
	f.Year = "19x"
	f.Copies = "-1"
	f.ISBN = "12345"
	_, err := f.Book()
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("want validation error, got %v", err)
	}
	for _, k := range []string{"title", "year", "copies", "isbn"} {
		if ve.Fields[k] == "" {
			t.Errorf("no message for %s in %v", k, ve.Fields)
		}
	}
	if ve.Fields["year"] != "year must be a whole number" {
		t.Errorf("year message = %q", ve.Fields["year"])
	}
}

func TestBookFormRoundTrip(t *testing.T) {
	pages := 100
	b := &domain.Book{Title: "T", Year: 2001, Copies: 2, Pages: &pages, Status: domain.BookReserved}
	f := bookFormOf(b)
	if f.Year != "2001" || f.Copies != "2" || f.Pages != "100" || f.Status != "reserved" {
		t.Fatalf("form = %+v", f)
	}
}

func TestUserFormEchoDropsPassword(t *testing.T) {
	f := UserForm{Email: "a@b.c", Password: "secret123"}.Echo()
	if f.Password != "" || f.Email != "a@b.c" {
		t.Fatalf("echo = %+v", f)
	}
}

func TestListQueryKeepsFiltersOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/books?search=+kobzar+&genre=&page=3&year=1840", nil)

	q := listQuery(c, "search", "genre", "year")
	want := url.Values{"search": {"kobzar"}, "year": {"1840"}}
	if q.Encode() != want.Encode() {
		t.Fatalf("query = %s, want %s", q.Encode(), want.Encode())
	}
	if queryInt(c, "page") != 3 || queryInt(c, "limit") != 0 {
		t.Fatal("queryInt")
	}
}
