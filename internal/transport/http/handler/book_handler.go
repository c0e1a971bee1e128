package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-catalog/internal/domain"
	"library-catalog/internal/service"
	"library-catalog/internal/transport/http/web"
)

type BookHandler struct {
	books *service.BookService
	loans *service.LoanService
}

func NewBookHandler(books *service.BookService, loans *service.LoanService) *BookHandler {
	return &BookHandler{books: books, loans: loans}
}

func (h *BookHandler) List(c *gin.Context) {
	q := service.BookQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Genre:  domain.Genre(c.Query("genre")),
		Year:   queryInt(c, "year"),
		Status: domain.BookStatus(c.Query("status")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	page, err := h.books.List(c.Request.Context(), q)
	if err != nil {
		web.Logger(c).Error("list books failed", zap.Error(err))
		web.ServerError(c, "Could not load the book list.")
		return
	}

	borrowed := map[string]bool{}
	if u := web.CurrentUser(c); u != nil {
		if borrowed, err = h.loans.OpenBookIDs(c.Request.Context(), u.ID); err != nil {
			web.Logger(c).Warn("load open loans failed", zap.Error(err))
			borrowed = map[string]bool{}
		}
	}

	web.Render(c, http.StatusOK, "books", gin.H{
		"title":          "Books",
		"page":           page,
		"base":           "/books",
		"query":          listQuery(c, "search", "genre", "year", "status", "limit"),
		"search":         q.Search,
		"selectedGenre":  c.Query("genre"),
		"selectedYear":   c.Query("year"),
		"selectedStatus": c.Query("status"),
		"genres":         domain.Genres,
		"years":          h.books.Years(),
		"statuses":       domain.BookStatuses,
		"borrowed":       borrowed,
		"loanDays":       int(h.loans.Period().Hours() / 24),
	})
}

func (h *BookHandler) form(title, action string, f BookForm) *web.Form {
	return &web.Form{Template: "book-form", Data: gin.H{
		"title":     title,
		"action":    action,
		"form":      f,
		"genres":    domain.Genres,
		"statuses":  domain.BookStatuses,
		"languages": domain.Languages,
	}}
}

func (h *BookHandler) CreateForm(c *gin.Context) {
	f := h.form("Add a new book", "/books/create", newBookForm())
	web.Render(c, http.StatusOK, f.Template, f.Data)
}

func (h *BookHandler) Create(c *gin.Context) {
	var in BookForm
	_ = c.ShouldBind(&in)
	form := h.form("Add a new book", "/books/create", in)

	b, err := in.Book()
	if err == nil {
		err = h.books.Create(c.Request.Context(), b, web.CurrentUser(c).ID)
	}
	if err != nil {
		web.Fail(c, err, "/books", "Could not add the book.", form)
		return
	}
	web.FlashSuccess(c, "Book added successfully!")
	web.Redirect(c, "/books")
}

func (h *BookHandler) EditForm(c *gin.Context) {
	id := c.Param("id")
	b, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		web.Fail(c, err, "/books", "Could not load the book.", nil)
		return
	}
	f := h.form("Edit book", "/books/edit/"+id, bookFormOf(b))
	loans, err := h.loans.BookLoans(c.Request.Context(), id)
	if err != nil {
		web.Logger(c).Warn("load book loans failed", zap.Error(err))
	}
	f.Data["loans"] = loans
	web.Render(c, http.StatusOK, f.Template, f.Data)
}

func (h *BookHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var in BookForm
	_ = c.ShouldBind(&in)
	form := h.form("Edit book", "/books/edit/"+id, in)

	b, err := in.Book()
	if err == nil {
		_, err = h.books.Update(c.Request.Context(), id, b)
	}
	if err != nil {
		web.Fail(c, err, "/books", "Could not update the book.", form)
		return
	}
	web.FlashSuccess(c, "Book updated successfully!")
	web.Redirect(c, "/books")
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		web.Fail(c, err, "/books", "Could not delete the book.", nil)
		return
	}
	web.FlashSuccess(c, "Book deleted successfully!")
	web.Redirect(c, "/books")
}

func (h *BookHandler) Borrow(c *gin.Context) {
	loan, err := h.loans.Borrow(c.Request.Context(), c.Param("id"), web.CurrentUser(c).ID)
	if err != nil {
		web.Fail(c, err, "/books", "Could not borrow the book.", nil)
		return
	}
	web.FlashSuccess(c, "Book borrowed! Due date: "+loan.DueDate.Format("02.01.2006"))
	web.Redirect(c, "/books")
}

func (h *BookHandler) Return(c *gin.Context) {
	if _, err := h.loans.Return(c.Request.Context(), c.Param("id"), web.CurrentUser(c).ID); err != nil {
		web.Fail(c, err, "/books", "Could not return the book.", nil)
		return
	}
	web.FlashSuccess(c, "Book returned successfully!")
	web.Redirect(c, "/books")
}
