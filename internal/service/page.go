package service

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page 列表页结果；Page 从 1 开始
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// PageArgs 把 page/limit 规整为 offset/limit
func PageArgs(page, limit int) (offset, size, current int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return (page - 1) * limit, limit, page
}

func newPage[T any](items []T, total int64, page, limit int) Page[T] {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}
