package utils

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page 分页返回体
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

// Paging 归一化后的分页参数
type Paging struct {
	Page  int
	Limit int
}

func NewPaging(page, limit int) Paging {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Paging{Page: page, Limit: limit}
}

func (p Paging) Offset() int { return (p.Page - 1) * p.Limit }

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func NewPage[T any](items []T, total int64, p Paging) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := TotalPages(total, p.Limit)
	out := Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
	if p.Page < pages {
		n := p.Page + 1
		out.NextPage = &n
	}
	if p.Page > 1 {
		n := p.Page - 1
		out.PrevPage = &n
	}
	return out
}
