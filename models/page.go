package models

const (
	DefaultPage     = 1
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// PageRequest 分页参数
type PageRequest struct {
	Page     int64 `form:"page"`
	PageSize int64 `form:"page_size"`
}

// Normalize 补全默认值并限制页大小
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Skip 偏移量
func (p PageRequest) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Page 分页结果
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	PageSize   int64 `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

// NewPage 组装分页结果，总页数向上取整
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
	}
}
