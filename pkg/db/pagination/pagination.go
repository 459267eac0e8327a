// Package pagination holds offset/limit paging shared by list endpoints.
package pagination

import "gorm.io/gorm"

const (
	defaultSize = 50
	maxSize     = 200
)

type Pagination struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

type PageInfo struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalCount int64 `json:"total_count"`
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Apply scopes a gorm query to the requested page.
func (p Pagination) Apply(tx *gorm.DB) *gorm.DB {
	n := p.normalized()
	return tx.Offset((n.Page - 1) * n.Size).Limit(n.Size)
}

func (p Pagination) PageInfo(total int64) *PageInfo {
	n := p.normalized()
	return &PageInfo{Page: n.Page, Size: n.Size, TotalCount: total}
}
