package database

import "gorm.io/gorm"

const (
	// DefaultPageSize is applied when the caller passes limit <= 0.
	DefaultPageSize = 10
	// MaxPageSize caps the per-page row count regardless of input.
	MaxPageSize = 50
)

// Pagination is the metadata block attached to every paginated listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Clamp normalises page/limit into the allowed ranges.
func Clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Paginate counts the rows matched by query, applies LIMIT/OFFSET, scans the
// page into dest and returns the filled Pagination block. query must already
// carry its Model and Where clauses.
func Paginate(query *gorm.DB, page, limit int, dest interface{}) (Pagination, error) {
	page, limit = Clamp(page, limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * limit
	if err := query.Limit(limit).Offset(offset).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}
