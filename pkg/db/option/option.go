package option

import (
	"strconv"

	"github.com/ratewatchlabs/ratewatch/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm query before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyPagination pushes the cursor filter and page window into the query:
// rows strictly after the cursor id, ascending, one past the page size so
// the caller can tell whether another page exists.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		limit := page.PageSize
		if limit <= 0 {
			limit = 50
		}
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor.ID != "" {
				if id, err := strconv.ParseInt(cursor.ID, 10, 64); err == nil {
					db = db.Where("id > ?", id)
				}
			}
		}
		return db.Order("id ASC").Limit(limit + 1)
	})
}
