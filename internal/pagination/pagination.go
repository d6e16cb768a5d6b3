// Package pagination implements the keyset (cursor) pager shared by every
// list endpoint. Rows are ordered by (created_at DESC, id DESC); ids are
// monotonic so the pair is a stable total order. Callers fetch limit+1 rows
// and hand the overfetched slice to Cut, which pops the extra row and exposes
// its id as the next cursor. A cursor therefore identifies the first row of
// the next page, and the seek is inclusive of the cursor row: every row is
// visited exactly once across pages even while new rows are inserted at the
// head.
package pagination

import (
	"time"

	"glimpse/internal/models"

	"gorm.io/gorm"
)

// DefaultLimit is the page size used when a request omits the limit.
const DefaultLimit = 20

// Normalize validates a requested page size against an endpoint's maximum.
// A zero limit means "not specified" and falls back to def. Out-of-range
// values are a caller error, not silently clamped.
func Normalize(limit, def, max int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 1 || limit > max {
		return 0, models.NewValidationError("limit out of range")
	}
	return limit, nil
}

// Key is the position of a cursor row in the (created_at DESC, id DESC)
// order.
type Key struct {
	CreatedAt time.Time
	ID        uint
}

// Scope returns a GORM scope that restricts rows to those at or after the
// cursor row, and applies the pager's ordering. col qualifies the created_at
// column (e.g. "posts.created_at") for queries with joins; id ordering uses
// the bare column. A nil key starts from the most recent row.
func Scope(col string, key *Key) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if key != nil {
			db = db.Where(
				col+" < ? OR ("+col+" = ? AND id <= ?)",
				key.CreatedAt, key.CreatedAt, key.ID,
			)
		}
		return db.Order(col + " DESC, id DESC")
	}
}

// Cut trims an overfetched slice of limit+1 rows. If the extra row is
// present it is popped and its id returned as the next cursor; otherwise the
// cursor is zero, meaning the list is exhausted.
func Cut[T any](rows []T, limit int, id func(T) uint) ([]T, uint) {
	if len(rows) <= limit {
		return rows, 0
	}
	next := id(rows[limit])
	return rows[:limit], next
}

// SliceAt windows an in-memory ordered slice the same way Scope/Cut window a
// query: the cursor names the first item of the page (inclusive) and the
// returned next cursor names the first item of the following page. It is used
// where the ordering is computed in memory (the chat list). A missing cursor
// id yields an empty page with no next cursor.
func SliceAt[T any](items []T, cursor uint, limit int, id func(T) uint) ([]T, uint) {
	start := 0
	if cursor != 0 {
		start = -1
		for i, it := range items {
			if id(it) == cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, 0
		}
	}
	end := start + limit
	if end >= len(items) {
		return items[start:], 0
	}
	return items[start:end], id(items[end])
}

// SliceAfter windows an in-memory ordered slice with exclusive resume-after
// semantics: the cursor names the last item of the previous page and the next
// cursor names the last item of the returned page. The story rail paginates
// over authors this way. A cursor whose item has vanished from the slice
// (e.g. all of an author's stories expired between pages) restarts from the
// top rather than failing.
func SliceAfter[T any](items []T, cursor uint, limit int, id func(T) uint) ([]T, uint) {
	start := 0
	if cursor != 0 {
		for i, it := range items {
			if id(it) == cursor {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end >= len(items) {
		return items[start:], 0
	}
	return items[start:end], id(items[end-1])
}
