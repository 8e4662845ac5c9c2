// Package policy selects the destroy-set: the ordered subset of cached
// items the current retention policy says to delete.
package policy

import (
	"database/sql"
	"time"

	"github.com/eigenmagic/forget/internal/db"
	"github.com/eigenmagic/forget/internal/types"
)

// Params holds the retention policy parameters. When more than one
// policy is configured the first match in this fixed precedence wins:
//
//  1. NoDate: items whose creation time is unknown
//  2. DateBefore/DateAfter: items inside an explicit date window
//  3. BeforeDays: items older than N days
//  4. KeepNum: keep the N newest, delete the rest (default)
//
// DeleteMax caps every policy's result, keeping the oldest candidates.
type Params struct {
	NoDate     bool
	DateBefore *time.Time
	DateAfter  *time.Time
	BeforeDays *int
	KeepNum    int
	DeleteMax  *int
}

// Select computes the destroy-set from the cache, ascending by id so
// the oldest items go first. now anchors the BeforeDays policy.
func Select(conn *sql.DB, params Params, now time.Time) ([]types.Item, error) {
	switch {
	case params.NoDate:
		return db.DestroySetNoDate(conn, params.DeleteMax)
	case params.DateBefore != nil:
		return db.DestroySetDates(conn, *params.DateBefore, params.DateAfter, params.DeleteMax)
	case params.BeforeDays != nil:
		return db.DestroySetBeforeDays(conn, now, *params.BeforeDays, params.DeleteMax)
	default:
		return db.DestroySetKeepNum(conn, params.KeepNum, params.DeleteMax)
	}
}

// Name reports which policy Select would apply, for log output.
func (p Params) Name() string {
	switch {
	case p.NoDate:
		return "no-date"
	case p.DateBefore != nil:
		return "date-range"
	case p.BeforeDays != nil:
		return "before-days"
	default:
		return "keep-count"
	}
}
