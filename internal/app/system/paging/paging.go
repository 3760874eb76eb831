// internal/app/system/paging/paging.go
//
// Package paging implements the look-ahead keyset pagination used by the
// organization directory: fetch PageSize+1 rows sorted on a folded name
// key, trim the extra row to learn whether a next page exists, and encode
// the window edges as opaque cursors for the prev/next links.
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is how many rows a directory page shows. Org listings carry
// per-row member and event counts, so pages are kept short.
const PageSize = 25

// LimitPlusOne is the Find limit for look-ahead pagination: one extra
// row tells us a next page exists without a second count query.
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseStart reads the 1-based "start" query parameter used for the
// "showing X–Y of Z" range display. Missing or garbage input means 1.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Result reports which pagination links the trimmed page supports.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage drops the look-ahead row from a PageSize+1 fetch, in place.
//
// Paging backwards (before != "") the extra row sits at the front and its
// presence means an earlier page exists; HasNext is unconditionally true
// since a backward page was reached from somewhere. Paging forwards the
// extra row sits at the end, and HasPrev follows from the after cursor.
func TrimPage[T any](rows *[]T, before, after string) Result {
	var res Result
	if before != "" {
		if len(*rows) > PageSize {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
		return res
	}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		res.HasNext = true
	}
	res.HasPrev = after != ""
	return res
}

// Range holds the 1-based display range and the start values the prev
// and next links should carry.
type Range struct {
	Start     int
	End       int
	PrevStart int
	NextStart int
}

// ComputeRange derives the display range from the current start index
// and the number of rows actually shown. Zero rows yields a zero range
// with both links pointing at the first page.
func ComputeRange(start, shown int) Range {
	if shown == 0 {
		return Range{PrevStart: 1, NextStart: 1}
	}
	prevStart := start - PageSize
	if prevStart < 1 {
		prevStart = 1
	}
	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
	}
}

// Direction is the traversal direction of the current page fetch.
type Direction int

const (
	Forward  Direction = iota // ascending sort, cursor window is "gt"
	Backward                  // descending sort, cursor window is "lt"
)

// KeysetConfig carries the direction, matching sort order, and decoded
// cursor for one page fetch.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 ascending, -1 descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset picks the traversal direction from the request's
// cursors. A before cursor wins over an after cursor; an undecodable
// cursor degrades to the first page rather than erroring.
func ConfigureKeyset(before, after string) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1}
	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
		return cfg
	}
	if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// ApplyToFind sets the sort (sort field then _id, both in the traversal
// direction) and the look-ahead limit on the Find options.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// KeysetWindow returns the filter condition that opens the query window
// at the cursor, or nil when there is no cursor.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Reverse restores display order after a backward fetch, which queries
// in descending order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors encodes the trimmed page's edges as the prev and next
// cursors. keyFn and idFn extract the sort key and document ID from a
// row. An empty page yields empty cursors.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
