// Package navigator provides an in-memory cursor over a loaded set of
// records, with filtering, sorting, positional movement and bookmarks.
// It owns no persistence: callers hand it a loader that fetches the
// records, and Refresh re-runs that loader while preserving position.
package navigator

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "eduregistry/pkg/errors"
)

// Loader fetches the full record set from the backing store.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Bookmark remembers a position in a record set so it can be returned to
// later. Restoration is by index, so the bookmarked record may differ
// after a refresh.
type Bookmark struct {
	Name      string
	Kind      string
	Index     int
	RecordID  int64
	CreatedAt time.Time
}

// RecordSet is a navigable view over a slice of records. A filter and a
// sort, once set, survive Refresh and are reapplied to the newly loaded
// data. The zero index is the first record.
type RecordSet[T any] struct {
	kind   string
	loader Loader[T]
	idOf   func(T) int64

	all     []T
	view    []T
	index   int
	filter  func(T) bool
	less    func(a, b T) bool
	visited map[int]struct{}

	bookmarks map[string]Bookmark
}

// New builds a RecordSet for the given record kind. idOf extracts a
// record's identifier for bookmarks; pass nil when records have none.
func New[T any](kind string, loader Loader[T], idOf func(T) int64) *RecordSet[T] {
	return &RecordSet[T]{
		kind:      kind,
		loader:    loader,
		idOf:      idOf,
		visited:   make(map[int]struct{}),
		bookmarks: make(map[string]Bookmark),
	}
}

// Load fetches the records and positions the cursor on the first one.
func (rs *RecordSet[T]) Load(ctx context.Context) error {
	records, err := rs.loader(ctx)
	if err != nil {
		return err
	}
	rs.all = records
	rs.index = 0
	rs.visited = make(map[int]struct{})
	rs.rebuild()
	return nil
}

// Refresh re-runs the loader, reapplies the active filter and sort, and
// clamps the cursor so it stays in range when the set shrank.
func (rs *RecordSet[T]) Refresh(ctx context.Context) error {
	records, err := rs.loader(ctx)
	if err != nil {
		return err
	}
	rs.all = records
	rs.rebuild()
	if rs.index >= len(rs.view) {
		rs.index = len(rs.view) - 1
	}
	if rs.index < 0 {
		rs.index = 0
	}
	return nil
}

func (rs *RecordSet[T]) rebuild() {
	rs.view = rs.view[:0]
	for _, rec := range rs.all {
		if rs.filter == nil || rs.filter(rec) {
			rs.view = append(rs.view, rec)
		}
	}
	if rs.less != nil {
		sort.SliceStable(rs.view, func(i, j int) bool { return rs.less(rs.view[i], rs.view[j]) })
	}
}

// Current returns the record under the cursor, or (zero, false) when the
// set is empty.
func (rs *RecordSet[T]) Current() (T, bool) {
	var zero T
	if len(rs.view) == 0 {
		return zero, false
	}
	rs.visited[rs.index] = struct{}{}
	return rs.view[rs.index], true
}

// First moves the cursor to the first record.
func (rs *RecordSet[T]) First() (T, bool) {
	rs.index = 0
	return rs.Current()
}

// Last moves the cursor to the last record.
func (rs *RecordSet[T]) Last() (T, bool) {
	if len(rs.view) > 0 {
		rs.index = len(rs.view) - 1
	}
	return rs.Current()
}

// Next advances the cursor by one. At the last record it stays put and
// reports false movement through the second return.
func (rs *RecordSet[T]) Next() (T, bool) {
	if rs.index+1 >= len(rs.view) {
		var zero T
		return zero, false
	}
	rs.index++
	return rs.Current()
}

// Previous moves the cursor back by one. At the first record it stays put.
func (rs *RecordSet[T]) Previous() (T, bool) {
	if rs.index == 0 || len(rs.view) == 0 {
		var zero T
		return zero, false
	}
	rs.index--
	return rs.Current()
}

// GoTo jumps to a zero-based position. Out-of-range positions return a
// validation error and leave the cursor unchanged.
func (rs *RecordSet[T]) GoTo(position int) (T, error) {
	var zero T
	if position < 0 || position >= len(rs.view) {
		return zero, apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("position %d out of range [0, %d)", position, len(rs.view)))
	}
	rs.index = position
	rec, _ := rs.Current()
	return rec, nil
}

// Find moves the cursor to the first record matching the predicate,
// scanning from the start. Returns false and leaves the cursor unchanged
// when nothing matches.
func (rs *RecordSet[T]) Find(match func(T) bool) (T, bool) {
	for i, rec := range rs.view {
		if match(rec) {
			rs.index = i
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// SetFilter restricts the view to matching records and rewinds to the
// first one. A nil predicate clears the filter.
func (rs *RecordSet[T]) SetFilter(match func(T) bool) {
	rs.filter = match
	rs.index = 0
	rs.rebuild()
}

// ClearFilter restores the unfiltered view and rewinds.
func (rs *RecordSet[T]) ClearFilter() {
	rs.SetFilter(nil)
}

// SetSort orders the view with a stable sort and rewinds to the first
// record. A nil comparator clears the sort.
func (rs *RecordSet[T]) SetSort(less func(a, b T) bool) {
	rs.less = less
	rs.index = 0
	rs.rebuild()
}

// IsFirst reports whether the cursor is on the first record. An empty set
// counts as both first and last.
func (rs *RecordSet[T]) IsFirst() bool {
	return rs.index == 0
}

// IsLast reports whether the cursor is on the last record.
func (rs *RecordSet[T]) IsLast() bool {
	return len(rs.view) == 0 || rs.index == len(rs.view)-1
}

// Count returns the number of records in the current view.
func (rs *RecordSet[T]) Count() int {
	return len(rs.view)
}

// Index returns the zero-based cursor position.
func (rs *RecordSet[T]) Index() int {
	return rs.index
}

// Position renders the one-based cursor position, e.g. "record 3 of 12".
func (rs *RecordSet[T]) Position() string {
	if len(rs.view) == 0 {
		return "no records"
	}
	return fmt.Sprintf("record %d of %d", rs.index+1, len(rs.view))
}

// VisitedCount reports how many distinct positions the cursor has landed
// on since the last Load.
func (rs *RecordSet[T]) VisitedCount() int {
	return len(rs.visited)
}

// State is a snapshot of the navigation position for callers rendering
// navigation controls.
type State struct {
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
	Count    int    `json:"count"`
	IsFirst  bool   `json:"is_first"`
	IsLast   bool   `json:"is_last"`
	Position string `json:"position"`
}

// State returns the current navigation snapshot.
func (rs *RecordSet[T]) State() State {
	return State{
		Kind:     rs.kind,
		Index:    rs.index,
		Count:    len(rs.view),
		IsFirst:  rs.IsFirst(),
		IsLast:   rs.IsLast(),
		Position: rs.Position(),
	}
}

// SetBookmark remembers the current position under a name. Bookmarking an
// empty set returns a validation error.
func (rs *RecordSet[T]) SetBookmark(name string) (Bookmark, error) {
	if len(rs.view) == 0 {
		return Bookmark{}, apperrors.Clone(apperrors.ErrValidation, "cannot bookmark an empty record set")
	}
	bm := Bookmark{
		Name:      name,
		Kind:      rs.kind,
		Index:     rs.index,
		CreatedAt: time.Now(),
	}
	if rs.idOf != nil {
		bm.RecordID = rs.idOf(rs.view[rs.index])
	}
	rs.bookmarks[name] = bm
	return bm, nil
}

// GoToBookmark returns the cursor to a named position. The jump is by
// index; when the set shrank below it, the cursor clamps to the last
// record. An unknown name returns NotFound.
func (rs *RecordSet[T]) GoToBookmark(name string) (T, error) {
	var zero T
	bm, ok := rs.bookmarks[name]
	if !ok {
		return zero, apperrors.Clone(apperrors.ErrNotFound, fmt.Sprintf("bookmark %q not found", name))
	}
	if len(rs.view) == 0 {
		return zero, apperrors.Clone(apperrors.ErrNotFound, "record set is empty")
	}
	rs.index = bm.Index
	if rs.index >= len(rs.view) {
		rs.index = len(rs.view) - 1
	}
	rec, _ := rs.Current()
	return rec, nil
}

// Bookmarks lists the saved bookmarks in no particular order.
func (rs *RecordSet[T]) Bookmarks() []Bookmark {
	out := make([]Bookmark, 0, len(rs.bookmarks))
	for _, bm := range rs.bookmarks {
		out = append(out, bm)
	}
	return out
}

// DeleteBookmark removes a named bookmark, reporting whether it existed.
func (rs *RecordSet[T]) DeleteBookmark(name string) bool {
	_, ok := rs.bookmarks[name]
	delete(rs.bookmarks, name)
	return ok
}
