// Package listview holds the state shared by every list screen: the sort
// axis and direction, the open side panel and the pending delete
// confirmation. All of it travels in the query string.
package listview

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Axis is a sortable column.
type Axis string

const (
	ByName Axis = "name"
	ByDate Axis = "date"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == Asc {
		return Desc
	}
	return Asc
}

// Sort is the active sort.
type Sort struct {
	Axis  Axis
	Order Order
}

// DefaultSort is newest first, matching the order the backend returns.
var DefaultSort = Sort{Axis: ByDate, Order: Desc}

// ToggleName returns the sort a click on the name header produces: ascending
// the first time, then alternating.
func (s Sort) ToggleName() Sort {
	if s.Axis == ByName {
		return Sort{Axis: ByName, Order: s.Order.Flip()}
	}
	return Sort{Axis: ByName, Order: Asc}
}

// Query encodes s as query parameters.
func (s Sort) Query() url.Values {
	return url.Values{"sort": {string(s.Axis)}, "order": {string(s.Order)}}
}

// Panel is the side panel shown next to the list.
type Panel string

const (
	PanelNone Panel = ""
	PanelNew  Panel = "new"
	PanelEdit Panel = "edit"
	PanelView Panel = "view"
)

// State is everything a list screen reads from its query string.
type State struct {
	Sort      Sort
	Panel     Panel
	ID        string
	ConfirmID string
}

// ParseState reads the list state from q. Unknown values fall back to defaults.
func ParseState(q url.Values) State {
	st := State{Sort: DefaultSort}

	switch Axis(q.Get("sort")) {
	case ByName:
		st.Sort.Axis = ByName
		st.Sort.Order = Asc
	case ByDate:
		st.Sort.Axis = ByDate
	}
	switch Order(q.Get("order")) {
	case Asc:
		st.Sort.Order = Asc
	case Desc:
		st.Sort.Order = Desc
	}

	id := q.Get("id")
	switch Panel(q.Get("panel")) {
	case PanelNew:
		st.Panel = PanelNew
	case PanelEdit:
		if id != "" {
			st.Panel, st.ID = PanelEdit, id
		}
	case PanelView:
		if id != "" {
			st.Panel, st.ID = PanelView, id
		}
	}

	st.ConfirmID = q.Get("confirm")
	return st
}

// ParseNameState is ParseState for lists that only sort by name.
func ParseNameState(q url.Values) State {
	st := ParseState(q)
	if st.Sort.Axis != ByName {
		st.Sort = Sort{Axis: ByName, Order: Asc}
	}
	return st
}

// Link builds a URL to path keeping the current sort and applying extra.
func (st State) Link(path string, extra url.Values) string {
	q := st.Sort.Query()
	for k, v := range extra {
		q[k] = v
	}
	return path + "?" + q.Encode()
}

// SortLink builds the URL for sorting by s, dropping panels and confirmations.
func SortLink(path string, s Sort) string {
	return path + "?" + s.Query().Encode()
}

// SortLinks are the column header targets of a list: the name toggles,
// the date has one link per direction.
type SortLinks struct {
	Name     string
	DateAsc  string
	DateDesc string
}

// Links builds the sort targets of the list at path.
func Links(path string, st State) SortLinks {
	return SortLinks{
		Name:     SortLink(path, st.Sort.ToggleName()),
		DateAsc:  SortLink(path, Sort{Axis: ByDate, Order: Asc}),
		DateDesc: SortLink(path, Sort{Axis: ByDate, Order: Desc}),
	}
}

// Columns extracts the identity and sortable values of an item.
type Columns[T any] struct {
	ID   func(T) string
	Name func(T) string
	Date func(T) time.Time
}

// Apply returns a sorted copy of items. Names compare with the collation
// rules of tag.
func Apply[T any](items []T, s Sort, cols Columns[T], tag language.Tag) []T {
	out := slices.Clone(items)

	var cmp func(a, b T) int
	switch {
	case s.Axis == ByName && cols.Name != nil:
		c := collate.New(tag)
		cmp = func(a, b T) int { return c.CompareString(cols.Name(a), cols.Name(b)) }
	case s.Axis == ByDate && cols.Date != nil:
		cmp = func(a, b T) int { return cols.Date(a).Compare(cols.Date(b)) }
	default:
		return out
	}

	if s.Order == Desc {
		asc := cmp
		cmp = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Page is one rendered list. Confirm is the item awaiting delete
// confirmation, if it is in the list.
type Page[T any] struct {
	Items   []T
	State   State
	Confirm *T
	Err     error
}

// Fetcher loads the full list from the backend.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// View loads and orders one entity's list.
type View[T any] struct {
	Name    string
	Fetch   Fetcher[T]
	Columns Columns[T]
	Logger  *slog.Logger
}

// Load fetches the list and applies st's sort. A fetch failure is logged and
// yields an empty list with Err set.
func (v *View[T]) Load(ctx context.Context, st State, tag language.Tag) Page[T] {
	items, err := v.Fetch(ctx)
	if err != nil {
		if v.Logger != nil {
			v.Logger.Error("failed to load list", "list", v.Name, "error", err)
		}
		return Page[T]{State: st, Err: err}
	}
	page := Page[T]{Items: Apply(items, st.Sort, v.Columns, tag), State: st}
	page.Confirm = v.find(page.Items, st.ConfirmID)
	return page
}

func (v *View[T]) find(items []T, id string) *T {
	if id == "" || v.Columns.ID == nil {
		return nil
	}
	for i := range items {
		if v.Columns.ID(items[i]) == id {
			return &items[i]
		}
	}
	return nil
}

// ListLink is the list at path with the current sort and no panel.
func (st State) ListLink(path string) string {
	return st.Link(path, nil)
}

// PanelLink opens panel for id next to the list at path.
func (st State) PanelLink(path string, panel Panel, id string) string {
	extra := url.Values{"panel": {string(panel)}}
	if id != "" {
		extra.Set("id", id)
	}
	return st.Link(path, extra)
}

// ConfirmLink asks for confirmation before deleting id.
func (st State) ConfirmLink(path, id string) string {
	return st.Link(path, url.Values{"confirm": {id}})
}
