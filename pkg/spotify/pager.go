package spotify

import (
	"context"
	"errors"
	"iter"
)

var errNilPage = errors.New("nil page in response")

// Paginate turns a cursor-paginated endpoint into a lazy sequence of items.
//
// fetch is called with nil for the first page and with the previous page
// afterwards. items extracts the entries of a page and hasMore reports
// whether the page carries a cursor to a further one. Pages are requested one
// at a time and only when the consumer asks for more items. The sequence ends
// after the last page, when the consumer stops, or after yielding the first
// error (a failed fetch or a cancelled ctx). Ranging again restarts from the
// first page.
func Paginate[P, T any](ctx context.Context, fetch func(prev *P) (*P, error), items func(*P) []T, hasMore func(*P) bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		var page *P
		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}
			next, err := fetch(page)
			if err == nil && next == nil {
				err = errNilPage
			}
			if err != nil {
				yield(zero, err)
				return
			}
			for _, it := range items(next) {
				if !yield(it, nil) {
					return
				}
			}
			if !hasMore(next) {
				return
			}
			page = next
		}
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
