package testutil

import (
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
)

// ============================== Mock Filter ==============================

var FilterFactory = &mockFilterFactory{}

type mockFilterFactory struct {
}

// Any returns a single-conjunction Set matching recordId equal to
// "test-record", the default MessageFactory record.
func (f *mockFilterFactory) Any(opts ...func(*filter.Set)) filter.Set {
	set := filter.Set{
		filter.Conjunction{
			filter.Index("recordId"): filter.Equal(value.String("test-record")),
		},
	}

	for _, opt := range opts {
		opt(&set)
	}

	return set
}

func (f *mockFilterFactory) WithConjunction(conj filter.Conjunction) func(*filter.Set) {
	return func(set *filter.Set) {
		*set = append(*set, conj)
	}
}

func (f *mockFilterFactory) WithEqual(key filter.Key, v value.Value) func(*filter.Set) {
	return func(set *filter.Set) {
		*set = filter.Set{filter.Conjunction{key: filter.Equal(v)}}
	}
}

func (f *mockFilterFactory) WithTag(name string, v value.Value) func(*filter.Set) {
	return func(set *filter.Set) {
		*set = filter.Set{filter.Conjunction{filter.Tag(name): filter.Equal(v)}}
	}
}

func (f *mockFilterFactory) WithRange(key filter.Key, lower, upper filter.Bound) func(*filter.Set) {
	return func(set *filter.Set) {
		*set = filter.Set{filter.Conjunction{key: filter.Range(lower, upper)}}
	}
}

// ============================== Mock Pagination ==============================

var PaginationFactory = &mockPaginationFactory{}

type mockPaginationFactory struct {
}

func (f *mockPaginationFactory) Any(opts ...func(*filter.Pagination)) filter.Pagination {
	p := filter.Pagination{Limit: 10}

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

func (f *mockPaginationFactory) WithLimit(limit uint64) func(*filter.Pagination) {
	return func(p *filter.Pagination) {
		p.Limit = limit
	}
}

func (f *mockPaginationFactory) WithCursor(cursor filter.Cursor) func(*filter.Pagination) {
	return func(p *filter.Pagination) {
		p.Cursor = &cursor
	}
}
