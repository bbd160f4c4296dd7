// Package collection derives the visible subset of a fixed, tagged list of
// records from the active filter key.
package collection

import (
	"fmt"
)

// Reserved filter keys.
const (
	All      = "all"
	Featured = "featured"
)

// Record is an immutable entry of a collection.
type Record interface {
	RecordID() int
	RecordCategory() string
	IsFeatured() bool
}

// Visible returns the items selected by key in their original order. "all"
// selects everything, "featured" selects featured items and any other key
// selects items whose category equals key exactly. items is not modified.
func Visible[T Record](items []T, key string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		switch key {
		case All:
		case Featured:
			if !it.IsFeatured() {
				continue
			}
		default:
			if it.RecordCategory() != key {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Filter is a selectable key with its display label.
type Filter struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Collection pairs a static record list with its declared filters and the
// active filter key. The active key is always one of the declared keys.
type Collection[T Record] struct {
	items   []T
	filters []Filter
	keys    map[string]bool
	active  string
}

// New validates ids and filters. The declared filters must include "all"
// and "featured".
func New[T Record](items []T, filters []Filter) (*Collection[T], error) {
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if seen[it.RecordID()] {
			return nil, fmt.Errorf("collection: duplicate id %d", it.RecordID())
		}
		seen[it.RecordID()] = true
	}

	keys := make(map[string]bool, len(filters))
	for _, f := range filters {
		if keys[f.Key] {
			return nil, fmt.Errorf("collection: duplicate filter %q", f.Key)
		}
		keys[f.Key] = true
	}
	for _, k := range []string{All, Featured} {
		if !keys[k] {
			return nil, fmt.Errorf("collection: missing %q filter", k)
		}
	}

	return &Collection[T]{
		items:   append([]T(nil), items...),
		filters: append([]Filter(nil), filters...),
		keys:    keys,
		active:  All,
	}, nil
}

func (c *Collection[T]) Active() string { return c.active }

// Declared reports whether key is one of the collection's filters.
func (c *Collection[T]) Declared(key string) bool { return c.keys[key] }

// Select makes key the active filter. Undeclared keys leave the active
// filter unchanged and report false.
func (c *Collection[T]) Select(key string) bool {
	if !c.keys[key] {
		return false
	}
	c.active = key
	return true
}

// View returns the records visible under key. Undeclared keys select
// nothing.
func (c *Collection[T]) View(key string) []T {
	if !c.keys[key] {
		return []T{}
	}
	return Visible(c.items, key)
}

// Current is the view of the active filter.
func (c *Collection[T]) Current() []T { return c.View(c.active) }

func (c *Collection[T]) Filters() []Filter {
	return append([]Filter(nil), c.filters...)
}
