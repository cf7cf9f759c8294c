package model

import (
	"maps"
	"slices"
)

// Collection is an id-keyed entity set that remembers insertion order.
//
// Collections are values: With returns a modified copy and
// never touches the receiver, so a collection handed to a reader stays stable.
type Collection[T any] struct {
	IDs      []string
	Entities map[string]T
}

// NewCollection builds a collection from items, keyed by id(item). A repeated
// id keeps its first position and its last value.
func NewCollection[T any](items []T, id func(T) string) Collection[T] {
	c := Collection[T]{
		IDs:      make([]string, 0, len(items)),
		Entities: make(map[string]T, len(items)),
	}

	for _, item := range items {
		key := id(item)
		if _, exists := c.Entities[key]; !exists {
			c.IDs = append(c.IDs, key)
		}

		c.Entities[key] = item
	}

	return c
}

// Len returns the number of entities.
func (c Collection[T]) Len() int {
	return len(c.IDs)
}

// Get returns the entity with id.
func (c Collection[T]) Get(id string) (T, bool) {
	v, ok := c.Entities[id]

	return v, ok
}

// All returns the entities in insertion order.
func (c Collection[T]) All() []T {
	out := make([]T, 0, len(c.IDs))

	for _, id := range c.IDs {
		if v, ok := c.Entities[id]; ok {
			out = append(out, v)
		}
	}

	return out
}

// With returns a copy of c with v stored under id.
func (c Collection[T]) With(id string, v T) Collection[T] {
	next := Collection[T]{
		IDs:      slices.Clone(c.IDs),
		Entities: maps.Clone(c.Entities),
	}

	if next.Entities == nil {
		next.Entities = make(map[string]T, 1)
	}

	if _, exists := next.Entities[id]; !exists {
		next.IDs = append(next.IDs, id)
	}

	next.Entities[id] = v

	return next
}
