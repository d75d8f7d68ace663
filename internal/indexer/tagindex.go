package indexer

import (
	"context"
	"sort"
)

// TagStore resolves a tag name to its durable id, creating the tag when
// missing. *database.Batch implements it.
type TagStore interface {
	GetOrCreateTag(ctx context.Context, name string) (id int64, created bool, err error)
}

// TagIndex memoizes tag ids for one run so each distinct name costs at most
// one store round-trip. Failed lookups are not memoized. A TagIndex is not
// safe for concurrent use.
type TagIndex struct {
	store   TagStore
	ids     map[string]int64
	created int
}

// NewTagIndex returns an empty index backed by store.
func NewTagIndex(store TagStore) *TagIndex {
	return &TagIndex{
		store: store,
		ids:   make(map[string]int64),
	}
}

// Resolve returns the id for name.
func (ti *TagIndex) Resolve(ctx context.Context, name string) (int64, error) {
	if id, ok := ti.ids[name]; ok {
		return id, nil
	}

	id, created, err := ti.store.GetOrCreateTag(ctx, name)
	if err != nil {
		return 0, err
	}
	if created {
		ti.created++
	}
	ti.ids[name] = id
	return id, nil
}

// Len is the number of distinct names resolved.
func (ti *TagIndex) Len() int {
	return len(ti.ids)
}

// Created is the number of resolved names the store had to create.
func (ti *TagIndex) Created() int {
	return ti.created
}

// Names returns the resolved names in sorted order.
func (ti *TagIndex) Names() []string {
	names := make([]string, 0, len(ti.ids))
	for name := range ti.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
