package catalog

import (
	"context"
	"fmt"
	"sync"

	"lunelle.GO/model/entity"
)

type CollectionState struct {
	Items   []entity.Collection
	Loading bool
	Err     error
}

// CollectionList loads the collections used as category filter labels.
type CollectionList struct {
	src   Source
	first int

	mu      sync.Mutex
	items   []entity.Collection
	loading bool
	err     error
}

func NewCollectionList(src Source, first int) *CollectionList {
	return &CollectionList{src: src, first: first, items: []entity.Collection{}}
}

func (c *CollectionList) State() CollectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CollectionState{Items: append([]entity.Collection(nil), c.items...), Loading: c.loading, Err: c.err}
}

func (c *CollectionList) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	cols, err := c.src.ListCollections(ctx, c.first)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.items = []entity.Collection{}
		c.err = fmt.Errorf("catalog: list collections: %w", err)
		return c.err
	}
	c.items = cols
	return nil
}

func (c *CollectionList) Refetch(ctx context.Context) error {
	return c.Load(ctx)
}

// Labels returns the collection titles in order.
func (c *CollectionList) Labels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.items))
	for _, col := range c.items {
		out = append(out, col.Title)
	}
	return out
}
