package catalog

import (
	"context"
	"fmt"
	"sync"

	"lunelle.GO/model/entity"
)

type ProductState struct {
	Product  *entity.Product
	Loading  bool
	Err      error
	NotFound bool
}

// ProductView loads a single product by handle.
type ProductView struct {
	src    Source
	handle string

	mu      sync.Mutex
	product *entity.Product
	loading bool
	err     error
	loaded  bool
	seq     uint64
}

func NewProductView(src Source, handle string) *ProductView {
	return &ProductView{src: src, handle: handle}
}

func (v *ProductView) State() ProductState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ProductState{
		Product:  v.product,
		Loading:  v.loading,
		Err:      v.err,
		NotFound: v.loaded && v.err == nil && v.product == nil,
	}
}

// Load fetches the product. An empty handle issues no request.
func (v *ProductView) Load(ctx context.Context) error {
	if v.handle == "" {
		return nil
	}
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.loading = true
	v.err = nil
	v.mu.Unlock()

	p, err := v.src.GetProduct(ctx, v.handle)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return nil
	}
	v.loading = false
	v.loaded = true
	if err != nil {
		v.product = nil
		v.err = fmt.Errorf("catalog: get product %q: %w", v.handle, err)
		return v.err
	}
	v.product = p
	return nil
}

func (v *ProductView) Refetch(ctx context.Context) error {
	return v.Load(ctx)
}
