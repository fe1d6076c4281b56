package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
)

type productRepo struct {
	s *Store
}

func detachProduct(p *catalog.Product) catalog.Product {
	c := *p
	c.ClearDomainEvents()
	return c
}

func (r *productRepo) Create(ctx context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return shared.NewDuplicateKeyError("code", p.Code)
		}
	}
	p.ID = r.s.newID()
	r.s.products[p.ID] = detachProduct(p)
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.NewNotFoundError("product", id)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []int64) ([]*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	products := make([]*catalog.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.s.products[id]; ok {
			products = append(products, &p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, shared.NewNotFoundByError("product", fmt.Sprintf("with code %q", code))
}

func (r *productRepo) Update(ctx context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[p.ID]
	if !ok {
		return shared.NewNotFoundError("product", p.ID)
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrencyConflict
	}
	for id, existing := range r.s.products {
		if id != p.ID && existing.Code == p.Code {
			return shared.NewDuplicateKeyError("code", p.Code)
		}
	}

	p.Version++
	p.UpdatedAt = time.Now()
	r.s.products[p.ID] = detachProduct(p)
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return shared.NewNotFoundError("product", id)
	}
	delete(r.s.products, id)
	return nil
}

func (r *productRepo) FindBelowMinimumStock(ctx context.Context) ([]*catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var products []*catalog.Product
	for _, p := range r.s.products {
		if p.Active && p.IsBelowMinimum() {
			products = append(products, &p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
