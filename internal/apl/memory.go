package apl

import (
	"context"
	"sort"
	"sync"

	"saleor-stripe-app/internal/model"
)

type MemoryAPL struct {
	mu    sync.RWMutex
	items map[string]model.AuthData
}

func NewMemoryAPL(items ...model.AuthData) *MemoryAPL {
	a := &MemoryAPL{items: map[string]model.AuthData{}}
	for _, item := range items {
		a.items[item.SaleorAPIURL] = item
	}
	return a
}

func (a *MemoryAPL) Get(_ context.Context, saleorAPIURL string) (*model.AuthData, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	auth, ok := a.items[saleorAPIURL]
	if !ok {
		return nil, nil
	}
	return &auth, nil
}

func (a *MemoryAPL) Set(_ context.Context, auth model.AuthData) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[auth.SaleorAPIURL] = auth
	return nil
}

func (a *MemoryAPL) Delete(_ context.Context, saleorAPIURL string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.items, saleorAPIURL)
	return nil
}

func (a *MemoryAPL) GetAll(_ context.Context) ([]model.AuthData, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]model.AuthData, 0, len(a.items))
	for _, auth := range a.items {
		result = append(result, auth)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SaleorAPIURL < result[j].SaleorAPIURL })
	return result, nil
}

func (a *MemoryAPL) IsReady(context.Context) error {
	return nil
}
