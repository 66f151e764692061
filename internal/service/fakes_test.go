package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

type fakeProductRepo struct {
	mu       sync.Mutex
	items    map[uuid.UUID]model.Product
	findErr  error
	updateFn func(p *model.Product) error // optional failure hook
	updates  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{items: map[uuid.UUID]model.Product{}}
}

func (r *fakeProductRepo) Create(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.EnsureID()
	product.Touch(time.Now().UTC())
	r.items[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]model.Product, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, p := range r.items {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProductRepo) Update(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateFn != nil {
		if err := r.updateFn(product); err != nil {
			return err
		}
	}
	if _, ok := r.items[product.ID]; !ok {
		return repository.ErrNotFound
	}
	r.items[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Stock
}

type fakeTransactionRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]model.Transaction
	createErr error
	updateErr error
	deleteErr error
	findErr   error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{items: map[uuid.UUID]model.Transaction{}}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	t.EnsureID()
	t.Touch(time.Now().UTC())
	t.Date = model.BusinessDate(t.Date)
	r.items[t.ID] = *t
	return nil
}

func (r *fakeTransactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.sorted(func(model.Transaction) bool { return true }), nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	t, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTransactionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, e := model.BusinessDate(start), model.BusinessDate(end)
	return r.sorted(func(t model.Transaction) bool {
		return !t.Date.Before(s) && !t.Date.After(e)
	}), nil
}

func (r *fakeTransactionRepo) Update(ctx context.Context, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.items[t.ID]; !ok {
		return repository.ErrNotFound
	}
	t.Date = model.BusinessDate(t.Date)
	r.items[t.ID] = *t
	return nil
}

func (r *fakeTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *fakeTransactionRepo) sorted(keep func(model.Transaction) bool) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[uuid.UUID]model.User{}}
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.items {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	user.EnsureID()
	user.Touch(time.Now().UTC())
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.items[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.items[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.items)), nil
}
