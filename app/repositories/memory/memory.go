// Package memory provides in-memory repository implementations for tests.
// Semantics match the Mongo versions, including the conditional stock
// decrement guarded under a single lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
)

// ─── Products ────────────────────────────────────────────────────────────────

type ProductRepository struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]*models.Product)}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Date == 0 {
		p.Date = time.Now().UnixMilli()
	}
	clone := *p
	r.products[p.ID.Hex()] = &clone
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return *p, nil
}

func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) CheckStock(ctx context.Context, id, variant string, qty int) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	return p.Rarities.Of(variant) >= qty, nil
}

// DecrementStock performs the check and the subtraction under one lock, so
// concurrent callers cannot interleave between them.
func (r *ProductRepository) DecrementStock(ctx context.Context, id, variant string, qty int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Rarities.Of(variant) < qty {
		return repositories.ErrInsufficientStock
	}
	p.Rarities.Add(variant, -qty)
	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id, variant string, qty int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Rarities.Add(variant, qty)
	return nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CartData == nil {
		u.CartData = models.CartData{}
	}
	clone := *u
	clone.CartData = u.CartData.Clone()
	r.users[u.ID.Hex()] = &clone
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	out := *u
	out.CartData = u.CartData.Clone()
	return out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			out.CartData = u.CartData.Clone()
			return out, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (r *UserRepository) UpdateCart(ctx context.Context, id string, cart models.CartData) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.CartData = cart.Clone()
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpiry = expiry
	return nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (models.User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if token != "" && u.ResetToken == token && u.ResetTokenExpiry.After(now) {
			out := *u
			out.CartData = u.CartData.Clone()
			return out, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Password = hash
	u.ResetToken = ""
	u.ResetTokenExpiry = time.Time{}
	return nil
}

// ─── Orders ──────────────────────────────────────────────────────────────────

type OrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*models.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.Status == "" {
		o.Status = models.StatusOrderPlaced
	}
	if o.Date == 0 {
		o.Date = time.Now().UnixMilli()
	}
	clone := *o
	r.orders[o.ID.Hex()] = &clone
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (models.Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, repositories.ErrNotFound
	}
	return *o, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	sortOrders(out)
	return out, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if o.Payment {
		return false, nil
	}
	o.Payment = true
	return true, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = status
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *OrderRepository) FindUnpaidBefore(ctx context.Context, method string, cutoff time.Time) ([]models.Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if !o.Payment && o.PaymentMethod == method && o.Date < cutoff.UnixMilli() {
			out = append(out, *o)
		}
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].Date > orders[j].Date })
}
