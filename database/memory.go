package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/princinho/eshopbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is an in-process stand-in for MongoDB used by the handler
// tests. Its repositories share one lock so product reads can populate
// categories consistently.
type MemoryStore struct {
	mu         sync.RWMutex
	products   map[bson.ObjectID]models.Product
	categories map[bson.ObjectID]models.Category
	users      map[bson.ObjectID]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:   make(map[bson.ObjectID]models.Product),
		categories: make(map[bson.ObjectID]models.Category),
		users:      make(map[bson.ObjectID]models.User),
	}
}

func (s *MemoryStore) Products() *MemoryProducts     { return &MemoryProducts{s: s} }
func (s *MemoryStore) Categories() *MemoryCategories { return &MemoryCategories{s: s} }
func (s *MemoryStore) Users() *MemoryUsers           { return &MemoryUsers{s: s} }

// ObjectIDs sort by creation time, which mirrors the Mongo pipeline's _id sort.
func sortedIDs[T any](m map[bson.ObjectID]T) []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	return p
}

type MemoryProducts struct{ s *MemoryStore }

func (r *MemoryProducts) view(p models.Product) models.ProductView {
	v := models.ProductView{Product: cloneProduct(p)}
	if cat, ok := r.s.categories[p.Category]; ok {
		v.Category = &cat
	}
	return v
}

func (r *MemoryProducts) List(_ context.Context, f ProductFilter) ([]models.ProductView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[bson.ObjectID]bool, len(f.CategoryIDs))
	for _, id := range f.CategoryIDs {
		wanted[id] = true
	}

	out := make([]models.ProductView, 0)
	for _, id := range sortedIDs(r.s.products) {
		p := r.s.products[id]
		if len(wanted) > 0 && !wanted[p.Category] {
			continue
		}
		if f.Featured != nil && p.IsFeatured != *f.Featured {
			continue
		}
		out = append(out, r.view(p))
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryProducts) Get(_ context.Context, id bson.ObjectID) (*models.ProductView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := r.view(p)
	return &v, nil
}

func (r *MemoryProducts) Create(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.Id.IsZero() {
		p.Id = bson.NewObjectID()
	}
	if _, exists := r.s.products[p.Id]; exists {
		return ErrDuplicate
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.DateCreated = time.Now().UTC()
	r.s.products[p.Id] = cloneProduct(*p)
	return nil
}

func (r *MemoryProducts) Update(_ context.Context, p *models.Product) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.Id]
	if !ok {
		return nil, ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.RichDescription = p.RichDescription
	cur.Image = p.Image
	cur.Brand = p.Brand
	cur.Price = p.Price
	cur.Category = p.Category
	cur.CountInStock = p.CountInStock
	cur.Rating = p.Rating
	cur.NumReviews = p.NumReviews
	cur.IsFeatured = p.IsFeatured
	r.s.products[p.Id] = cur
	out := cloneProduct(cur)
	return &out, nil
}

func (r *MemoryProducts) SetGallery(_ context.Context, id bson.ObjectID, images []string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cur.Images = append([]string{}, images...)
	r.s.products[id] = cur
	out := cloneProduct(cur)
	return &out, nil
}

func (r *MemoryProducts) Delete(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.products, id)
	return &cur, nil
}

func (r *MemoryProducts) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.products)), nil
}

type MemoryCategories struct{ s *MemoryStore }

func (r *MemoryCategories) List(_ context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Category, 0, len(r.s.categories))
	for _, id := range sortedIDs(r.s.categories) {
		out = append(out, r.s.categories[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryCategories) Get(_ context.Context, id bson.ObjectID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCategories) Create(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.Id.IsZero() {
		c.Id = bson.NewObjectID()
	}
	if _, exists := r.s.categories[c.Id]; exists {
		return ErrDuplicate
	}
	r.s.categories[c.Id] = *c
	return nil
}

func (r *MemoryCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.Id]; !ok {
		return nil, ErrNotFound
	}
	r.s.categories[c.Id] = *c
	out := *c
	return &out, nil
}

func (r *MemoryCategories) Delete(_ context.Context, id bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

type MemoryUsers struct{ s *MemoryStore }

func (r *MemoryUsers) emailTaken(email string, except bson.ObjectID) bool {
	for id, u := range r.s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, id := range sortedIDs(r.s.users) {
		u := r.s.users[id]
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

func (r *MemoryUsers) Get(_ context.Context, id bson.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := r.s.users[u.ID]; exists || r.emailTaken(u.Email, u.ID) {
		return ErrDuplicate
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return nil, ErrNotFound
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if r.emailTaken(email, u.ID) {
		return nil, ErrDuplicate
	}
	hash := cur.PasswordHash
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}
	next := *u
	next.Email = email
	next.PasswordHash = hash
	r.s.users[u.ID] = next
	return &next, nil
}

func (r *MemoryUsers) EnsureAdmin(_ context.Context, u *models.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if r.emailTaken(u.Email, bson.ObjectID{}) {
		return false, nil
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.IsAdmin = true
	r.s.users[u.ID] = *u
	return true, nil
}

func (r *MemoryUsers) Delete(_ context.Context, id bson.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *MemoryUsers) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

var (
	_ ProductRepository  = (*MongoProducts)(nil)
	_ ProductRepository  = (*MemoryProducts)(nil)
	_ CategoryRepository = (*MongoCategories)(nil)
	_ CategoryRepository = (*MemoryCategories)(nil)
	_ UserRepository     = (*MongoUsers)(nil)
	_ UserRepository     = (*MemoryUsers)(nil)
)
