package database

import (
	"context"
	"errors"

	"github.com/princinho/eshopbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// ProductFilter narrows product listings. Zero values mean "no constraint";
// Limit 0 returns everything.
type ProductFilter struct {
	CategoryIDs []bson.ObjectID
	Featured    *bool
	Limit       int64
}

type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.ProductView, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.ProductView, error)
	Create(ctx context.Context, p *models.Product) error
	// Update overwrites the editable fields of p and returns the stored product.
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	SetGallery(ctx context.Context, id bson.ObjectID, images []string) (*models.Product, error)
	// Delete removes the product and returns the deleted document.
	Delete(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	// Update overwrites profile fields; an empty PasswordHash keeps the stored one.
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
	// EnsureAdmin inserts u unless a user with its email exists. It reports
	// whether u was inserted and never modifies an existing user.
	EnsureAdmin(ctx context.Context, u *models.User) (bool, error)
}
