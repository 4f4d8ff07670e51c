package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is stored with a reference to its category; ProductView carries the
// populated category for reads.
type Product struct {
	Id              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string        `bson:"name" json:"name"`
	Description     string        `bson:"description" json:"description"`
	RichDescription string        `bson:"richDescription" json:"richDescription"`
	Image           string        `bson:"image" json:"image"`
	Images          []string      `bson:"images" json:"images"`
	Brand           string        `bson:"brand" json:"brand"`
	Price           float64       `bson:"price" json:"price"`
	Category        bson.ObjectID `bson:"category" json:"category"`
	CountInStock    int           `bson:"countInStock" json:"countInStock"`
	Rating          float64       `bson:"rating" json:"rating"`
	NumReviews      int           `bson:"numReviews" json:"numReviews"`
	IsFeatured      bool          `bson:"isFeatured" json:"isFeatured"`
	DateCreated     time.Time     `bson:"dateCreated" json:"dateCreated"`
}

// ProductView is a product with its category reference resolved. Category is
// nil when the referenced document no longer exists.
type ProductView struct {
	Product
	Category *Category `json:"category"`
}

// StoredImages returns every image URL the product references.
func (p *Product) StoredImages() []string {
	out := make([]string, 0, len(p.Images)+1)
	if p.Image != "" {
		out = append(out, p.Image)
	}
	return append(out, p.Images...)
}
