package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/princinho/eshopbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoProducts is the MongoDB-backed ProductRepository.
type MongoProducts struct {
	col *mongo.Collection
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{col: db.Collection(ProductsCollection)}
}

// productRecord is what the populate pipeline yields: the product plus the
// $lookup result array.
type productRecord struct {
	models.Product `bson:",inline"`
	CategoryDoc    []models.Category `bson:"categoryDoc"`
}

func (r productRecord) view() models.ProductView {
	v := models.ProductView{Product: r.Product}
	if len(r.CategoryDoc) > 0 {
		cat := r.CategoryDoc[0]
		v.Category = &cat
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	return v
}

func productMatch(f ProductFilter) bson.D {
	match := bson.D{}
	if len(f.CategoryIDs) > 0 {
		match = append(match, bson.E{Key: "category", Value: bson.M{"$in": f.CategoryIDs}})
	}
	if f.Featured != nil {
		match = append(match, bson.E{Key: "isFeatured", Value: *f.Featured})
	}
	return match
}

// productPipeline filters, orders by insertion and populates "category".
func productPipeline(match bson.D, limit int64) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: CategoriesCollection},
		{Key: "localField", Value: "category"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "categoryDoc"},
	}}})
}

func (m *MongoProducts) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.ProductView, error) {
	cursor, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.ProductView, 0)
	for cursor.Next(ctx) {
		var rec productRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec.view())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoProducts) List(ctx context.Context, f ProductFilter) ([]models.ProductView, error) {
	return m.aggregate(ctx, productPipeline(productMatch(f), f.Limit))
}

func (m *MongoProducts) Get(ctx context.Context, id bson.ObjectID) (*models.ProductView, error) {
	items, err := m.aggregate(ctx, productPipeline(bson.D{{Key: "_id", Value: id}}, 1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (m *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	if p.Id.IsZero() {
		p.Id = bson.NewObjectID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.DateCreated = time.Now().UTC()
	_, err := m.col.InsertOne(ctx, p)
	return mapWriteErr(err)
}

func (m *MongoProducts) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	set := bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"richDescription": p.RichDescription,
		"image":           p.Image,
		"brand":           p.Brand,
		"price":           p.Price,
		"category":        p.Category,
		"countInStock":    p.CountInStock,
		"rating":          p.Rating,
		"numReviews":      p.NumReviews,
		"isFeatured":      p.IsFeatured,
	}
	return m.findOneAndSet(ctx, p.Id, set)
}

func (m *MongoProducts) SetGallery(ctx context.Context, id bson.ObjectID, images []string) (*models.Product, error) {
	return m.findOneAndSet(ctx, id, bson.M{"images": images})
}

func (m *MongoProducts) findOneAndSet(ctx context.Context, id bson.ObjectID, set bson.M) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Product
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &out, nil
}

func (m *MongoProducts) Delete(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var out models.Product
	if err := m.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, mapReadErr(err)
	}
	return &out, nil
}

func (m *MongoProducts) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func mapReadErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
