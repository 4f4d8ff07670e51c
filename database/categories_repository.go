package database

import (
	"context"

	"github.com/princinho/eshopbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoCategories struct {
	col *mongo.Collection
}

func NewMongoCategories(db *mongo.Database) *MongoCategories {
	return &MongoCategories{col: db.Collection(CategoriesCollection)}
}

func (m *MongoCategories) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Category, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (m *MongoCategories) Get(ctx context.Context, id bson.ObjectID) (*models.Category, error) {
	var cat models.Category
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		return nil, mapReadErr(err)
	}
	return &cat, nil
}

func (m *MongoCategories) Create(ctx context.Context, c *models.Category) error {
	if c.Id.IsZero() {
		c.Id = bson.NewObjectID()
	}
	_, err := m.col.InsertOne(ctx, c)
	return mapWriteErr(err)
}

func (m *MongoCategories) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	set := bson.M{"name": c.Name, "icon": c.Icon, "color": c.Color}

	var out models.Category
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": c.Id}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		return nil, mapReadErr(err)
	}
	return &out, nil
}

func (m *MongoCategories) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
