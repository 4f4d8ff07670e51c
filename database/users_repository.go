package database

import (
	"context"
	"strings"

	"github.com/princinho/eshopbackend/models"
	"github.com/princinho/eshopbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoUsers struct {
	col *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{col: db.Collection(UsersCollection)}
}

func (m *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{"passwordHash": 0})
	cursor, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *MongoUsers) Get(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (m *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := m.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapReadErr(err)
	}
	return &u, nil
}

func (m *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	_, err := m.col.InsertOne(ctx, u)
	return mapWriteErr(err)
}

func (m *MongoUsers) Update(ctx context.Context, u *models.User) (*models.User, error) {
	set := bson.M{
		"name":      u.Name,
		"email":     strings.ToLower(strings.TrimSpace(u.Email)),
		"phone":     u.Phone,
		"isAdmin":   u.IsAdmin,
		"street":    u.Street,
		"apartment": u.Apartment,
		"zip":       u.Zip,
		"city":      u.City,
		"country":   u.Country,
	}
	if u.PasswordHash != "" {
		set["passwordHash"] = u.PasswordHash
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.User
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, mapReadErr(err)
	}
	return &out, nil
}

func (m *MongoUsers) EnsureAdmin(ctx context.Context, u *models.User) (bool, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":         u.Name,
			"email":        u.Email,
			"passwordHash": u.PasswordHash,
			"phone":        u.Phone,
			"isAdmin":      true,
		},
	}
	opts := options.UpdateOne().SetUpsert(true)

	res, err := m.col.UpdateOne(ctx, bson.M{"email": u.Email}, update, opts)
	if err != nil {
		return false, mapWriteErr(err)
	}
	if res.UpsertedCount == 0 {
		return false, nil
	}
	if id, ok := res.UpsertedID.(bson.ObjectID); ok {
		u.ID = id
	}
	u.IsAdmin = true
	return true, nil
}

func (m *MongoUsers) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoUsers) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if utils.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}
