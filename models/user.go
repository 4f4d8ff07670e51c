package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Phone        string        `bson:"phone" json:"phone"`
	IsAdmin      bool          `bson:"isAdmin" json:"isAdmin"`
	Street       string        `bson:"street" json:"street"`
	Apartment    string        `bson:"apartment" json:"apartment"`
	Zip          string        `bson:"zip" json:"zip"`
	City         string        `bson:"city" json:"city"`
	Country      string        `bson:"country" json:"country"`
}
