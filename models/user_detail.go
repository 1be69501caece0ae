package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDetail stores a user's preferred categories.
// Collection: user_details (unique user_id)
type UserDetail struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user"`
	Categories []int64            `bson:"categories" json:"categories"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
