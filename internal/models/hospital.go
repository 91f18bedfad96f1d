package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hospital is the administrator account. Requests authenticated as a
// hospital pass the admin gate.
type Hospital struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Owner     string             `bson:"owner" json:"owner"`
	Address   string             `bson:"address" json:"address"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
