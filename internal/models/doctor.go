package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var Units = []string{"Pediatrics", "Gynecology", "General Medicine", "Surgery"}

type Doctor struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	DOB          time.Time          `bson:"DOB" json:"DOB"`
	Gender       string             `bson:"gender" json:"gender"`
	IsConsultant bool               `bson:"is_consultant" json:"is_consultant"`
	Unit         string             `bson:"unit" json:"unit"`
	ImgURL       string             `bson:"img_url,omitempty" json:"img_url,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	IsVerified   bool               `bson:"is_verified" json:"is_verified"`
	// HasChangedSystemGeneratedPassword gates login until the one-time
	// password mailed at creation has been replaced.
	HasChangedSystemGeneratedPassword bool       `bson:"has_changed_system_generated_password" json:"has_changed_system_generated_password"`
	Password                          string     `bson:"password" json:"-"`
	VerifyToken                       string     `bson:"verify_token,omitempty" json:"-"`
	TokenExpiresIn                    *time.Time `bson:"token_expires_in,omitempty" json:"-"`
	CreatedAt                         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt                         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (d *Doctor) FullName() string { return d.FirstName + " " + d.LastName }
