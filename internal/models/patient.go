package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	BloodGroups = []string{"A+", "B+", "AB+", "0+", "A-", "B-", "AB-", "0-"}
	Genotypes   = []string{"AA", "AS", "SS"}
	Genders     = []string{"male", "female"}
)

type Patient struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PatientID      string             `bson:"patient_id" json:"patient_id"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone" json:"phone"`
	DOB            time.Time          `bson:"DOB" json:"DOB"`
	BloodGroup     string             `bson:"blood_group" json:"blood_group"`
	Genotype       string             `bson:"genotype" json:"genotype"`
	Gender         string             `bson:"gender" json:"gender"`
	ImgURL         string             `bson:"img_url,omitempty" json:"img_url,omitempty"`
	IsVerified     bool               `bson:"is_verified" json:"is_verified"`
	Password       string             `bson:"password" json:"-"`
	VerifyToken    string             `bson:"verify_token,omitempty" json:"-"`
	TokenExpiresIn *time.Time         `bson:"token_expires_in,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Patient) FullName() string { return p.FirstName + " " + p.LastName }
