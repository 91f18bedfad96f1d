package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ProductCategories = []string{"Inhaler", "Tablet", "Syrup", "Cream", "Capsule", "Soap"}

const (
	StockIn  = "in stock"
	StockOut = "out of stock"
)

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Description  string             `bson:"description" json:"description"`
	ExpiryDate   time.Time          `bson:"expiry_date" json:"expiry_date"`
	Quantity     int64              `bson:"quantity" json:"quantity"`
	Category     string             `bson:"category" json:"category"`
	Manufacturer string             `bson:"manufacturer" json:"manufacturer"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ProductFilter struct {
	Search       string
	Category     string
	Manufacturer string
	// Stock is StockIn, StockOut or empty.
	Stock string
}
