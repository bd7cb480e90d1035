package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ProductColName = "products"

// RateCard is the pricing portion of a product. A tier with value 0 is
// treated as unset; DailyRate is the only tier that must be present.
type RateCard struct {
	DailyRate   float64 `bson:"dailyRate" json:"dailyRate" validate:"gte=0"`
	WeeklyRate  float64 `bson:"weeklyRate,omitempty" json:"weeklyRate,omitempty"`
	MonthlyRate float64 `bson:"monthlyRate,omitempty" json:"monthlyRate,omitempty"`
}

// Product documents are owned by the catalog service; this core only reads
// the rate card and stock. Field names match the existing collection.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Featured    bool               `bson:"featured,omitempty" json:"featured,omitempty"`
	RateCard    `bson:",inline"`
	Stock       int       `bson:"stock" json:"stock" validate:"gte=0"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type ProductRepo interface {
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
}
