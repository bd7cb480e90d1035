package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (mdb *MongodbRepo) GetProductByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	col := mdb.GetCollection(ctx, DbName, ProductColName)

	var product Product
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding product: %v", err)
	}

	return &product, nil
}
