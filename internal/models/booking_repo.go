package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) InsertBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	col := mdb.GetCollection(ctx, DbName, BookingColName)

	now := time.Now()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}

	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col := mdb.GetCollection(ctx, DbName, BookingColName)

	var booking Booking
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}

	return &booking, nil
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"user.id": userID})
}

func (mdb *MongodbRepo) ListReservationsForProduct(ctx context.Context, productID primitive.ObjectID) ([]*Booking, error) {
	filter := bson.M{
		"items.product": productID,
		"status":        bson.M{"$in": ReservationStatuses},
	}
	return mdb.findBookings(ctx, filter)
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col := mdb.GetCollection(ctx, DbName, BookingColName)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	for cursor.Next(ctx) {
		var b Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %v", err)
		}
		bookings = append(bookings, &b)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}

	return bookings, nil
}

func (mdb *MongodbRepo) UpdateBookingFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Booking, error) {
	col := mdb.GetCollection(ctx, DbName, BookingColName)

	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Booking
	err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating booking: %v", err)
	}

	return &updated, nil
}
