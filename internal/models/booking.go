package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const BookingColName = "bookings"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// ReservationStatuses are the booking states that hold stock. Cancelled and
// completed bookings release their units.
var ReservationStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingActive}

type BookingItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product" validate:"required"`
	Quantity  int                `bson:"quantity" json:"quantity" validate:"min=1"`
	StartDate time.Time          `bson:"startDate" json:"startDate" validate:"required"`
	EndDate   time.Time          `bson:"endDate" json:"endDate" validate:"required"`
}

// UserSnapshot is denormalized onto the booking at creation time so that
// later profile edits do not rewrite historical bookings.
type UserSnapshot struct {
	ID    string `bson:"id" json:"id" validate:"required"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items         []BookingItem      `bson:"items" json:"items" validate:"required,min=1,dive"`
	Status        BookingStatus      `bson:"status" json:"status"`
	PaymentStatus PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	DeliveryInfo  map[string]string  `bson:"deliveryInfo,omitempty" json:"deliveryInfo,omitempty"`
	PaymentInfo   map[string]string  `bson:"paymentInfo,omitempty" json:"paymentInfo,omitempty"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	User          UserSnapshot       `bson:"user" json:"user"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt     time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IsTerminalPayment reports whether the booking already reached the paid,
// confirmed state. Re-applying a successful confirmation is a no-op.
func (b *Booking) IsTerminalPayment() bool {
	return b.PaymentStatus == PaymentPaid && b.Status != BookingPending
}

type BookingRepo interface {
	InsertBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookings(ctx context.Context) ([]*Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*Booking, error)
	// ListReservationsForProduct returns every booking in a reservation-holding
	// state with at least one line item for the product.
	ListReservationsForProduct(ctx context.Context, productID primitive.ObjectID) ([]*Booking, error)
	UpdateBookingFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Booking, error)
}
