package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rentmart/server/internal/helpers"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/payments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// in-memory repositories backing the service tests

type fakeProductRepo struct {
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.products[id], nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
	for _, b := range bookings {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *fakeBookingRepo) InsertBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	r.bookings[booking.ID] = booking
	return booking, nil
}

func (r *fakeBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id], nil
}

func (r *fakeBookingRepo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBookingRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.User.ID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListReservationsForProduct(ctx context.Context, productID primitive.ObjectID) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		holds := false
		for _, s := range models.ReservationStatuses {
			if b.Status == s {
				holds = true
				break
			}
		}
		if !holds {
			continue
		}
		for _, item := range b.Items {
			if item.ProductID == productID {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateBookingFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch {
		case k == "status":
			b.Status = v.(models.BookingStatus)
		case k == "paymentStatus":
			b.PaymentStatus = v.(models.PaymentStatus)
		case strings.HasPrefix(k, "paymentInfo."):
			if b.PaymentInfo == nil {
				b.PaymentInfo = make(map[string]string)
			}
			b.PaymentInfo[strings.TrimPrefix(k, "paymentInfo.")] = v.(string)
		}
	}
	b.UpdatedAt = time.Now()
	return b, nil
}

type fakeGateway struct {
	orderID string
	err     error
	calls   int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*payments.Order, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &payments.Order{ID: g.orderID, Amount: amount, Currency: currency}, nil
}

func testClaims(userID, role string) *helpers.EnhancedClaims {
	return &helpers.EnhancedClaims{
		CustomClaims: &helpers.CustomClaims{},
		Role:         role,
		UserID:       userID,
		Name:         "Test User",
		Email:        "test@example.com",
	}
}

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}
