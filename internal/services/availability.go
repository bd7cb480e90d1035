package services

import (
	"context"
	"time"

	"github.com/rentmart/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Availability struct {
	Available      bool `json:"available"`
	AvailableUnits int  `json:"availableUnits"`
}

type AvailabilityService struct {
	products models.ProductRepo
	bookings models.BookingRepo
}

func NewAvailabilityService(products models.ProductRepo, bookings models.BookingRepo) *AvailabilityService {
	return &AvailabilityService{products: products, bookings: bookings}
}

// Overlaps applies the half-open interval rule: [aStart,aEnd) and
// [bStart,bEnd) intersect iff each start precedes the other end. A rental
// ending exactly when another begins does not overlap, so back-to-back
// bookings of the same unit are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Check reports how many units of a product remain free for the window.
// Only pending, confirmed and active bookings hold stock. The check is
// advisory: booking creation re-checks under the product lock.
func (as *AvailabilityService) Check(ctx context.Context, productID primitive.ObjectID, start, end time.Time, quantity int) (*Availability, error) {
	if quantity < 1 {
		quantity = 1
	}
	if !end.After(start) {
		return nil, newError(CodeValidation, "endDate must be after startDate")
	}

	product, err := as.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, newError(CodeNotFound, "product not found")
	}

	reservations, err := as.bookings.ListReservationsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	reserved := 0
	for _, booking := range reservations {
		for _, item := range booking.Items {
			if item.ProductID != productID {
				continue
			}
			if Overlaps(start, end, item.StartDate, item.EndDate) {
				reserved += item.Quantity
			}
		}
	}

	units := product.Stock - reserved
	if units < 0 {
		units = 0
	}

	return &Availability{
		Available:      units >= quantity,
		AvailableUnits: units,
	}, nil
}
