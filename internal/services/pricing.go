package services

import (
	"context"
	"math"
	"time"

	"github.com/rentmart/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	daysPerMonth = 30
	daysPerWeek  = 7

	TaxRate           = 0.08
	DeliveryFee       = 50.0
	FreeDeliveryAbove = 500.0
)

// RentalDays returns the rental duration in whole days, rounding partial
// days up. A window that ends on or before its start counts as zero days.
func RentalDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	hours := end.Sub(start).Hours()
	if math.IsInf(hours, 0) || math.IsNaN(hours) {
		return 0
	}
	return int(math.Ceil(hours / 24))
}

// PriceItem prices one line item against a rate card. Larger tiers are
// consumed first and their remainder falls through to the next tier down:
// a 35-day rental with all three tiers set is one month plus five daily
// days, not five weeks. Unset tiers (zero) degrade gracefully; the daily
// rate covers whatever remains.
func PriceItem(rate models.RateCard, start, end time.Time, quantity int) float64 {
	days := RentalDays(start, end)
	if days <= 0 {
		return 0
	}
	if quantity < 1 {
		quantity = 1
	}

	var amount float64
	if rate.MonthlyRate > 0 && days >= daysPerMonth {
		months := days / daysPerMonth
		amount += float64(months) * rate.MonthlyRate
		days = days % daysPerMonth
	}
	if rate.WeeklyRate > 0 && days >= daysPerWeek {
		weeks := days / daysPerWeek
		amount += float64(weeks) * rate.WeeklyRate
		days = days % daysPerWeek
	}
	amount += float64(days) * rate.DailyRate

	return amount * float64(quantity)
}

type QuoteItemRequest struct {
	ProductID primitive.ObjectID `json:"product" binding:"required"`
	Quantity  int                `json:"quantity"`
	StartDate time.Time          `json:"startDate" binding:"required"`
	EndDate   time.Time          `json:"endDate" binding:"required"`
}

type QuotationLine struct {
	ProductID primitive.ObjectID `json:"product"`
	Name      string             `json:"name,omitempty"`
	Quantity  int                `json:"quantity"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Days      int                `json:"days"`
	LineTotal float64            `json:"lineTotal"`
}

type Quotation struct {
	Items       []QuotationLine `json:"items"`
	Subtotal    float64         `json:"subtotal"`
	Tax         float64         `json:"tax"`
	DeliveryFee float64         `json:"deliveryFee"`
	Total       float64         `json:"total"`
}

type QuoteService struct {
	products models.ProductRepo
}

func NewQuoteService(products models.ProductRepo) *QuoteService {
	return &QuoteService{products: products}
}

// Quote prices a cart without reserving anything. Items whose product cannot
// be resolved price at zero instead of failing the whole quotation.
func (qs *QuoteService) Quote(ctx context.Context, items []QuoteItemRequest) (*Quotation, error) {
	if len(items) == 0 {
		return nil, newError(CodeValidation, "quotation requires at least one item")
	}

	quotation := &Quotation{Items: make([]QuotationLine, 0, len(items))}
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}

		line := QuotationLine{
			ProductID: item.ProductID,
			Quantity:  qty,
			StartDate: item.StartDate,
			EndDate:   item.EndDate,
			Days:      RentalDays(item.StartDate, item.EndDate),
		}

		product, err := qs.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			line.Name = product.Name
			line.LineTotal = PriceItem(product.RateCard, item.StartDate, item.EndDate, qty)
		}

		quotation.Subtotal += line.LineTotal
		quotation.Items = append(quotation.Items, line)
	}

	quotation.Tax = quotation.Subtotal * TaxRate
	// strictly greater: a subtotal of exactly 500 still pays for delivery
	if quotation.Subtotal > FreeDeliveryAbove {
		quotation.DeliveryFee = 0
	} else {
		quotation.DeliveryFee = DeliveryFee
	}
	quotation.Total = quotation.Subtotal + quotation.Tax + quotation.DeliveryFee

	return quotation, nil
}
