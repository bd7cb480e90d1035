package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/rentmart/server/internal/helpers"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/payments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	otpPattern = regexp.MustCompile(`^\d{6}$`)
	upiPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z]{3,}$`)
)

// PaymentEvidence is what a caller presents to prove a payment happened.
// Each variant has its own verification predicate; all of them converge on
// the same confirm transition.
type PaymentEvidence interface {
	Method() string
}

type GatewaySignature struct {
	OrderID   string
	PaymentID string
	Signature string
}

func (GatewaySignature) Method() string { return "gateway" }

// OtpCode is a demo verification path: any well-formed six-digit code is
// accepted. No real OTP is ever delivered.
type OtpCode struct {
	Code string
}

func (OtpCode) Method() string { return "otp" }

// UpiID is a demo verification path: a syntactically valid UPI id is
// accepted without settlement.
type UpiID struct {
	ID string
}

func (UpiID) Method() string { return "upi" }

type CreateBookingRequest struct {
	Items        []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryInfo map[string]string  `json:"deliveryInfo"`
	PaymentInfo  map[string]string  `json:"paymentInfo"`
}

type GatewayOrderResult struct {
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	BookingID string  `json:"bookingId"`
}

type BookingService struct {
	products     models.ProductRepo
	bookings     models.BookingRepo
	gateway      payments.Gateway
	availability *AvailabilityService

	gatewaySecret string
	demoMode      bool

	// per-product mutexes serializing booking creation so the availability
	// re-check and the insert cannot interleave with another create
	locks sync.Map
}

func NewBookingService(
	products models.ProductRepo,
	bookings models.BookingRepo,
	gateway payments.Gateway,
	availability *AvailabilityService,
	gatewaySecret string,
	demoMode bool,
) *BookingService {
	return &BookingService{
		products:      products,
		bookings:      bookings,
		gateway:       gateway,
		availability:  availability,
		gatewaySecret: gatewaySecret,
		demoMode:      demoMode,
	}
}

// Create validates the cart, recomputes the total server-side and inserts
// the booking as pending/unpaid. Any client-supplied total is ignored: the
// amount the customer owes is always the sum of the engine's line prices.
func (bs *BookingService) Create(ctx context.Context, claims *helpers.EnhancedClaims, req CreateBookingRequest) (*models.Booking, error) {
	if len(req.Items) == 0 {
		return nil, newError(CodeValidation, "booking requires at least one item")
	}

	items := make([]models.BookingItem, 0, len(req.Items))
	resolved := make(map[primitive.ObjectID]*models.Product, len(req.Items))
	total := 0.0

	for _, item := range req.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if !item.EndDate.After(item.StartDate) {
			return nil, newError(CodeValidation, "endDate must be after startDate")
		}

		product, ok := resolved[item.ProductID]
		if !ok {
			var err error
			product, err = bs.products.GetProductByID(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, newError(CodeValidation, fmt.Sprintf("invalid product %s in booking items", item.ProductID.Hex()))
			}
			resolved[item.ProductID] = product
		}

		total += PriceItem(product.RateCard, item.StartDate, item.EndDate, qty)
		items = append(items, models.BookingItem{
			ProductID: item.ProductID,
			Quantity:  qty,
			StartDate: item.StartDate,
			EndDate:   item.EndDate,
		})
	}

	productIDs := make([]primitive.ObjectID, 0, len(resolved))
	for id := range resolved {
		productIDs = append(productIDs, id)
	}
	unlock := bs.lockProducts(productIDs)
	defer unlock()

	// Re-check availability inside the critical section. Sibling items of
	// this booking for the same product count against the window too.
	for i, item := range items {
		sibling := 0
		for j := 0; j < i; j++ {
			if items[j].ProductID == item.ProductID &&
				Overlaps(item.StartDate, item.EndDate, items[j].StartDate, items[j].EndDate) {
				sibling += items[j].Quantity
			}
		}
		avail, err := bs.availability.Check(ctx, item.ProductID, item.StartDate, item.EndDate, 1)
		if err != nil {
			return nil, err
		}
		if avail.AvailableUnits-sibling < item.Quantity {
			return nil, newError(CodeConflict, fmt.Sprintf("product %s has only %d unit(s) available for the requested window",
				resolved[item.ProductID].Name, avail.AvailableUnits))
		}
	}

	booking := &models.Booking{
		Items:         items,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		DeliveryInfo:  req.DeliveryInfo,
		PaymentInfo:   req.PaymentInfo,
		TotalAmount:   total,
		User: models.UserSnapshot{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
		},
	}

	return bs.bookings.InsertBooking(ctx, booking)
}

// Get returns a booking visible to the caller: its owner or an admin.
func (bs *BookingService) Get(ctx context.Context, claims *helpers.EnhancedClaims, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, newError(CodeNotFound, "booking not found")
	}
	if !claims.IsOwner(booking.User.ID) && !claims.IsAdmin() {
		return nil, newError(CodeForbidden, "you can only access your own bookings")
	}
	return booking, nil
}

// List returns the caller's bookings, newest first. Admins see all bookings.
func (bs *BookingService) List(ctx context.Context, claims *helpers.EnhancedClaims) ([]*models.Booking, error) {
	if claims.IsAdmin() {
		return bs.bookings.ListBookings(ctx)
	}
	return bs.bookings.ListBookingsByUser(ctx, claims.UserID)
}

// Cancel transitions a booking to cancelled. Bookings are never deleted;
// the payment status is left as-is.
func (bs *BookingService) Cancel(ctx context.Context, claims *helpers.EnhancedClaims, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return booking, nil
	}

	updated, err := bs.bookings.UpdateBookingFields(ctx, booking.ID, map[string]interface{}{
		"status": models.BookingCancelled,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, newError(CodeNotFound, "booking not found")
	}
	return updated, nil
}

// CreateGatewayOrder asks the payment gateway for an order covering the
// booking's server-computed total and marks the payment as processing. A
// gateway failure is surfaced to the caller; there is no silent fallback to
// an unauthenticated order.
func (bs *BookingService) CreateGatewayOrder(ctx context.Context, claims *helpers.EnhancedClaims, bookingID primitive.ObjectID, currency string) (*GatewayOrderResult, error) {
	booking, err := bs.Get(ctx, claims, bookingID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = "INR"
	}

	order, err := bs.gateway.CreateOrder(ctx, booking.TotalAmount, currency, booking.ID.Hex())
	if err != nil {
		return nil, newError(CodeGateway, err.Error())
	}

	_, err = bs.bookings.UpdateBookingFields(ctx, booking.ID, map[string]interface{}{
		"paymentStatus":              models.PaymentProcessing,
		"paymentInfo.gatewayOrderId": order.ID,
		"paymentInfo.method":         "gateway",
	})
	if err != nil {
		return nil, err
	}

	return &GatewayOrderResult{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		BookingID: booking.ID.Hex(),
	}, nil
}

// ConfirmPayment verifies the presented evidence and applies the confirm
// transition: paymentStatus becomes paid, and a pending booking becomes
// confirmed. Confirming an already-paid booking is a no-op, not an error.
func (bs *BookingService) ConfirmPayment(ctx context.Context, claims *helpers.EnhancedClaims, bookingID primitive.ObjectID, evidence PaymentEvidence) (*models.Booking, error) {
	booking, err := bs.Get(ctx, claims, bookingID)
	if err != nil {
		return nil, err
	}

	info := map[string]interface{}{
		"paymentInfo.method":     evidence.Method(),
		"paymentInfo.verifiedAt": time.Now().Format(time.RFC3339),
	}

	switch ev := evidence.(type) {
	case GatewaySignature:
		if ev.OrderID == "" || ev.PaymentID == "" {
			return nil, newError(CodeValidation, "orderId and paymentId are required")
		}
		if bs.demoMode && payments.IsDemoOrder(ev.OrderID) {
			info["paymentInfo.signatureVerified"] = "demo"
		} else {
			if ev.Signature == "" {
				return nil, newError(CodeValidation, "signature is required")
			}
			if !payments.VerifySignature(bs.gatewaySecret, ev.OrderID, ev.PaymentID, ev.Signature) {
				return nil, newError(CodeSignature, "invalid payment signature")
			}
			info["paymentInfo.signatureVerified"] = "true"
		}
		info["paymentInfo.gatewayOrderId"] = ev.OrderID
		info["paymentInfo.gatewayPaymentId"] = ev.PaymentID
	case OtpCode:
		if !otpPattern.MatchString(ev.Code) {
			return nil, newError(CodeValidation, "OTP must be a 6-digit code")
		}
	case UpiID:
		if !upiPattern.MatchString(ev.ID) {
			return nil, newError(CodeValidation, "invalid UPI id")
		}
		info["paymentInfo.upiId"] = ev.ID
	default:
		return nil, newError(CodeValidation, "unsupported payment evidence")
	}

	// Idempotent confirmation: re-verifying a paid booking changes nothing.
	if booking.PaymentStatus == models.PaymentPaid {
		return booking, nil
	}

	info["paymentStatus"] = models.PaymentPaid
	if booking.Status == models.BookingPending {
		info["status"] = models.BookingConfirmed
	}

	updated, err := bs.bookings.UpdateBookingFields(ctx, booking.ID, info)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, newError(CodeNotFound, "booking not found")
	}
	return updated, nil
}

// MarkPaymentFailed records an explicitly failed payment attempt. The
// booking status is left unchanged so the customer can retry.
func (bs *BookingService) MarkPaymentFailed(ctx context.Context, claims *helpers.EnhancedClaims, bookingID primitive.ObjectID, reason string) (*models.Booking, error) {
	booking, err := bs.Get(ctx, claims, bookingID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"paymentStatus": models.PaymentFailed,
	}
	if reason != "" {
		fields["paymentInfo.failureReason"] = reason
	}

	updated, err := bs.bookings.UpdateBookingFields(ctx, booking.ID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, newError(CodeNotFound, "booking not found")
	}
	return updated, nil
}

// Invoice renders a PDF invoice for a booking the caller may access.
func (bs *BookingService) Invoice(ctx context.Context, claims *helpers.EnhancedClaims, id primitive.ObjectID) ([]byte, string, error) {
	booking, err := bs.Get(ctx, claims, id)
	if err != nil {
		return nil, "", err
	}

	names := make(map[string]string, len(booking.Items))
	for _, item := range booking.Items {
		if _, ok := names[item.ProductID.Hex()]; ok {
			continue
		}
		product, err := bs.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, "", err
		}
		if product != nil {
			names[item.ProductID.Hex()] = product.Name
		}
	}

	return BuildInvoicePDF(booking, names)
}

// lockProducts acquires the per-product mutexes in a stable order and
// returns a func releasing them in reverse.
func (bs *BookingService) lockProducts(ids []primitive.ObjectID) func() {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.Hex())
	}
	sort.Strings(keys)

	held := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		v, _ := bs.locks.LoadOrStore(key, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		held = append(held, mu)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
