package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentmart/server/internal/helpers"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/payments"
	"github.com/rentmart/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProductRepo struct {
	products map[primitive.ObjectID]*models.Product
}

func (r *stubProductRepo) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.products[id], nil
}

type stubBookingRepo struct {
	bookings map[primitive.ObjectID]*models.Booking
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (r *stubBookingRepo) InsertBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = b
	return b, nil
}

func (r *stubBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return r.bookings[id], nil
}

func (r *stubBookingRepo) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	out := make([]*models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (r *stubBookingRepo) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.User.ID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) ListReservationsForProduct(ctx context.Context, productID primitive.ObjectID) ([]*models.Booking, error) {
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

func (r *stubBookingRepo) UpdateBookingFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Booking, error) {
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
	return b, nil
}

func authAs(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &helpers.EnhancedClaims{
			CustomClaims: &helpers.CustomClaims{},
			UserID:       userID,
			Role:         role,
			Name:         "Test User",
			Email:        "test@example.com",
		})
		c.Next()
	}
}

type testEnv struct {
	router  *gin.Engine
	drill   *models.Product
	booking *services.BookingService
	repo    *stubBookingRepo
}

func newTestEnv(userID string) *testEnv {
	drill := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Drill",
		RateCard: models.RateCard{DailyRate: 15},
		Stock:    3,
	}
	products := &stubProductRepo{products: map[primitive.ObjectID]*models.Product{drill.ID: drill}}
	repo := newStubBookingRepo()

	availability := services.NewAvailabilityService(products, repo)
	quotes := services.NewQuoteService(products)
	bookingSvc := services.NewBookingService(products, repo, payments.NewDemoGateway(), availability, "handler-test-secret", false)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/bookings/check-availability", CheckAvailability(availability))
	api.POST("/quotations", CreateQuotation(quotes))

	authed := api.Group("")
	authed.Use(authAs(userID, "customer"))
	authed.POST("/bookings", CreateBooking(bookingSvc))
	authed.GET("/bookings", ListBookings(bookingSvc))
	authed.POST("/payments/gateway/verify", VerifyGatewayPayment(bookingSvc))
	authed.POST("/payments/otp/verify", VerifyOtpPayment(bookingSvc))

	return &testEnv{router: router, drill: drill, booking: bookingSvc, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	env := newTestEnv("alice")

	w := env.do(t, http.MethodPost, "/api/v1/bookings/check-availability", gin.H{
		"productId": env.drill.ID.Hex(),
		"startDate": "2025-01-01T00:00:00Z",
		"endDate":   "2025-01-05T00:00:00Z",
		"quantity":  1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var got struct {
		Available      bool `json:"available"`
		AvailableUnits int  `json:"availableUnits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Available || got.AvailableUnits != 3 {
		t.Errorf("response = %+v, want available with 3 units", got)
	}
}

func TestCheckAvailabilityRejectsBadProductID(t *testing.T) {
	env := newTestEnv("alice")
	w := env.do(t, http.MethodPost, "/api/v1/bookings/check-availability", gin.H{
		"productId": "not-a-hex-id",
		"startDate": "2025-01-01T00:00:00Z",
		"endDate":   "2025-01-05T00:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateQuotationEndpoint(t *testing.T) {
	env := newTestEnv("alice")

	w := env.do(t, http.MethodPost, "/api/v1/quotations", gin.H{
		"items": []gin.H{{
			"product":   env.drill.ID.Hex(),
			"quantity":  1,
			"startDate": "2025-01-01T00:00:00Z",
			"endDate":   "2025-01-03T00:00:00Z",
		}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var got struct {
		Quotation struct {
			Subtotal    float64 `json:"subtotal"`
			Tax         float64 `json:"tax"`
			DeliveryFee float64 `json:"deliveryFee"`
			Total       float64 `json:"total"`
		} `json:"quotation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// 2 days x 15 = 30, tax 2.4, delivery 50
	if got.Quotation.Subtotal != 30 || got.Quotation.DeliveryFee != 50 {
		t.Errorf("quotation = %+v", got.Quotation)
	}
	if got.Quotation.Total != 30+30*services.TaxRate+50 {
		t.Errorf("total = %v", got.Quotation.Total)
	}
}

func TestBookingAndPaymentFlow(t *testing.T) {
	env := newTestEnv("alice")

	w := env.do(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"items": []gin.H{{
			"product":   env.drill.ID.Hex(),
			"quantity":  1,
			"startDate": "2025-01-01T00:00:00Z",
			"endDate":   "2025-01-03T00:00:00Z",
		}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking status = %d, body %s", w.Code, w.Body.String())
	}

	var created struct {
		Booking struct {
			ID            string  `json:"id"`
			Status        string  `json:"status"`
			PaymentStatus string  `json:"paymentStatus"`
			TotalAmount   float64 `json:"totalAmount"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Booking.Status != "pending" || created.Booking.TotalAmount != 30 {
		t.Errorf("created booking = %+v", created.Booking)
	}

	// a well-formed OTP confirms the booking
	w = env.do(t, http.MethodPost, "/api/v1/payments/otp/verify", gin.H{
		"bookingId": created.Booking.ID,
		"otp":       "123456",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("otp verify status = %d, body %s", w.Code, w.Body.String())
	}

	var confirmed struct {
		Success bool `json:"success"`
		Booking struct {
			Status        string `json:"status"`
			PaymentStatus string `json:"paymentStatus"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &confirmed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !confirmed.Success || confirmed.Booking.Status != "confirmed" || confirmed.Booking.PaymentStatus != "paid" {
		t.Errorf("confirm response = %+v", confirmed)
	}
}

func TestVerifyGatewayPaymentBadSignatureStatus(t *testing.T) {
	env := newTestEnv("alice")

	w := env.do(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"items": []gin.H{{
			"product":   env.drill.ID.Hex(),
			"quantity":  1,
			"startDate": "2025-02-01T00:00:00Z",
			"endDate":   "2025-02-03T00:00:00Z",
		}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking status = %d", w.Code)
	}
	var created struct {
		Booking struct {
			ID string `json:"id"`
		} `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = env.do(t, http.MethodPost, "/api/v1/payments/gateway/verify", gin.H{
		"bookingId": created.Booking.ID,
		"orderId":   "order_x",
		"paymentId": "pay_y",
		"signature": "forged",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("forged signature status = %d, want 400", w.Code)
	}
}

func TestProtectedEndpointWithoutClaims(t *testing.T) {
	env := newTestEnv("alice")

	// route registered without the auth stub
	bare := gin.New()
	bare.GET("/bookings", ListBookings(env.booking))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	w := httptest.NewRecorder()
	bare.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
