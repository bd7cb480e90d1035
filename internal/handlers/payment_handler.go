package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createOrderRequest struct {
	BookingID string  `json:"bookingId" binding:"required"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// CreateGatewayOrder asks the gateway for a payment order. The amount in
// the request body is advisory only; the order always covers the booking's
// server-computed total.
func CreateGatewayOrder(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid bookingId format"))
			return
		}

		order, err := bs.CreateGatewayOrder(c.Request.Context(), claims, bookingID, req.Currency)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

type verifyGatewayRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature"`
	BookingID string `json:"bookingId" binding:"required"`
}

func VerifyGatewayPayment(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req verifyGatewayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid bookingId format"))
			return
		}

		booking, err := bs.ConfirmPayment(c.Request.Context(), claims, bookingID, services.GatewaySignature{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		respondConfirmed(c, booking)
	}
}

type verifyOtpRequest struct {
	Otp       string `json:"otp" binding:"required"`
	BookingID string `json:"bookingId" binding:"required"`
}

func VerifyOtpPayment(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req verifyOtpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid bookingId format"))
			return
		}

		booking, err := bs.ConfirmPayment(c.Request.Context(), claims, bookingID, services.OtpCode{Code: req.Otp})
		if err != nil {
			respondError(c, err)
			return
		}

		respondConfirmed(c, booking)
	}
}

type verifyUpiRequest struct {
	BookingID string  `json:"bookingId" binding:"required"`
	UpiID     string  `json:"upiId" binding:"required"`
	Amount    float64 `json:"amount"`
}

func VerifyUpiPayment(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req verifyUpiRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid bookingId format"))
			return
		}

		booking, err := bs.ConfirmPayment(c.Request.Context(), claims, bookingID, services.UpiID{ID: req.UpiID})
		if err != nil {
			respondError(c, err)
			return
		}

		respondConfirmed(c, booking)
	}
}

type paymentFailedRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Reason    string `json:"reason"`
}

func PaymentFailed(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req paymentFailedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid bookingId format"))
			return
		}

		booking, err := bs.MarkPaymentFailed(c.Request.Context(), claims, bookingID, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

func respondConfirmed(c *gin.Context, booking *models.Booking) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": gin.H{
			"id":            booking.ID.Hex(),
			"status":        booking.Status,
			"paymentStatus": booking.PaymentStatus,
		},
	})
}
