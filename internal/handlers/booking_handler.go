package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type availabilityRequest struct {
	ProductID string    `json:"productId" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	Quantity  int       `json:"quantity"`
}

func CheckAvailability(av *services.AvailabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req availabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid productId format"))
			return
		}

		availability, err := av.Check(c.Request.Context(), productID, req.StartDate, req.EndDate, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, availability)
	}
}

type quotationRequest struct {
	Items []services.QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

func CreateQuotation(qs *services.QuoteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		quotation, err := qs.Quote(c.Request.Context(), req.Items)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"quotation": quotation})
	}
}

func CreateBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req services.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		booking, err := bs.Create(c.Request.Context(), claims, req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"booking": booking})
	}
}

func ListBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		bookings, err := bs.List(c.Request.Context(), claims)
		if err != nil {
			respondError(c, err)
			return
		}
		if bookings == nil {
			bookings = []*models.Booking{}
		}

		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

func GetBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		booking, err := bs.Get(c.Request.Context(), claims, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

func CancelBooking(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		booking, err := bs.Cancel(c.Request.Context(), claims, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": booking})
	}
}

func BookingInvoice(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}

		pdf, filename, err := bs.Invoice(c.Request.Context(), claims, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
