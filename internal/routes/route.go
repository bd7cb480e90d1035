package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rentmart/server/internal/container"
	"github.com/rentmart/server/internal/handlers"
	"github.com/rentmart/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "rentmart-api",
			})
		})

		// public routes: quoting and availability need no identity
		v1.POST("/bookings/check-availability", handlers.CheckAvailability(container.AvailabilityService))
		v1.POST("/quotations", handlers.CreateQuotation(container.QuoteService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Config, container.Logger))

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("", handlers.ListBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PUT("/:id/cancel", handlers.CancelBooking(container.BookingService))
		bookingRoutes.GET("/:id/invoice", handlers.BookingInvoice(container.BookingService))
	}

	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.POST("/gateway/create-order", handlers.CreateGatewayOrder(container.BookingService))
		paymentRoutes.POST("/gateway/verify", handlers.VerifyGatewayPayment(container.BookingService))
		paymentRoutes.POST("/otp/verify", handlers.VerifyOtpPayment(container.BookingService))
		paymentRoutes.POST("/upi/verify", handlers.VerifyUpiPayment(container.BookingService))
		paymentRoutes.POST("/fail", handlers.PaymentFailed(container.BookingService))
	}

	return r
}
