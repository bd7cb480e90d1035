package container

import (
	"log/slog"

	"github.com/rentmart/server/internal/config"
	"github.com/rentmart/server/internal/models"
	"github.com/rentmart/server/internal/payments"
	"github.com/rentmart/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config

	MongoDBClient *mongo.Client

	AvailabilityService *services.AvailabilityService
	QuoteService        *services.QuoteService
	BookingService      *services.BookingService
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *slog.Logger, cfg *config.Config, mongoDBClient *mongo.Client) *Container {
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient)

	var gateway payments.Gateway
	if cfg.GatewayDemoMode {
		gateway = payments.NewDemoGateway()
		logger.Warn("Payment gateway running in demo mode; orders are not real")
	} else {
		gateway = payments.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)
	}

	availabilityService := services.NewAvailabilityService(repo, repo)
	quoteService := services.NewQuoteService(repo)
	bookingService := services.NewBookingService(
		repo, repo, gateway, availabilityService,
		cfg.GatewayKeySecret, cfg.GatewayDemoMode,
	)

	return &Container{
		Logger:              logger,
		Config:              cfg,
		MongoDBClient:       mongoDBClient,
		AvailabilityService: availabilityService,
		QuoteService:        quoteService,
		BookingService:      bookingService,
	}
}
