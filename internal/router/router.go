// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qooqz/auction-backend/internal/config"
	"github.com/qooqz/auction-backend/internal/handlers"
	"github.com/qooqz/auction-backend/internal/middleware"
	"github.com/qooqz/auction-backend/internal/services"
	"github.com/qooqz/auction-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	biddingService := services.NewBiddingService(db, cfg)
	auctionService := services.NewAuctionService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	// Initialize handlers
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	biddingHandler := handlers.NewBiddingHandler(biddingService)
	adminHandler := handlers.NewAdminHandler(auctionService, storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.RequestLogMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		auctions := v1.Group("/auctions")
		{
			auctions.GET("", middleware.OptionalAuth(), auctionHandler.GetAuctions)
			auctions.GET("/watched", middleware.AuthRequired(), auctionHandler.GetWatchedAuctions)
			auctions.GET("/:id", middleware.OptionalAuth(), auctionHandler.GetAuction)
			auctions.GET("/:id/status", auctionHandler.GetAuctionStatus)

			// Bidding routes
			protected := auctions.Group("")
			protected.Use(middleware.AuthRequired())
			protected.Use(middleware.BidRateLimit())
			{
				protected.POST("/:id/bid", biddingHandler.PlaceBid)
				protected.POST("/:id/buy-now", biddingHandler.BuyNow)
				protected.POST("/:id/auto-bid", biddingHandler.SetAutoBid)
				protected.DELETE("/:id/auto-bid", biddingHandler.WithdrawAutoBid)
				protected.POST("/:id/watch", biddingHandler.ToggleWatch)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/auctions", adminHandler.GetAuctions)
			admin.POST("/auctions", adminHandler.CreateAuction)
			admin.PUT("/auctions/:id", adminHandler.UpdateAuction)
			admin.DELETE("/auctions/:id", adminHandler.CancelAuction)
			admin.POST("/auctions/:id/images", middleware.UploadRateLimit(), adminHandler.UploadAuctionImage)
		}
	}

	return r
}
