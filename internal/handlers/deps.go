// internal/handlers/deps.go
package handlers

import (
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/qooqz/auction-backend/internal/models"
	"github.com/qooqz/auction-backend/internal/services"
	"github.com/qooqz/auction-backend/internal/utils"
)

// The handler layer depends on these seams rather than the concrete
// services so tests can swap in fakes without a database.

type BiddingEngine interface {
	PlaceBid(auctionID, userID uuid.UUID, amount float64, originIP string) (*services.PlaceBidResult, error)
	BuyNow(auctionID, userID uuid.UUID, originIP string) (*services.BuyNowResult, error)
	SetAutoBid(auctionID, userID uuid.UUID, maxAmount float64) (*models.AutoBidSetting, error)
	WithdrawAutoBid(auctionID, userID uuid.UUID) error
	ToggleWatch(auctionID, userID uuid.UUID) (bool, error)
}

type AuctionCatalog interface {
	ListAuctions(filter services.AuctionFilter, params utils.PaginationParams) (*utils.PaginationResult, error)
	ListAuctionsAdmin(filter services.AuctionFilter, params utils.PaginationParams) (*utils.PaginationResult, error)
	ListWatched(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error)
	GetDetail(auctionID, viewerID uuid.UUID) (*services.AuctionDetail, error)
	GetStatus(auctionID uuid.UUID) (*services.AuctionStatusSnapshot, error)
	CreateAuction(input services.CreateAuctionInput, createdBy uuid.UUID) (*models.Auction, error)
	UpdateAuction(auctionID uuid.UUID, input services.UpdateAuctionInput) (*models.Auction, error)
	CancelAuction(auctionID uuid.UUID) error
}

type ImageStorage interface {
	UploadAuctionImage(auctionID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*services.UploadResult, error)
}
