// internal/services/auction_service.go
package services

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qooqz/auction-backend/internal/auctionerrors"
	"github.com/qooqz/auction-backend/internal/config"
	"github.com/qooqz/auction-backend/internal/models"
	"github.com/qooqz/auction-backend/internal/utils"
)

// AuctionService serves the read paths and the admin catalog operations.
// Nothing here mutates bidding aggregates; that stays with BiddingService.
type AuctionService struct {
	db     *gorm.DB
	config *config.Config
}

// AllowedAuctionSortFields is the order-by allowlist for admin listings.
var AllowedAuctionSortFields = []string{
	"created_at", "end_date", "start_date", "current_price",
	"total_bids", "title", "status",
}

const detailBidHistoryLimit = 20

type AuctionFilter struct {
	TenantID    *uuid.UUID
	Status      models.AuctionStatus
	AuctionType models.AuctionType
	Featured    *bool
	Search      string
}

type AuctionDetail struct {
	Auction       *models.Auction        `json:"auction"`
	Bids          []models.Bid           `json:"bids"`
	IsWatching    bool                   `json:"is_watching"`
	WatcherCount  int64                  `json:"watcher_count"`
	AutoBid       *models.AutoBidSetting `json:"auto_bid,omitempty"`
	MinimumBid    float64                `json:"minimum_bid"`
	ServerTime    time.Time              `json:"server_time"`
	TimeRemaining int64                  `json:"time_remaining_seconds"`
}

// AuctionStatusSnapshot is the lightweight polling payload.
type AuctionStatusSnapshot struct {
	Status        models.AuctionStatus `json:"status"`
	CurrentPrice  float64              `json:"current_price"`
	MinimumBid    float64              `json:"minimum_bid"`
	TotalBids     int                  `json:"total_bids"`
	TotalBidders  int                  `json:"total_bidders"`
	EndDate       time.Time            `json:"end_date"`
	ServerTime    time.Time            `json:"server_time"`
	TimeRemaining int64                `json:"time_remaining_seconds"`
}

type CreateAuctionInput struct {
	TenantID             uuid.UUID          `json:"tenant_id" validate:"required"`
	ProductID            *uuid.UUID         `json:"product_id"`
	Title                string             `json:"title" validate:"required,min=3,max=255"`
	Description          string             `json:"description"`
	AuctionType          models.AuctionType `json:"auction_type" validate:"required,oneof=normal reserve buy_now dutch sealed_bid"`
	StartingPrice        float64            `json:"starting_price" validate:"required,gt=0"`
	ReservePrice         *float64           `json:"reserve_price"`
	BuyNowPrice          *float64           `json:"buy_now_price"`
	BidIncrement         float64            `json:"bid_increment" validate:"gt=0"`
	CurrencyCode         string             `json:"currency_code" validate:"omitempty,currency_code"`
	AutoBidEnabled       bool               `json:"auto_bid_enabled"`
	StartDate            time.Time          `json:"start_date" validate:"required"`
	EndDate              time.Time          `json:"end_date" validate:"required"`
	AutoExtend           bool               `json:"auto_extend"`
	ExtendMinutes        int                `json:"extend_minutes"`
	MinExtendBidTime     int                `json:"min_extend_bid_time"`
	IsFeatured           bool               `json:"is_featured"`
	ConditionType        models.ConditionType `json:"condition_type"`
	Quantity             int                `json:"quantity"`
	ShippingCost         float64            `json:"shipping_cost"`
	PaymentDeadlineHours int                `json:"payment_deadline_hours"`
	Images               []string           `json:"images"`
	Tags                 []string           `json:"tags"`
	Notes                string             `json:"notes"`
}

type UpdateAuctionInput struct {
	Title            *string               `json:"title" validate:"omitempty,min=3,max=255"`
	Description      *string               `json:"description"`
	ReservePrice     *float64              `json:"reserve_price"`
	BuyNowPrice      *float64              `json:"buy_now_price"`
	BidIncrement     *float64              `json:"bid_increment" validate:"omitempty,gt=0"`
	AutoBidEnabled   *bool                 `json:"auto_bid_enabled"`
	EndDate          *time.Time            `json:"end_date"`
	AutoExtend       *bool                 `json:"auto_extend"`
	ExtendMinutes    *int                  `json:"extend_minutes"`
	MinExtendBidTime *int                  `json:"min_extend_bid_time"`
	IsFeatured       *bool                 `json:"is_featured"`
	Status           *models.AuctionStatus `json:"status" validate:"omitempty,oneof=scheduled active ended cancelled"`
	Images           []string              `json:"images"`
	Tags             []string              `json:"tags"`
	Notes            *string               `json:"notes"`
}

func NewAuctionService(db *gorm.DB, config *config.Config) *AuctionService {
	return &AuctionService{
		db:     db,
		config: config,
	}
}

// ListAuctions returns the storefront listing: featured first, then by
// soonest ending, the ordering the auction grid renders.
func (s *AuctionService) ListAuctions(filter AuctionFilter, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Auction{})
	query = s.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, s.listFailure("list_auctions", err)
	}

	var auctions []models.Auction
	err := utils.ApplyPagination(query, params).
		Order("is_featured DESC, end_date ASC").
		Find(&auctions).Error
	if err != nil {
		return nil, s.listFailure("list_auctions", err)
	}

	result := utils.CreatePaginationResult(auctions, total, params)
	return &result, nil
}

// ListAuctionsAdmin is the back-office listing with caller-chosen ordering,
// restricted to the sort allowlist.
func (s *AuctionService) ListAuctionsAdmin(filter AuctionFilter, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Auction{})
	query = s.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, s.listFailure("list_auctions_admin", err)
	}

	var auctions []models.Auction
	err := utils.ApplySort(utils.ApplyPagination(query, params), params, AllowedAuctionSortFields).
		Find(&auctions).Error
	if err != nil {
		return nil, s.listFailure("list_auctions_admin", err)
	}

	result := utils.CreatePaginationResult(auctions, total, params)
	return &result, nil
}

func (s *AuctionService) applyFilter(query *gorm.DB, filter AuctionFilter) *gorm.DB {
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuctionType != "" {
		query = query.Where("auction_type = ?", filter.AuctionType)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", term, term)
	}
	return query
}

// GetDetail assembles the auction page payload: the auction row, the last
// bids (highest first, newest breaking ties), and the viewer's watch and
// auto-bid state when authenticated.
func (s *AuctionService) GetDetail(auctionID, viewerID uuid.UUID) (*AuctionDetail, error) {
	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.listFailure("get_detail", err)
	}

	var bids []models.Bid
	if err := s.db.Where("auction_id = ?", auctionID).
		Order("amount DESC, created_at DESC").
		Limit(detailBidHistoryLimit).
		Find(&bids).Error; err != nil {
		return nil, s.listFailure("get_detail", err)
	}

	var watcherCount int64
	if err := s.db.Model(&models.AuctionWatcher{}).
		Where("auction_id = ?", auctionID).
		Count(&watcherCount).Error; err != nil {
		return nil, s.listFailure("get_detail", err)
	}

	now := time.Now()
	detail := &AuctionDetail{
		Auction:       &auction,
		Bids:          bids,
		WatcherCount:  watcherCount,
		MinimumBid:    auction.MinimumBid(),
		ServerTime:    now,
		TimeRemaining: remainingSeconds(&auction, now),
	}

	if viewerID != uuid.Nil {
		var watching int64
		if err := s.db.Model(&models.AuctionWatcher{}).
			Where("auction_id = ? AND user_id = ?", auctionID, viewerID).
			Count(&watching).Error; err != nil {
			return nil, s.listFailure("get_detail", err)
		}
		detail.IsWatching = watching > 0

		var setting models.AutoBidSetting
		err := s.db.Where("auction_id = ? AND user_id = ? AND is_active", auctionID, viewerID).
			First(&setting).Error
		switch {
		case err == nil:
			detail.AutoBid = &setting
		case errors.Is(err, gorm.ErrRecordNotFound):
			// viewer has no active ceiling
		default:
			return nil, s.listFailure("get_detail", err)
		}
	}

	return detail, nil
}

// GetStatus is the polling endpoint's payload: cheap enough to hit every
// few seconds from every open auction page.
func (s *AuctionService) GetStatus(auctionID uuid.UUID) (*AuctionStatusSnapshot, error) {
	var auction models.Auction
	if err := s.db.Select("id", "status", "current_price", "bid_increment",
		"total_bids", "total_bidders", "end_date").
		First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.listFailure("get_status", err)
	}

	now := time.Now()
	return &AuctionStatusSnapshot{
		Status:        auction.Status,
		CurrentPrice:  auction.CurrentPrice,
		MinimumBid:    auction.MinimumBid(),
		TotalBids:     auction.TotalBids,
		TotalBidders:  auction.TotalBidders,
		EndDate:       auction.EndDate,
		ServerTime:    now,
		TimeRemaining: remainingSeconds(&auction, now),
	}, nil
}

// ListWatched returns the auctions on the caller's watchlist, soonest
// ending first.
func (s *AuctionService) ListWatched(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	if userID == uuid.Nil {
		return nil, auctionerrors.ErrUnauthenticated
	}

	query := s.db.Model(&models.Auction{}).
		Joins("JOIN auction_watchers w ON w.auction_id = auctions.id").
		Where("w.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, s.listFailure("list_watched", err)
	}

	var auctions []models.Auction
	if err := utils.ApplyPagination(query, params).
		Order("auctions.end_date ASC").
		Find(&auctions).Error; err != nil {
		return nil, s.listFailure("list_watched", err)
	}

	result := utils.CreatePaginationResult(auctions, total, params)
	return &result, nil
}

// CreateAuction inserts a new catalog entry (admin only). Status starts
// scheduled or active depending on the start date.
func (s *AuctionService) CreateAuction(input CreateAuctionInput, createdBy uuid.UUID) (*models.Auction, error) {
	if createdBy == uuid.Nil {
		return nil, auctionerrors.ErrUnauthenticated
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, auctionerrors.ErrInvalidAmount
	}
	if input.AuctionType == models.AuctionTypeBuyNow && (input.BuyNowPrice == nil || *input.BuyNowPrice <= 0) {
		return nil, auctionerrors.ErrNoBuyNowPrice
	}

	now := time.Now()
	status := models.AuctionStatusScheduled
	if !input.StartDate.After(now) {
		status = models.AuctionStatusActive
	}

	auction := models.Auction{
		TenantID:             input.TenantID,
		ProductID:            input.ProductID,
		CreatedBy:            createdBy,
		Title:                input.Title,
		Slug:                 GenerateSlug(input.Title),
		Description:          input.Description,
		AuctionType:          input.AuctionType,
		StartingPrice:        input.StartingPrice,
		ReservePrice:         input.ReservePrice,
		BuyNowPrice:          input.BuyNowPrice,
		BidIncrement:         input.BidIncrement,
		CurrencyCode:         input.CurrencyCode,
		AutoBidEnabled:       input.AutoBidEnabled,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		AutoExtend:           input.AutoExtend,
		ExtendMinutes:        input.ExtendMinutes,
		MinExtendBidTime:     input.MinExtendBidTime,
		IsFeatured:           input.IsFeatured,
		ConditionType:        input.ConditionType,
		Quantity:             input.Quantity,
		ShippingCost:         input.ShippingCost,
		PaymentDeadlineHours: input.PaymentDeadlineHours,
		Images:               input.Images,
		Tags:                 input.Tags,
		Notes:                input.Notes,
		Status:               status,
		CurrentPrice:         input.StartingPrice,
	}
	if auction.BidIncrement <= 0 {
		auction.BidIncrement = 5.00
	}
	if auction.CurrencyCode == "" {
		auction.CurrencyCode = "USD"
	}
	if auction.Quantity <= 0 {
		auction.Quantity = 1
	}

	if err := s.db.Create(&auction).Error; err != nil {
		return nil, s.listFailure("create_auction", err)
	}
	return &auction, nil
}

// UpdateAuction applies a partial update. Terminal auctions are immutable.
func (s *AuctionService) UpdateAuction(auctionID uuid.UUID, input UpdateAuctionInput) (*models.Auction, error) {
	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.listFailure("update_auction", err)
	}
	if auction.Status.IsTerminal() {
		return nil, auctionerrors.ErrAuctionNotActive
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
		updates["slug"] = GenerateSlug(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ReservePrice != nil {
		updates["reserve_price"] = *input.ReservePrice
	}
	if input.BuyNowPrice != nil {
		updates["buy_now_price"] = *input.BuyNowPrice
	}
	if input.BidIncrement != nil {
		updates["bid_increment"] = *input.BidIncrement
	}
	if input.AutoBidEnabled != nil {
		updates["auto_bid_enabled"] = *input.AutoBidEnabled
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	if input.AutoExtend != nil {
		updates["auto_extend"] = *input.AutoExtend
	}
	if input.ExtendMinutes != nil {
		updates["extend_minutes"] = *input.ExtendMinutes
	}
	if input.MinExtendBidTime != nil {
		updates["min_extend_bid_time"] = *input.MinExtendBidTime
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Images != nil {
		updates["images"] = pqStringArray(input.Images)
	}
	if input.Tags != nil {
		updates["tags"] = pqStringArray(input.Tags)
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 0 {
		return &auction, nil
	}

	if err := s.db.Model(&auction).Updates(updates).Error; err != nil {
		return nil, s.listFailure("update_auction", err)
	}
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		return nil, s.listFailure("update_auction", err)
	}
	return &auction, nil
}

// CancelAuction marks an auction cancelled without deleting its ledger.
func (s *AuctionService) CancelAuction(auctionID uuid.UUID) error {
	res := s.db.Model(&models.Auction{}).
		Where("id = ? AND status IN ?", auctionID,
			[]models.AuctionStatus{models.AuctionStatusScheduled, models.AuctionStatusActive}).
		Updates(map[string]interface{}{
			"status":   models.AuctionStatusCancelled,
			"ended_at": time.Now(),
		})
	if res.Error != nil {
		return s.listFailure("cancel_auction", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.Auction{}).Where("id = ?", auctionID).
			Count(&count).Error; err != nil {
			return s.listFailure("cancel_auction", err)
		}
		if count == 0 {
			return auctionerrors.ErrAuctionNotFound
		}
		return auctionerrors.ErrAuctionNotActive
	}
	return nil
}

func (s *AuctionService) listFailure(operation string, err error) error {
	logrus.WithField("operation", operation).WithError(err).
		Error("auction query failed")
	return fmt.Errorf("%w: %s", auctionerrors.ErrStorageFailure, operation)
}

func pqStringArray(v []string) pq.StringArray {
	return pq.StringArray(v)
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug builds a URL slug from the title plus a random numeric
// suffix so retitled or duplicate auctions never collide.
func GenerateSlug(title string) string {
	base := strings.Trim(slugStripPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "auction"
	}
	return fmt.Sprintf("%s-%d", base, 1000+rand.Intn(9000))
}

func remainingSeconds(a *models.Auction, now time.Time) int64 {
	remaining := int64(a.EndDate.Sub(now).Seconds())
	if remaining < 0 || a.Status.IsTerminal() {
		return 0
	}
	return remaining
}
