// internal/services/bidding_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qooqz/auction-backend/internal/auctionerrors"
	"github.com/qooqz/auction-backend/internal/config"
	"github.com/qooqz/auction-backend/internal/database"
	"github.com/qooqz/auction-backend/internal/models"
)

// BiddingService is the sole writer of auction aggregate state and the bid
// ledger. Every state transition funnels through a transaction that locks
// the auction row, so concurrent bidders on one auction serialize there and
// bidders on different auctions never contend.
type BiddingService struct {
	db     *gorm.DB
	config *config.Config
}

type PlaceBidResult struct {
	BidID    uuid.UUID `json:"bid_id"`
	NewPrice float64   `json:"new_price"`
}

type BuyNowResult struct {
	BidID  uuid.UUID `json:"bid_id"`
	Amount float64   `json:"amount"`
}

func NewBiddingService(db *gorm.DB, config *config.Config) *BiddingService {
	return &BiddingService{
		db:     db,
		config: config,
	}
}

// PlaceBid validates and records a competitive bid. The fast pre-check runs
// without locks so obviously invalid requests are rejected cheaply; every
// rule is then re-validated on a locked re-read before any row changes.
func (s *BiddingService) PlaceBid(auctionID, userID uuid.UUID, amount float64, originIP string) (*PlaceBidResult, error) {
	result, err := s.placeBid(auctionID, userID, amount, models.BidTypeManual, originIP)
	if err != nil {
		return nil, err
	}

	if s.config.Auction.AutoBidResolve {
		s.resolveAutoBids(auctionID, originIP)
		// The cascade may have raised the price past the manual bid; the
		// returned price still reflects the caller's own accepted bid.
	}

	return result, nil
}

func (s *BiddingService) placeBid(auctionID, userID uuid.UUID, amount float64, bidType models.BidType, originIP string) (*PlaceBidResult, error) {
	if userID == uuid.Nil {
		return nil, auctionerrors.ErrUnauthenticated
	}
	if amount <= 0 {
		return nil, auctionerrors.ErrInvalidAmount
	}

	// Optimistic pre-check, no lock held.
	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.storageFailure("place_bid", auctionID, userID, err)
	}
	if err := validateAuctionForBid(&auction, amount, time.Now()); err != nil {
		return nil, err
	}

	var result PlaceBidResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(tx); err != nil {
			return err
		}

		// Serialization point: all concurrent bidders for this auction
		// queue on the row lock.
		var locked models.Auction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, auctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}

		// Re-validate against post-lock state; race losers get the same
		// error kinds as direct rejections.
		now := time.Now()
		if err := validateAuctionForBid(&locked, amount, now); err != nil {
			return err
		}

		bid, err := s.recordWinningBid(tx, &locked, userID, amount, bidType, originIP)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"current_price":  amount,
			"total_bids":     gorm.Expr("total_bids + 1"),
			"total_bidders":  gorm.Expr("(SELECT COUNT(DISTINCT user_id) FROM bids WHERE auction_id = ?)", locked.ID),
			"winner_user_id": userID,
			"winner_bid_id":  bid.ID,
		}
		if newEnd, extended := extendedEndDate(&locked, now); extended {
			updates["end_date"] = newEnd
		}
		if err := tx.Model(&models.Auction{}).Where("id = ?", locked.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		result = PlaceBidResult{BidID: bid.ID, NewPrice: amount}
		return nil
	})

	if err != nil {
		return nil, s.mapTxError("place_bid", auctionID, userID, err)
	}
	return &result, nil
}

// BuyNow executes the instant-sale transition. It is terminal: a second
// concurrent caller observes status=sold on its locked re-read and fails.
func (s *BiddingService) BuyNow(auctionID, userID uuid.UUID, originIP string) (*BuyNowResult, error) {
	if userID == uuid.Nil {
		return nil, auctionerrors.ErrUnauthenticated
	}

	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.storageFailure("buy_now", auctionID, userID, err)
	}
	if err := validateAuctionForBuyNow(&auction, time.Now()); err != nil {
		return nil, err
	}

	var result BuyNowResult
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(tx); err != nil {
			return err
		}

		var locked models.Auction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, auctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}

		now := time.Now()
		if err := validateAuctionForBuyNow(&locked, now); err != nil {
			return err
		}

		price := *locked.BuyNowPrice
		bid, err := s.recordWinningBid(tx, &locked, userID, price, models.BidTypeBuyNow, originIP)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Auction{}).Where("id = ?", locked.ID).
			Updates(map[string]interface{}{
				"status":         models.AuctionStatusSold,
				"current_price":  price,
				"total_bids":     gorm.Expr("total_bids + 1"),
				"total_bidders":  gorm.Expr("(SELECT COUNT(DISTINCT user_id) FROM bids WHERE auction_id = ?)", locked.ID),
				"winner_user_id": userID,
				"winner_bid_id":  bid.ID,
				"winning_amount": price,
				"ended_at":       now,
			}).Error; err != nil {
			return err
		}

		// The auction is over; stored ceilings must never fire again.
		if err := s.deactivateAutoBids(tx, locked.ID); err != nil {
			return err
		}

		result = BuyNowResult{BidID: bid.ID, Amount: price}
		return nil
	})

	if err != nil {
		return nil, s.mapTxError("buy_now", auctionID, userID, err)
	}
	return &result, nil
}

// SetAutoBid upserts the caller's maximum ceiling for an auction. The
// minimum-bid check here is advisory: the ceiling is evaluated at future
// bid time, so it is not re-validated under the auction lock.
func (s *BiddingService) SetAutoBid(auctionID, userID uuid.UUID, maxAmount float64) (*models.AutoBidSetting, error) {
	if userID == uuid.Nil {
		return nil, auctionerrors.ErrUnauthenticated
	}
	if maxAmount <= 0 {
		return nil, auctionerrors.ErrInvalidAmount
	}

	var auction models.Auction
	if err := s.db.First(&auction, auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auctionerrors.ErrAuctionNotFound
		}
		return nil, s.storageFailure("set_auto_bid", auctionID, userID, err)
	}

	now := time.Now()
	if auction.Status != models.AuctionStatusActive {
		return nil, auctionerrors.ErrAuctionNotActive
	}
	if auction.HasExpired(now) {
		return nil, auctionerrors.ErrAuctionExpired
	}
	if !auction.AutoBidEnabled {
		return nil, auctionerrors.ErrAutoBidDisabled
	}
	if maxAmount < auction.MinimumBid() {
		return nil, auctionerrors.NewBidTooLow(auction.MinimumBid())
	}

	setting := models.AutoBidSetting{
		AuctionID:    auctionID,
		UserID:       userID,
		MaxBidAmount: maxAmount,
		IsActive:     true,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "auction_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"max_bid_amount": maxAmount,
			"is_active":      true,
			"updated_at":     now,
		}),
	}).Create(&setting).Error
	if err != nil {
		return nil, s.storageFailure("set_auto_bid", auctionID, userID, err)
	}

	// Reload so a replaced ceiling reports its original row id.
	if err := s.db.Where("auction_id = ? AND user_id = ?", auctionID, userID).
		First(&setting).Error; err != nil {
		return nil, s.storageFailure("set_auto_bid", auctionID, userID, err)
	}
	return &setting, nil
}

// WithdrawAutoBid deactivates the caller's ceiling. The row is kept for
// audit.
func (s *BiddingService) WithdrawAutoBid(auctionID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return auctionerrors.ErrUnauthenticated
	}

	res := s.db.Model(&models.AutoBidSetting{}).
		Where("auction_id = ? AND user_id = ? AND is_active", auctionID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return s.storageFailure("withdraw_auto_bid", auctionID, userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return auctionerrors.ErrAutoBidNotFound
	}
	return nil
}

// ToggleWatch flips the caller's watch membership and returns the new state.
func (s *BiddingService) ToggleWatch(auctionID, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, auctionerrors.ErrUnauthenticated
	}

	var count int64
	if err := s.db.Model(&models.Auction{}).Where("id = ?", auctionID).
		Count(&count).Error; err != nil {
		return false, s.storageFailure("toggle_watch", auctionID, userID, err)
	}
	if count == 0 {
		return false, auctionerrors.ErrAuctionNotFound
	}

	var watcher models.AuctionWatcher
	err := s.db.Where("auction_id = ? AND user_id = ?", auctionID, userID).
		First(&watcher).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&watcher).Error; err != nil {
			return false, s.storageFailure("toggle_watch", auctionID, userID, err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		watcher = models.AuctionWatcher{AuctionID: auctionID, UserID: userID}
		if err := s.db.Create(&watcher).Error; err != nil {
			return false, s.storageFailure("toggle_watch", auctionID, userID, err)
		}
		return true, nil
	default:
		return false, s.storageFailure("toggle_watch", auctionID, userID, err)
	}
}

// FinalizeExpired forces an expired active auction into ended. The sweeper
// drives this through the same locked transition used by PlaceBid/BuyNow,
// so there is never a second writer path for aggregate state. A no-op for
// auctions that are not active or not yet expired.
func (s *BiddingService) FinalizeExpired(auctionID uuid.UUID) error {
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.applyLockTimeout(tx); err != nil {
			return err
		}

		var locked models.Auction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, auctionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}

		now := time.Now()
		if locked.Status != models.AuctionStatusActive || !locked.HasExpired(now) {
			return nil
		}

		updates := map[string]interface{}{
			"status":   models.AuctionStatusEnded,
			"ended_at": locked.EndDate,
		}
		if reserveMet(&locked) && locked.WinnerBidID != nil {
			updates["winning_amount"] = locked.CurrentPrice
		} else {
			// Reserve not met (or no bids): the auction ends without a
			// sale regardless of the leading bid.
			updates["winner_user_id"] = nil
			updates["winner_bid_id"] = nil
			updates["winning_amount"] = nil
		}
		if err := tx.Model(&models.Auction{}).Where("id = ?", locked.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		return s.deactivateAutoBids(tx, locked.ID)
	})

	if err != nil {
		return s.mapTxError("finalize_expired", auctionID, uuid.Nil, err)
	}
	return nil
}

// resolveAutoBids lets stored ceilings compete against the freshly committed
// bid. Each step goes through the ordinary locked bid path, so all ledger
// and aggregate invariants hold for auto bids too. The step bound keeps two
// ceilings chasing each other from looping forever.
func (s *BiddingService) resolveAutoBids(auctionID uuid.UUID, originIP string) {
	for step := 0; step < s.config.Auction.AutoBidMaxSteps; step++ {
		var auction models.Auction
		if err := s.db.First(&auction, auctionID).Error; err != nil {
			return
		}
		if auction.Status != models.AuctionStatusActive || auction.HasExpired(time.Now()) {
			return
		}

		minimum := auction.MinimumBid()
		var setting models.AutoBidSetting
		query := s.db.Where("auction_id = ? AND is_active AND max_bid_amount >= ?", auctionID, minimum)
		if auction.WinnerUserID != nil {
			query = query.Where("user_id <> ?", *auction.WinnerUserID)
		}
		err := query.Order("max_bid_amount DESC, created_at ASC").First(&setting).Error
		if err != nil {
			return
		}

		amount := minimum
		if setting.MaxBidAmount < amount {
			amount = setting.MaxBidAmount
		}

		if _, err := s.placeBid(auctionID, setting.UserID, amount, models.BidTypeAuto, originIP); err != nil {
			if errors.Is(err, auctionerrors.ErrBidTooLow) {
				// Lost a race against a concurrent manual bid; re-read
				// and try the next round.
				continue
			}
			logrus.WithFields(logrus.Fields{
				"auction_id": auctionID,
				"user_id":    setting.UserID,
				"operation":  "auto_bid_resolve",
			}).WithError(err).Warn("auto-bid cascade step failed")
			return
		}
	}
}

// recordWinningBid flips the previous winning flag and appends the new
// leading bid, both addressed by auction id.
func (s *BiddingService) recordWinningBid(tx *gorm.DB, auction *models.Auction, userID uuid.UUID, amount float64, bidType models.BidType, originIP string) (*models.Bid, error) {
	if err := tx.Model(&models.Bid{}).
		Where("auction_id = ? AND is_winning", auction.ID).
		Update("is_winning", false).Error; err != nil {
		return nil, err
	}

	bid := models.Bid{
		AuctionID: auction.ID,
		UserID:    userID,
		Amount:    amount,
		BidType:   bidType,
		IsWinning: true,
		IPAddress: originIP,
	}
	if err := tx.Create(&bid).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *BiddingService) deactivateAutoBids(tx *gorm.DB, auctionID uuid.UUID) error {
	return tx.Model(&models.AutoBidSetting{}).
		Where("auction_id = ? AND is_active", auctionID).
		Update("is_active", false).Error
}

// applyLockTimeout bounds the wait for the auction row lock so a contended
// bid fails busy instead of hanging. SET LOCAL scopes it to the transaction.
func (s *BiddingService) applyLockTimeout(tx *gorm.DB) error {
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.config.Auction.LockTimeoutMs)).Error
}

// mapTxError translates transaction failures into the engine's error kinds.
// Business-rule rejections pass through untouched; lock-wait expiry becomes
// ErrBusy; everything else is an opaque storage failure, logged with full
// context.
func (s *BiddingService) mapTxError(operation string, auctionID, userID uuid.UUID, err error) error {
	switch {
	case isBusinessError(err):
		return err
	case isLockTimeout(err):
		return auctionerrors.ErrBusy
	default:
		return s.storageFailure(operation, auctionID, userID, err)
	}
}

func (s *BiddingService) storageFailure(operation string, auctionID, userID uuid.UUID, err error) error {
	logrus.WithFields(logrus.Fields{
		"auction_id": auctionID,
		"user_id":    userID,
		"operation":  operation,
	}).WithError(err).Error("auction storage operation failed")
	return fmt.Errorf("%w: %s", auctionerrors.ErrStorageFailure, operation)
}

func isBusinessError(err error) bool {
	for _, kind := range []error{
		auctionerrors.ErrUnauthenticated,
		auctionerrors.ErrAuctionNotFound,
		auctionerrors.ErrAuctionNotActive,
		auctionerrors.ErrAuctionExpired,
		auctionerrors.ErrInvalidAmount,
		auctionerrors.ErrBidTooLow,
		auctionerrors.ErrNoBuyNowPrice,
		auctionerrors.ErrAutoBidDisabled,
		auctionerrors.ErrAutoBidNotFound,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Postgres reports lock_timeout expiry as SQLSTATE 55P03.
func isLockTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "55P03") || strings.Contains(msg, "lock timeout")
}

// validateAuctionForBid applies the eligibility and minimum-increment rules.
// Used both for the unlocked pre-check and the re-validation under lock.
func validateAuctionForBid(a *models.Auction, amount float64, now time.Time) error {
	if a.Status != models.AuctionStatusActive {
		return auctionerrors.ErrAuctionNotActive
	}
	if a.HasExpired(now) {
		return auctionerrors.ErrAuctionExpired
	}
	if amount < a.MinimumBid() {
		return auctionerrors.NewBidTooLow(a.MinimumBid())
	}
	return nil
}

func validateAuctionForBuyNow(a *models.Auction, now time.Time) error {
	if a.Status != models.AuctionStatusActive {
		return auctionerrors.ErrAuctionNotActive
	}
	if a.HasExpired(now) {
		return auctionerrors.ErrAuctionExpired
	}
	if a.BuyNowPrice == nil || *a.BuyNowPrice <= 0 {
		return auctionerrors.ErrNoBuyNowPrice
	}
	return nil
}

// extendedEndDate implements the anti-sniping rule: a bid accepted within
// the final min_extend_bid_time minutes pushes end_date out by
// extend_minutes.
func extendedEndDate(a *models.Auction, now time.Time) (time.Time, bool) {
	if !a.AutoExtend || a.ExtendMinutes <= 0 || a.MinExtendBidTime <= 0 {
		return a.EndDate, false
	}
	window := time.Duration(a.MinExtendBidTime) * time.Minute
	if now.Before(a.EndDate.Add(-window)) {
		return a.EndDate, false
	}
	return a.EndDate.Add(time.Duration(a.ExtendMinutes) * time.Minute), true
}

// reserveMet reports whether a reserve auction may settle at its current
// price. Non-reserve auctions always settle.
func reserveMet(a *models.Auction) bool {
	if a.AuctionType != models.AuctionTypeReserve || a.ReservePrice == nil {
		return true
	}
	return a.CurrentPrice >= *a.ReservePrice
}
