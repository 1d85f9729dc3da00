// internal/services/sweeper_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qooqz/auction-backend/internal/config"
	"github.com/qooqz/auction-backend/internal/models"
)

// SweeperService periodically closes auctions whose end_date has passed.
// Read paths never flip state themselves; they render expiry from
// end_date, and the sweeper is the only background writer. Each expired
// auction goes through BiddingService.FinalizeExpired so the transition
// holds the same row lock as live bids.
type SweeperService struct {
	db      *gorm.DB
	bidding *BiddingService
	config  *config.Config
}

func NewSweeperService(db *gorm.DB, bidding *BiddingService, config *config.Config) *SweeperService {
	return &SweeperService{
		db:      db,
		bidding: bidding,
		config:  config,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured interval.
// Intended to run in its own goroutine from main.
func (s *SweeperService) Run(ctx context.Context) {
	interval := time.Duration(s.config.Auction.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		logrus.Info("auction sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("interval", interval.String()).Info("auction sweeper started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("auction sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce finalizes every active auction already past its end date and
// activates scheduled auctions whose start date has arrived. Failures on
// one auction never block the rest of the batch.
func (s *SweeperService) SweepOnce() {
	now := time.Now()

	if err := s.activateDue(now); err != nil {
		logrus.WithError(err).Error("sweeper failed to activate scheduled auctions")
	}

	var ids []uuid.UUID
	err := s.db.Model(&models.Auction{}).
		Where("status = ? AND end_date <= ?", models.AuctionStatusActive, now).
		Pluck("id", &ids).Error
	if err != nil {
		logrus.WithError(err).Error("sweeper failed to list expired auctions")
		return
	}

	for _, id := range ids {
		if err := s.bidding.FinalizeExpired(id); err != nil {
			logrus.WithField("auction_id", id).WithError(err).
				Warn("sweeper failed to finalize auction")
		}
	}

	if len(ids) > 0 {
		logrus.WithField("count", len(ids)).Info("swept expired auctions")
	}
}

func (s *SweeperService) activateDue(now time.Time) error {
	return s.db.Model(&models.Auction{}).
		Where("status = ? AND start_date <= ? AND end_date > ?",
			models.AuctionStatusScheduled, now, now).
		Update("status", models.AuctionStatusActive).Error
}
