// internal/services/validation_test.go
package services

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qooqz/auction-backend/internal/auctionerrors"
	"github.com/qooqz/auction-backend/internal/models"
)

func activeAuction(currentPrice, increment float64) *models.Auction {
	return &models.Auction{
		Status:       models.AuctionStatusActive,
		CurrentPrice: currentPrice,
		BidIncrement: increment,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(time.Hour),
	}
}

func TestValidateAuctionForBid(t *testing.T) {
	now := time.Now()

	t.Run("accepts bid at exact minimum", func(t *testing.T) {
		a := activeAuction(100, 5)
		assert.NoError(t, validateAuctionForBid(a, 105, now))
	})

	t.Run("accepts bid above minimum", func(t *testing.T) {
		a := activeAuction(100, 5)
		assert.NoError(t, validateAuctionForBid(a, 250, now))
	})

	t.Run("rejects bid below minimum with the minimum attached", func(t *testing.T) {
		a := activeAuction(100, 5)
		err := validateAuctionForBid(a, 104.99, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))

		var tooLow *auctionerrors.BidTooLowError
		assert.True(t, errors.As(err, &tooLow))
		assert.Equal(t, 105.0, tooLow.Minimum)
	})

	t.Run("rejects bid equal to current price", func(t *testing.T) {
		a := activeAuction(100, 5)
		err := validateAuctionForBid(a, 100, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrBidTooLow))
	})

	t.Run("rejects non-active statuses", func(t *testing.T) {
		for _, status := range []models.AuctionStatus{
			models.AuctionStatusScheduled,
			models.AuctionStatusSold,
			models.AuctionStatusEnded,
			models.AuctionStatusCancelled,
		} {
			a := activeAuction(100, 5)
			a.Status = status
			err := validateAuctionForBid(a, 200, now)
			assert.True(t, errors.Is(err, auctionerrors.ErrAuctionNotActive), "status %s", status)
		}
	})

	t.Run("rejects expired auction before checking amount", func(t *testing.T) {
		a := activeAuction(100, 5)
		a.EndDate = now.Add(-time.Minute)
		err := validateAuctionForBid(a, 1, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrAuctionExpired))
	})
}

func TestValidateAuctionForBuyNow(t *testing.T) {
	now := time.Now()
	price := 500.0

	t.Run("accepts active auction with buy-now price", func(t *testing.T) {
		a := activeAuction(100, 5)
		a.BuyNowPrice = &price
		assert.NoError(t, validateAuctionForBuyNow(a, now))
	})

	t.Run("rejects missing buy-now price", func(t *testing.T) {
		a := activeAuction(100, 5)
		err := validateAuctionForBuyNow(a, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrNoBuyNowPrice))
	})

	t.Run("rejects zero buy-now price", func(t *testing.T) {
		zero := 0.0
		a := activeAuction(100, 5)
		a.BuyNowPrice = &zero
		err := validateAuctionForBuyNow(a, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrNoBuyNowPrice))
	})

	t.Run("rejects sold auction", func(t *testing.T) {
		a := activeAuction(100, 5)
		a.Status = models.AuctionStatusSold
		a.BuyNowPrice = &price
		err := validateAuctionForBuyNow(a, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrAuctionNotActive))
	})

	t.Run("rejects expired auction", func(t *testing.T) {
		a := activeAuction(100, 5)
		a.BuyNowPrice = &price
		a.EndDate = now.Add(-time.Second)
		err := validateAuctionForBuyNow(a, now)
		assert.True(t, errors.Is(err, auctionerrors.ErrAuctionExpired))
	})
}

func TestExtendedEndDate(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := func() *models.Auction {
		return &models.Auction{
			AutoExtend:       true,
			ExtendMinutes:    5,
			MinExtendBidTime: 5,
			EndDate:          end,
		}
	}

	t.Run("extends inside the closing window", func(t *testing.T) {
		a := base()
		got, extended := extendedEndDate(a, end.Add(-2*time.Minute))
		assert.True(t, extended)
		assert.Equal(t, end.Add(5*time.Minute), got)
	})

	t.Run("extends exactly at window boundary", func(t *testing.T) {
		a := base()
		_, extended := extendedEndDate(a, end.Add(-5*time.Minute))
		assert.True(t, extended)
	})

	t.Run("does not extend before the window", func(t *testing.T) {
		a := base()
		got, extended := extendedEndDate(a, end.Add(-10*time.Minute))
		assert.False(t, extended)
		assert.Equal(t, end, got)
	})

	t.Run("does not extend when auto-extend is off", func(t *testing.T) {
		a := base()
		a.AutoExtend = false
		_, extended := extendedEndDate(a, end.Add(-time.Minute))
		assert.False(t, extended)
	})
}

func TestReserveMet(t *testing.T) {
	reserve := 200.0

	t.Run("non-reserve auction always settles", func(t *testing.T) {
		a := &models.Auction{AuctionType: models.AuctionTypeNormal, CurrentPrice: 1}
		assert.True(t, reserveMet(a))
	})

	t.Run("reserve auction below reserve does not settle", func(t *testing.T) {
		a := &models.Auction{
			AuctionType:  models.AuctionTypeReserve,
			ReservePrice: &reserve,
			CurrentPrice: 199.99,
		}
		assert.False(t, reserveMet(a))
	})

	t.Run("reserve auction at reserve settles", func(t *testing.T) {
		a := &models.Auction{
			AuctionType:  models.AuctionTypeReserve,
			ReservePrice: &reserve,
			CurrentPrice: 200,
		}
		assert.True(t, reserveMet(a))
	})

	t.Run("reserve auction without a configured reserve settles", func(t *testing.T) {
		a := &models.Auction{AuctionType: models.AuctionTypeReserve, CurrentPrice: 1}
		assert.True(t, reserveMet(a))
	})
}

func TestGenerateSlug(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9-]+-\d{4}$`)

	t.Run("normalizes title", func(t *testing.T) {
		slug := GenerateSlug("Vintage Rolex Submariner (1968)!")
		assert.Regexp(t, pattern, slug)
		assert.Contains(t, slug, "vintage-rolex-submariner-1968")
	})

	t.Run("falls back for non-latin titles", func(t *testing.T) {
		slug := GenerateSlug("ساعة فاخرة")
		assert.Regexp(t, pattern, slug)
		assert.Contains(t, slug, "auction-")
	})

	t.Run("same title produces distinct slugs eventually", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			seen[GenerateSlug("repeat title")] = true
		}
		assert.Greater(t, len(seen), 1)
	})
}

func TestIsLockTimeout(t *testing.T) {
	assert.True(t, isLockTimeout(errors.New("ERROR: canceling statement due to lock timeout (SQLSTATE 55P03)")))
	assert.True(t, isLockTimeout(errors.New("SQLSTATE 55P03")))
	assert.False(t, isLockTimeout(errors.New("duplicate key value violates unique constraint")))
	assert.False(t, isLockTimeout(nil))
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Now()

	t.Run("positive while running", func(t *testing.T) {
		a := &models.Auction{Status: models.AuctionStatusActive, EndDate: now.Add(90 * time.Second)}
		assert.InDelta(t, 90, remainingSeconds(a, now), 1)
	})

	t.Run("zero after expiry", func(t *testing.T) {
		a := &models.Auction{Status: models.AuctionStatusActive, EndDate: now.Add(-time.Minute)}
		assert.Equal(t, int64(0), remainingSeconds(a, now))
	})

	t.Run("zero for terminal status regardless of end date", func(t *testing.T) {
		a := &models.Auction{Status: models.AuctionStatusSold, EndDate: now.Add(time.Hour)}
		assert.Equal(t, int64(0), remainingSeconds(a, now))
	})
}
