package auctionerrors

import (
	"errors"
	"fmt"
)

// Lookup and eligibility errors
var (
	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAuctionExpired   = errors.New("auction has expired")
)

// Bid validation errors
var (
	ErrInvalidAmount   = errors.New("invalid bid amount")
	ErrBidTooLow       = errors.New("bid amount too low")
	ErrNoBuyNowPrice   = errors.New("auction has no buy-now price")
	ErrAutoBidDisabled = errors.New("auto bidding is disabled for this auction")
	ErrAutoBidNotFound = errors.New("no active auto-bid found")
)

// Infrastructure errors
var (
	ErrBusy           = errors.New("auction is busy, try again")
	ErrStorageFailure = errors.New("storage failure")
)

// BidTooLowError carries the computed minimum so callers can retry with a
// valid amount. It matches ErrBidTooLow under errors.Is.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low: minimum acceptable bid is %.2f", e.Minimum)
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}

// NewBidTooLow builds the client-facing rejection for an amount below
// current_price + increment.
func NewBidTooLow(minimum float64) error {
	return &BidTooLowError{Minimum: minimum}
}
