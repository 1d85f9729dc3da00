// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Auctions
	KeyAuctionNotFound  = "auction.not_found"
	KeyAuctionNotActive = "auction.not_active"
	KeyAuctionExpired   = "auction.expired"
	KeyAuctionCreated   = "auction.created"
	KeyAuctionUpdated   = "auction.updated"
	KeyAuctionCancelled = "auction.cancelled"
	KeyAuctionBusy      = "auction.busy"

	// Bidding
	KeyBidPlaced        = "bid.placed"
	KeyBidTooLow        = "bid.too_low"
	KeyBidInvalidAmount = "bid.invalid_amount"
	KeyBuyNowSuccess    = "bid.buy_now_success"
	KeyNoBuyNowPrice    = "bid.no_buy_now_price"

	// Auto-bid
	KeyAutoBidSet       = "auto_bid.set"
	KeyAutoBidWithdrawn = "auto_bid.withdrawn"
	KeyAutoBidDisabled  = "auto_bid.disabled"
	KeyAutoBidNotFound  = "auto_bid.not_found"

	// Watchlist
	KeyWatchAdded   = "watch.added"
	KeyWatchRemoved = "watch.removed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// System
	KeyInternalError      = "system.internal_error"
	KeyServiceUnavailable = "system.service_unavailable"
	KeyRateLimitExceeded  = "system.rate_limit_exceeded"
)
