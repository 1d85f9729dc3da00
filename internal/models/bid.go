// internal/models/bid.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid is an append-only ledger row. Rows are created by the bidding engine
// inside its transaction and never updated afterwards, except for flipping
// the is_winning flag when a later bid takes the lead.
type Bid struct {
	BaseModel
	AuctionID uuid.UUID `json:"auction_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount    float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	BidType   BidType   `json:"bid_type" gorm:"type:varchar(10);default:'manual'"`
	IsWinning bool      `json:"is_winning" gorm:"default:false;index"`
	IPAddress string    `json:"ip_address,omitempty" gorm:"size:45"`

	// Relationships
	Auction Auction `json:"auction,omitempty" gorm:"foreignKey:AuctionID"`
}

// AutoBidSetting stores a user's maximum ceiling for one auction. A repeat
// set replaces the ceiling and reactivates it; withdrawal and auction end
// deactivate the row but keep it for audit.
type AutoBidSetting struct {
	BaseModel
	AuctionID    uuid.UUID `json:"auction_id" gorm:"type:uuid;not null;uniqueIndex:idx_auto_bid_auction_user"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_auto_bid_auction_user"`
	MaxBidAmount float64   `json:"max_bid_amount" gorm:"type:decimal(12,2);not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Auction Auction `json:"auction,omitempty" gorm:"foreignKey:AuctionID"`
}

// AuctionWatcher marks a user as following an auction. Row existence is the
// watching signal; the toggle command inserts or deletes it.
type AuctionWatcher struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuctionID uuid.UUID `json:"auction_id" gorm:"type:uuid;not null;uniqueIndex:idx_watcher_auction_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_watcher_auction_user"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Auction Auction `json:"auction,omitempty" gorm:"foreignKey:AuctionID"`
}
