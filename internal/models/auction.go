// internal/models/auction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Auction holds both the immutable sale configuration and the live aggregate
// state. The aggregate fields (current_price, totals, status, winner_*) are
// written exclusively by the bidding engine inside a locked transaction.
type Auction struct {
	BaseModel
	TenantID    uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `json:"product_id" gorm:"type:uuid;index"`
	CreatedBy   uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Slug        string     `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Description string     `json:"description" gorm:"type:text"`

	// Configuration
	AuctionType          AuctionType    `json:"auction_type" gorm:"type:varchar(20);default:'normal';index"`
	StartingPrice        float64        `json:"starting_price" gorm:"type:decimal(12,2);not null"`
	ReservePrice         *float64       `json:"reserve_price" gorm:"type:decimal(12,2)"`
	BuyNowPrice          *float64       `json:"buy_now_price" gorm:"type:decimal(12,2)"`
	BidIncrement         float64        `json:"bid_increment" gorm:"type:decimal(12,2);default:5.00"`
	CurrencyCode         string         `json:"currency_code" gorm:"size:3;not null"`
	AutoBidEnabled       bool           `json:"auto_bid_enabled"`
	StartDate            time.Time      `json:"start_date" gorm:"not null"`
	EndDate              time.Time      `json:"end_date" gorm:"not null;index"`
	AutoExtend           bool           `json:"auto_extend"`
	ExtendMinutes        int            `json:"extend_minutes" gorm:"default:5"`
	MinExtendBidTime     int            `json:"min_extend_bid_time" gorm:"default:5"`
	IsFeatured           bool           `json:"is_featured" gorm:"default:false;index"`
	ConditionType        ConditionType  `json:"condition_type" gorm:"type:varchar(20);default:'new'"`
	Quantity             int            `json:"quantity" gorm:"default:1"`
	ShippingCost         float64        `json:"shipping_cost" gorm:"type:decimal(12,2);default:0"`
	PaymentDeadlineHours int            `json:"payment_deadline_hours" gorm:"default:48"`
	Images               pq.StringArray `json:"images" gorm:"type:text[]"`
	Tags                 pq.StringArray `json:"tags" gorm:"type:text[]"`
	Notes                string         `json:"notes,omitempty" gorm:"type:text"`

	// Live aggregate state
	Status        AuctionStatus `json:"status" gorm:"type:varchar(20);default:'scheduled';index"`
	CurrentPrice  float64       `json:"current_price" gorm:"type:decimal(12,2);not null"`
	TotalBids     int           `json:"total_bids" gorm:"default:0"`
	TotalBidders  int           `json:"total_bidders" gorm:"default:0"`
	WinnerUserID  *uuid.UUID    `json:"winner_user_id" gorm:"type:uuid"`
	WinnerBidID   *uuid.UUID    `json:"winner_bid_id" gorm:"type:uuid"`
	WinningAmount *float64      `json:"winning_amount" gorm:"type:decimal(12,2)"`
	EndedAt       *time.Time    `json:"ended_at"`

	// Relationships
	Bids     []Bid            `json:"bids,omitempty" gorm:"foreignKey:AuctionID"`
	AutoBids []AutoBidSetting `json:"auto_bids,omitempty" gorm:"foreignKey:AuctionID"`
	Watchers []AuctionWatcher `json:"watchers,omitempty" gorm:"foreignKey:AuctionID"`
}

// MinimumBid is the lowest amount the next competitive bid may carry.
func (a *Auction) MinimumBid() float64 {
	return a.CurrentPrice + a.BidIncrement
}

// HasExpired reports whether the configured end has passed at the given time.
func (a *Auction) HasExpired(now time.Time) bool {
	return now.After(a.EndDate)
}
