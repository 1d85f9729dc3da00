// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type AuctionType string

const (
	AuctionTypeNormal    AuctionType = "normal"
	AuctionTypeReserve   AuctionType = "reserve"
	AuctionTypeBuyNow    AuctionType = "buy_now"
	AuctionTypeDutch     AuctionType = "dutch"
	AuctionTypeSealedBid AuctionType = "sealed_bid"
)

type AuctionStatus string

const (
	AuctionStatusScheduled AuctionStatus = "scheduled"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusSold      AuctionStatus = "sold"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transition.
func (s AuctionStatus) IsTerminal() bool {
	switch s {
	case AuctionStatusSold, AuctionStatusEnded, AuctionStatusCancelled:
		return true
	}
	return false
}

type BidType string

const (
	BidTypeManual BidType = "manual"
	BidTypeAuto   BidType = "auto"
	BidTypeBuyNow BidType = "buy_now"
)

type ConditionType string

const (
	ConditionTypeNew         ConditionType = "new"
	ConditionTypeUsed        ConditionType = "used"
	ConditionTypeRefurbished ConditionType = "refurbished"
)
