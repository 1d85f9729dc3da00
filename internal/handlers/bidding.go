// internal/handlers/bidding.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qooqz/auction-backend/internal/i18n"
	"github.com/qooqz/auction-backend/internal/utils"
)

type BiddingHandler struct {
	engine BiddingEngine
}

func NewBiddingHandler(engine BiddingEngine) *BiddingHandler {
	return &BiddingHandler{engine: engine}
}

type placeBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type setAutoBidRequest struct {
	MaxAmount float64 `json:"max_amount" validate:"required,gt=0"`
}

// POST /auctions/:id/bid
func (h *BiddingHandler) PlaceBid(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.engine.PlaceBid(auctionID, userID, req.Amount, c.ClientIP())
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyBidPlaced),
		"bid_id":    result.BidID,
		"new_price": result.NewPrice,
	})
}

// POST /auctions/:id/buy-now
func (h *BiddingHandler) BuyNow(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	result, err := h.engine.BuyNow(auctionID, userID, c.ClientIP())
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBuyNowSuccess),
		"bid_id":  result.BidID,
		"amount":  result.Amount,
	})
}

// POST /auctions/:id/auto-bid
func (h *BiddingHandler) SetAutoBid(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setAutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	setting, err := h.engine.SetAutoBid(auctionID, userID, req.MaxAmount)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyAutoBidSet),
		"auto_bid": setting,
	})
}

// DELETE /auctions/:id/auto-bid
func (h *BiddingHandler) WithdrawAutoBid(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.engine.WithdrawAutoBid(auctionID, userID); err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAutoBidWithdrawn),
	})
}

// POST /auctions/:id/watch
func (h *BiddingHandler) ToggleWatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	watching, err := h.engine.ToggleWatch(auctionID, userID)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	key := i18n.KeyWatchRemoved
	if watching {
		key = i18n.KeyWatchAdded
	}
	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, key),
		"watching": watching,
	})
}
