// internal/handlers/auction.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qooqz/auction-backend/internal/models"
	"github.com/qooqz/auction-backend/internal/services"
	"github.com/qooqz/auction-backend/internal/utils"
)

type AuctionHandler struct {
	catalog AuctionCatalog
}

func NewAuctionHandler(catalog AuctionCatalog) *AuctionHandler {
	return &AuctionHandler{catalog: catalog}
}

// GET /auctions
func (h *AuctionHandler) GetAuctions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AuctionFilter{
		Search: params.Search,
	}
	if params.Status != "" {
		filter.Status = models.AuctionStatus(params.Status)
	} else {
		filter.Status = models.AuctionStatusActive
	}
	if params.Type != "" {
		filter.AuctionType = models.AuctionType(params.Type)
	}
	if tenantIDStr := c.Query("tenant_id"); tenantIDStr != "" {
		if tenantID, err := uuid.Parse(tenantIDStr); err == nil {
			filter.TenantID = &tenantID
		}
	}
	if featuredStr := c.Query("featured"); featuredStr != "" {
		if featured, err := strconv.ParseBool(featuredStr); err == nil {
			filter.Featured = &featured
		}
	}

	result, err := h.catalog.ListAuctions(filter, params)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	viewerID := utils.GetUserIDFromContext(c)
	detail, err := h.catalog.GetDetail(auctionID, viewerID)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, detail)
}

// GET /auctions/:id/status
//
// Polled by every open auction page, so the payload stays minimal.
func (h *AuctionHandler) GetAuctionStatus(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	snapshot, err := h.catalog.GetStatus(auctionID)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, snapshot)
}

// GET /auctions/watched
func (h *AuctionHandler) GetWatchedAuctions(c *gin.Context) {
	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.catalog.ListWatched(userID, params)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}
