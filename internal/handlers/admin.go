// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qooqz/auction-backend/internal/i18n"
	"github.com/qooqz/auction-backend/internal/models"
	"github.com/qooqz/auction-backend/internal/services"
	"github.com/qooqz/auction-backend/internal/utils"
)

// AdminHandler serves the back-office auction catalog.
type AdminHandler struct {
	catalog AuctionCatalog
	storage ImageStorage
}

func NewAdminHandler(catalog AuctionCatalog, storage ImageStorage) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		storage: storage,
	}
}

// GET /admin/auctions
func (h *AdminHandler) GetAuctions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AuctionFilter{
		Search: params.Search,
	}
	if params.Status != "" {
		filter.Status = models.AuctionStatus(params.Status)
	}
	if params.Type != "" {
		filter.AuctionType = models.AuctionType(params.Type)
	}
	if tenantID, ok := utils.GetTenantIDFromContext(c); ok {
		filter.TenantID = &tenantID
	}

	result, err := h.catalog.ListAuctionsAdmin(filter, params)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// POST /admin/auctions
func (h *AdminHandler) CreateAuction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID := utils.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.CreateAuctionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if tenantID, ok := utils.GetTenantIDFromContext(c); ok {
		input.TenantID = tenantID
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&input)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.catalog.CreateAuction(input, userID)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuctionCreated),
		"auction": auction,
	})
}

// PUT /admin/auctions/:id
func (h *AdminHandler) UpdateAuction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	var input services.UpdateAuctionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&input)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	auction, err := h.catalog.UpdateAuction(auctionID, input)
	if err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuctionUpdated),
		"auction": auction,
	})
}

// DELETE /admin/auctions/:id
func (h *AdminHandler) CancelAuction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	if err := h.catalog.CancelAuction(auctionID); err != nil {
		utils.AuctionErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuctionCancelled),
	})
}

// POST /admin/auctions/:id/images
func (h *AdminHandler) UploadAuctionImage(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid auction ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.storage.UploadAuctionImage(auctionID, file, header)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}
