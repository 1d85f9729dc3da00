// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qooqz/auction-backend/internal/auctionerrors"
	"github.com/qooqz/auction-backend/internal/i18n"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	lang := GetLangFromContext(c)
	if message == "" {
		message = i18n.T(lang, i18n.KeyAdminAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, resource+".not_found")
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	lang := GetLangFromContext(c)
	message := i18n.T(lang, i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// AuctionErrorResponse maps bidding-engine error kinds onto HTTP responses.
// Storage failures are deliberately opaque to callers; the service layer
// already logged the cause.
func AuctionErrorResponse(c *gin.Context, err error) {
	lang := GetLangFromContext(c)

	var tooLow *auctionerrors.BidTooLowError
	if errors.As(err, &tooLow) {
		ErrorResponse(c, http.StatusBadRequest, "BID_TOO_LOW",
			i18n.T(lang, i18n.KeyBidTooLow, tooLow.Minimum),
			gin.H{"minimum_bid": tooLow.Minimum})
		return
	}

	switch {
	case errors.Is(err, auctionerrors.ErrUnauthenticated):
		UnauthorizedResponse(c, "")
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		NotFoundResponse(c, "auction")
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		ErrorResponse(c, http.StatusConflict, "AUCTION_NOT_ACTIVE",
			i18n.T(lang, i18n.KeyAuctionNotActive), nil)
	case errors.Is(err, auctionerrors.ErrAuctionExpired):
		ErrorResponse(c, http.StatusConflict, "AUCTION_EXPIRED",
			i18n.T(lang, i18n.KeyAuctionExpired), nil)
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		ErrorResponse(c, http.StatusBadRequest, "INVALID_AMOUNT",
			i18n.T(lang, i18n.KeyBidInvalidAmount), nil)
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		ErrorResponse(c, http.StatusBadRequest, "BID_TOO_LOW",
			i18n.T(lang, i18n.KeyBidTooLow, 0.0), nil)
	case errors.Is(err, auctionerrors.ErrNoBuyNowPrice):
		ErrorResponse(c, http.StatusBadRequest, "NO_BUY_NOW_PRICE",
			i18n.T(lang, i18n.KeyNoBuyNowPrice), nil)
	case errors.Is(err, auctionerrors.ErrAutoBidDisabled):
		ErrorResponse(c, http.StatusBadRequest, "AUTO_BID_DISABLED",
			i18n.T(lang, i18n.KeyAutoBidDisabled), nil)
	case errors.Is(err, auctionerrors.ErrAutoBidNotFound):
		ErrorResponse(c, http.StatusNotFound, "AUTO_BID_NOT_FOUND",
			i18n.T(lang, i18n.KeyAutoBidNotFound), nil)
	case errors.Is(err, auctionerrors.ErrBusy):
		ErrorResponse(c, http.StatusServiceUnavailable, "AUCTION_BUSY",
			i18n.T(lang, i18n.KeyAuctionBusy), nil)
	default:
		InternalErrorResponse(c, i18n.T(lang, i18n.KeyInternalError))
	}
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

// GetUserIDFromContext returns the authenticated user's id, or uuid.Nil
// when the request carries no valid identity.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	if val, exists := c.Get("user_id"); exists {
		if idStr, ok := val.(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}

func GetUserTypeFromContext(c *gin.Context) (string, bool) {
	if userType, exists := c.Get("user_type"); exists {
		if userTypeStr, ok := userType.(string); ok {
			return userTypeStr, true
		}
	}
	return "", false
}

func GetTenantIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	if val, exists := c.Get("tenant_id"); exists {
		if idStr, ok := val.(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				return id, true
			}
		}
	}
	return uuid.Nil, false
}
