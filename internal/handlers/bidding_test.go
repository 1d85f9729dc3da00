// internal/handlers/bidding_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/qooqz/auction-backend/internal/auctionerrors"
	"github.com/qooqz/auction-backend/internal/models"
	"github.com/qooqz/auction-backend/internal/services"
)

type fakeBiddingEngine struct {
	placeBidResult *services.PlaceBidResult
	placeBidErr    error
	buyNowResult   *services.BuyNowResult
	buyNowErr      error
	autoBidResult  *models.AutoBidSetting
	autoBidErr     error
	withdrawErr    error
	watchState     bool
	watchErr       error

	lastAuctionID uuid.UUID
	lastUserID    uuid.UUID
	lastAmount    float64
}

func (f *fakeBiddingEngine) PlaceBid(auctionID, userID uuid.UUID, amount float64, originIP string) (*services.PlaceBidResult, error) {
	f.lastAuctionID, f.lastUserID, f.lastAmount = auctionID, userID, amount
	return f.placeBidResult, f.placeBidErr
}

func (f *fakeBiddingEngine) BuyNow(auctionID, userID uuid.UUID, originIP string) (*services.BuyNowResult, error) {
	f.lastAuctionID, f.lastUserID = auctionID, userID
	return f.buyNowResult, f.buyNowErr
}

func (f *fakeBiddingEngine) SetAutoBid(auctionID, userID uuid.UUID, maxAmount float64) (*models.AutoBidSetting, error) {
	f.lastAuctionID, f.lastUserID, f.lastAmount = auctionID, userID, maxAmount
	return f.autoBidResult, f.autoBidErr
}

func (f *fakeBiddingEngine) WithdrawAutoBid(auctionID, userID uuid.UUID) error {
	f.lastAuctionID, f.lastUserID = auctionID, userID
	return f.withdrawErr
}

func (f *fakeBiddingEngine) ToggleWatch(auctionID, userID uuid.UUID) (bool, error) {
	f.lastAuctionID, f.lastUserID = auctionID, userID
	return f.watchState, f.watchErr
}

func setupBiddingRouter(engine BiddingEngine, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set("user_id", userID.String())
		}
		c.Next()
	})

	h := NewBiddingHandler(engine)
	r.POST("/auctions/:id/bid", h.PlaceBid)
	r.POST("/auctions/:id/buy-now", h.BuyNow)
	r.POST("/auctions/:id/auto-bid", h.SetAutoBid)
	r.DELETE("/auctions/:id/auto-bid", h.WithdrawAutoBid)
	r.POST("/auctions/:id/watch", h.ToggleWatch)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestPlaceBidSuccess(t *testing.T) {
	user := uuid.New()
	auctionID := uuid.New()
	engine := &fakeBiddingEngine{
		placeBidResult: &services.PlaceBidResult{BidID: uuid.New(), NewPrice: 105},
	}
	r := setupBiddingRouter(engine, user)

	w := doJSON(r, "POST", "/auctions/"+auctionID.String()+"/bid", gin.H{"amount": 105})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 105.0, data["new_price"])

	assert.Equal(t, auctionID, engine.lastAuctionID)
	assert.Equal(t, user, engine.lastUserID)
	assert.Equal(t, 105.0, engine.lastAmount)
}

func TestPlaceBidWithoutIdentity(t *testing.T) {
	engine := &fakeBiddingEngine{}
	r := setupBiddingRouter(engine, uuid.Nil)

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/bid", gin.H{"amount": 105})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceBidInvalidAuctionID(t *testing.T) {
	r := setupBiddingRouter(&fakeBiddingEngine{}, uuid.New())
	w := doJSON(r, "POST", "/auctions/not-a-uuid/bid", gin.H{"amount": 105})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceBidMissingAmount(t *testing.T) {
	r := setupBiddingRouter(&fakeBiddingEngine{}, uuid.New())
	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/bid", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceBidErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", auctionerrors.ErrAuctionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not active", auctionerrors.ErrAuctionNotActive, http.StatusConflict, "AUCTION_NOT_ACTIVE"},
		{"expired", auctionerrors.ErrAuctionExpired, http.StatusConflict, "AUCTION_EXPIRED"},
		{"too low", auctionerrors.NewBidTooLow(110), http.StatusBadRequest, "BID_TOO_LOW"},
		{"busy", auctionerrors.ErrBusy, http.StatusServiceUnavailable, "AUCTION_BUSY"},
		{"storage", auctionerrors.ErrStorageFailure, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := &fakeBiddingEngine{placeBidErr: tc.err}
			r := setupBiddingRouter(engine, uuid.New())

			w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/bid", gin.H{"amount": 105})

			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeBody(t, w)
			assert.False(t, resp["success"].(bool))
			errObj := resp["error"].(map[string]interface{})
			assert.Equal(t, tc.wantCode, errObj["code"])
		})
	}
}

func TestBidTooLowResponseCarriesMinimum(t *testing.T) {
	engine := &fakeBiddingEngine{placeBidErr: auctionerrors.NewBidTooLow(117.50)}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/bid", gin.H{"amount": 105})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	errObj := resp["error"].(map[string]interface{})
	details := errObj["details"].(map[string]interface{})
	assert.Equal(t, 117.50, details["minimum_bid"])
}

func TestBuyNowSuccess(t *testing.T) {
	engine := &fakeBiddingEngine{
		buyNowResult: &services.BuyNowResult{BidID: uuid.New(), Amount: 500},
	}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/buy-now", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 500.0, data["amount"])
}

func TestBuyNowWithoutPrice(t *testing.T) {
	engine := &fakeBiddingEngine{buyNowErr: auctionerrors.ErrNoBuyNowPrice}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/buy-now", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetAutoBid(t *testing.T) {
	engine := &fakeBiddingEngine{
		autoBidResult: &models.AutoBidSetting{MaxBidAmount: 300, IsActive: true},
	}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/auto-bid", gin.H{"max_amount": 300})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 300.0, engine.lastAmount)
}

func TestSetAutoBidDisabled(t *testing.T) {
	engine := &fakeBiddingEngine{autoBidErr: auctionerrors.ErrAutoBidDisabled}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/auto-bid", gin.H{"max_amount": 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody(t, w)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "AUTO_BID_DISABLED", errObj["code"])
}

func TestWithdrawAutoBid(t *testing.T) {
	engine := &fakeBiddingEngine{}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "DELETE", "/auctions/"+uuid.New().String()+"/auto-bid", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithdrawAutoBidWithoutActiveCeiling(t *testing.T) {
	engine := &fakeBiddingEngine{withdrawErr: auctionerrors.ErrAutoBidNotFound}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "DELETE", "/auctions/"+uuid.New().String()+"/auto-bid", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeBody(t, w)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "AUTO_BID_NOT_FOUND", errObj["code"])
}

func TestToggleWatchReportsState(t *testing.T) {
	engine := &fakeBiddingEngine{watchState: true}
	r := setupBiddingRouter(engine, uuid.New())

	w := doJSON(r, "POST", "/auctions/"+uuid.New().String()+"/watch", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["watching"])
}
