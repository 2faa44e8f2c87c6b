package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spooky-finn/go-quote-service/domain"
	"github.com/spooky-finn/go-quote-service/provider"
	"github.com/spooky-finn/go-quote-service/provider/binance"
	"github.com/spooky-finn/go-quote-service/usecase"
)

func newTestServer() *Server {
	storage := domain.NewOrderBookStorage()
	storage.OnBookUpdate(&domain.OrderBook{
		Symbol: "ETHUSDT",
		Asks: []domain.PriceLevel{
			{Price: 2000, Quantity: 10},
			{Price: 2100, Quantity: 15},
		},
		Bids: []domain.PriceLevel{
			{Price: 1900, Quantity: 10},
		},
	})

	// never started; only its state is read by /healthz
	feed := provider.NewFeedClient(binance.NewSpotProfile(), []string{"ETHUSDT"}, nil)

	return NewServer(&ServerConfig{Addr: ":0"}, usecase.NewQuoteUseCase(storage), storage, feed)
}

func postQuote(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleQuote(rec, req)
	return rec
}

func TestHandleQuote_Success(t *testing.T) {
	s := newTestServer()

	rec := postQuote(t, s, `{"action":"buy","base_currency":"ETH","quote_currency":"USDT","amount":"1.5"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "3000", resp["total"])
	assert.Equal(t, "2000", resp["price"])
	assert.Equal(t, "USDT", resp["currency"])
}

func TestHandleQuote_ValidationFailure(t *testing.T) {
	s := newTestServer()

	rec := postQuote(t, s, `{"action":"buy","base_currency":"ETH","quote_currency":"USDT"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing parameter 'amount'")
}

func TestHandleQuote_BadBody(t *testing.T) {
	s := newTestServer()

	rec := postQuote(t, s, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuote_UnknownPair(t *testing.T) {
	s := newTestServer()

	rec := postQuote(t, s, `{"action":"buy","base_currency":"LTC","quote_currency":"USDT","amount":"1"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "LTCUSDT")
	assert.Contains(t, rec.Body.String(), "USDTLTC")
}

func TestHandleQuote_InsufficientLiquidity(t *testing.T) {
	s := newTestServer()

	rec := postQuote(t, s, `{"action":"buy","base_currency":"ETH","quote_currency":"USDT","amount":"10000"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleQuote_MethodNotAllowed(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	rec := httptest.NewRecorder()
	s.handleQuote(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Feed    string `json:"feed"`
		Symbols int    `json:"symbols"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(provider.StateIdle), resp.Feed)
	assert.Equal(t, 1, resp.Symbols)
}
