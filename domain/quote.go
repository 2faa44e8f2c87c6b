package domain

import "errors"

type QuoteAction string

const (
	QuoteActionBuy  QuoteAction = "buy"
	QuoteActionSell QuoteAction = "sell"
)

var (
	ErrSymbolNotFound        = errors.New("symbol not found")
	ErrInsufficientLiquidity = errors.New("order book is not liquid enough to fill the request")
)

// QuoteRequest asks what it costs to trade Amount. Amount is denominated in
// BaseCurrency units when the cache holds the base+quote pair, and in
// QuoteCurrency units when only the reversed pair is cached.
type QuoteRequest struct {
	Action        QuoteAction
	BaseCurrency  string
	QuoteCurrency string
	Amount        float64
}

// QuoteResult carries either a filled quote or the reason it could not be
// served. Err wraps ErrSymbolNotFound or ErrInsufficientLiquidity and is nil
// exactly when the quote succeeded.
type QuoteResult struct {
	Total    float64
	Price    float64
	Currency string
	Err      error
}
