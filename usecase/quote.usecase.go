package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gammazero/deque"

	"github.com/spooky-finn/go-quote-service/domain"
	promclient "github.com/spooky-finn/go-quote-service/infrastructure/prometheus"
)

// QuoteUseCase answers price-discovery queries against the live order book
// cache. It never touches the network; a quote is a read of the cache plus a
// walk over at most one side of one book.
type QuoteUseCase struct {
	storage *domain.OrderBookStorage
}

func NewQuoteUseCase(storage *domain.OrderBookStorage) *QuoteUseCase {
	return &QuoteUseCase{storage: storage}
}

// Quote resolves which cached book serves the requested pair and computes the
// weighted-average fill price for the requested amount.
//
// The pair resolves in one of two denomination modes: direct (the cache holds
// base+quote, Amount is a base-asset quantity) or reversed (the cache holds
// quote+base, Amount is a quote-asset volume that converts through price).
// Buy consumes asks, Sell consumes bids, in both modes.
func (u *QuoteUseCase) Quote(req *domain.QuoteRequest) *domain.QuoteResult {
	pair, err := domain.NewMarketSymbol(req.BaseCurrency, req.QuoteCurrency)
	if err != nil {
		return u.fail(fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, err))
	}

	symbol := pair.Upper()
	symbolReversed := pair.Reversed().Upper()

	usesReversed := false
	book, err := u.storage.Get(symbol)
	if err != nil {
		book, err = u.storage.Get(symbolReversed)
		usesReversed = true
	}
	if err != nil {
		return u.fail(fmt.Errorf(
			"%w: requested symbol %q or %q is not on the watchlist, current order book symbols are %q",
			domain.ErrSymbolNotFound, symbol, symbolReversed, strings.Join(u.storage.Symbols(), ","),
		))
	}

	var offers []domain.PriceLevel
	if req.Action == domain.QuoteActionBuy {
		offers = book.Asks
	} else {
		offers = book.Bids
	}

	filled, complete := fillWalk(offers, req.Amount, usesReversed)
	quantity, volume := reduceFill(filled)

	if !complete {
		covered := quantity
		if usesReversed {
			covered = volume
		}
		return u.fail(fmt.Errorf(
			"%w: %d levels on the %s side cover %.2f%% of the requested amount",
			domain.ErrInsufficientLiquidity, len(offers), side(req.Action), covered/req.Amount*100,
		))
	}

	if quantity == 0 {
		return u.fail(fmt.Errorf("%w: fill consumed zero quantity", domain.ErrInsufficientLiquidity))
	}

	total := volume
	if usesReversed {
		total = quantity
	}

	promclient.QuoteRequestsTotal.WithLabelValues("ok").Inc()
	return &domain.QuoteResult{
		Total:    total,
		Price:    volume / quantity,
		Currency: req.QuoteCurrency,
	}
}

// fillWalk consumes offers best-first until the cumulative fill metric
// reaches amount. The metric is quantity for quantity-denominated requests
// and price*quantity for volume-denominated ones. The completing level is
// consumed fractionally so the metric equals amount exactly; levels beyond it
// are not touched.
func fillWalk(offers []domain.PriceLevel, amount float64, byVolume bool) (filled *deque.Deque[domain.PriceLevel], complete bool) {
	filled = new(deque.Deque[domain.PriceLevel])

	var totalQuantity, totalVolume float64

	for _, offer := range offers {
		levelVolume := offer.Price * offer.Quantity

		if byVolume {
			if totalVolume+levelVolume >= amount {
				volumeLeft := amount - totalVolume
				filled.PushBack(domain.PriceLevel{Price: offer.Price, Quantity: volumeLeft / offer.Price})
				return filled, true
			}
		} else {
			if totalQuantity+offer.Quantity >= amount {
				filled.PushBack(domain.PriceLevel{Price: offer.Price, Quantity: amount - totalQuantity})
				return filled, true
			}
		}

		totalQuantity += offer.Quantity
		totalVolume += levelVolume
		filled.PushBack(offer)
	}

	return filled, false
}

// reduceFill folds the consumed levels into total quantity and total volume.
// The weighted-average fill price is their ratio.
func reduceFill(filled *deque.Deque[domain.PriceLevel]) (quantity, volume float64) {
	for i := 0; i < filled.Len(); i++ {
		level := filled.At(i)
		quantity += level.Quantity
		volume += level.Price * level.Quantity
	}

	return quantity, volume
}

func (u *QuoteUseCase) fail(err error) *domain.QuoteResult {
	switch {
	case errors.Is(err, domain.ErrInsufficientLiquidity):
		promclient.QuoteRequestsTotal.WithLabelValues("insufficient_liquidity").Inc()
	case errors.Is(err, domain.ErrSymbolNotFound):
		promclient.QuoteRequestsTotal.WithLabelValues("not_found").Inc()
	}

	return &domain.QuoteResult{Err: err}
}

func side(action domain.QuoteAction) string {
	if action == domain.QuoteActionBuy {
		return "ask"
	}
	return "bid"
}
