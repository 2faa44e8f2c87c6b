package domain

import (
	"errors"
	"sort"
	"sync"
)

var ErrOrderBookNotFound = errors.New("order book not found")

// OrderBookStorage holds the freshest order book per symbol. There is exactly
// one writer (the feed client's listen loop) and arbitrarily many concurrent
// readers. Entries are never deleted or expired; a symbol once seen is served
// until overwritten.
type OrderBookStorage struct {
	mu      sync.RWMutex
	storage map[string]*OrderBook
}

func NewOrderBookStorage() *OrderBookStorage {
	return &OrderBookStorage{
		storage: make(map[string]*OrderBook),
	}
}

// OnBookUpdate makes the storage a feed subscriber. Each decoded book
// replaces the previous one for its symbol wholesale.
func (o *OrderBookStorage) OnBookUpdate(book *OrderBook) {
	o.Put(book)
}

func (o *OrderBookStorage) Put(book *OrderBook) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.storage[book.Symbol] = book
}

func (o *OrderBookStorage) Get(symbol string) (*OrderBook, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	book, ok := o.storage[symbol]
	if !ok {
		return nil, ErrOrderBookNotFound
	}

	return book, nil
}

// Symbols returns the cached symbols in sorted order.
func (o *OrderBookStorage) Symbols() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	symbols := make([]string, 0, len(o.storage))
	for symbol := range o.storage {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)
	return symbols
}

func (o *OrderBookStorage) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return len(o.storage)
}
