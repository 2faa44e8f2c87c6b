package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookStorage_PutGet(t *testing.T) {
	storage := NewOrderBookStorage()

	book := &OrderBook{Symbol: "ETHUSDT", Asks: []PriceLevel{{Price: 2000, Quantity: 1}}}
	storage.Put(book)

	got, err := storage.Get("ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, book, got)
}

func TestOrderBookStorage_NotFound(t *testing.T) {
	storage := NewOrderBookStorage()

	_, err := storage.Get("BTCUSDT")
	assert.ErrorIs(t, err, ErrOrderBookNotFound)
}

// A feed update replaces the symbol's book wholesale.
func TestOrderBookStorage_WholesaleReplace(t *testing.T) {
	storage := NewOrderBookStorage()

	storage.OnBookUpdate(&OrderBook{Symbol: "ETHUSDT", Asks: []PriceLevel{{Price: 2000, Quantity: 1}, {Price: 2100, Quantity: 2}}})
	storage.OnBookUpdate(&OrderBook{Symbol: "ETHUSDT", Asks: []PriceLevel{{Price: 2050, Quantity: 3}}})

	got, err := storage.Get("ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, []PriceLevel{{Price: 2050, Quantity: 3}}, got.Asks, "Old levels must not survive an update")
	assert.Equal(t, 1, storage.Count())
}

func TestOrderBookStorage_SymbolsSorted(t *testing.T) {
	storage := NewOrderBookStorage()

	storage.Put(&OrderBook{Symbol: "ETHUSDT"})
	storage.Put(&OrderBook{Symbol: "BTCUSDT"})
	storage.Put(&OrderBook{Symbol: "LTCUSDT"})

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "LTCUSDT"}, storage.Symbols())
}

func TestOrderBookStorage_ConcurrentReaders(t *testing.T) {
	storage := NewOrderBookStorage()
	storage.Put(&OrderBook{Symbol: "ETHUSDT", Asks: []PriceLevel{{Price: 2000, Quantity: 1}}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if _, err := storage.Get("ETHUSDT"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	// one writer, as in production
	for j := 0; j < 1000; j++ {
		storage.Put(&OrderBook{Symbol: "ETHUSDT", Asks: []PriceLevel{{Price: float64(j), Quantity: 1}}})
	}

	wg.Wait()
}
