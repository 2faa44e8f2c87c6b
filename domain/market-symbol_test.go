package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spooky-finn/go-quote-service/domain"
)

func TestNewMarketSymbol(t *testing.T) {
	tests := []struct {
		name        string
		base, quote string
		expectError bool
	}{
		{"ValidSymbol", "BTC", "USDT", false},
		{"EqualBaseQuote", "ETH", "ETH", true},
		{"EqualIgnoringCase", "eth", "ETH", true},
		{"EmptyBase", "", "USDT", true},
		{"EmptyQuote", "BTC", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewMarketSymbol(tt.base, tt.quote)

			if tt.expectError {
				assert.Error(t, err, "NewMarketSymbol() should return an error")
			} else {
				assert.NoError(t, err, "NewMarketSymbol() should not return an error")
			}
		})
	}
}

func TestMarketSymbol_Upper(t *testing.T) {
	ms, err := domain.NewMarketSymbol("eth", "Usdt")
	assert.NoError(t, err)

	assert.Equal(t, "ETHUSDT", ms.Upper(), "Upper() should produce the venue symbol")
}

func TestMarketSymbol_Reversed(t *testing.T) {
	ms, err := domain.NewMarketSymbol("ETH", "USDT")
	assert.NoError(t, err)

	assert.Equal(t, "USDTETH", ms.Reversed().Upper())
	assert.Equal(t, "ETHUSDT", ms.Reversed().Reversed().Upper())
}

func TestMarketSymbol_Join(t *testing.T) {
	ms := domain.MarketSymbol{BaseAsset: "btc", QuoteAsset: "usdt"}

	assert.Equal(t, "btc_usdt", ms.Join("_"))
	assert.Equal(t, "btc_usdt", ms.String())
}
