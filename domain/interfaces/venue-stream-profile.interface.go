package interfaces

import (
	"time"

	"github.com/spooky-finn/go-quote-service/domain"
)

// VenueStreamProfile describes one venue's websocket dialect: where to
// connect for a watchlist, which raw messages carry depth data, and how to
// decode them. The feed client holds a profile value instead of being
// subclassed per venue.
type VenueStreamProfile interface {
	// EndpointFor builds the stream address for the watchlist. It fails on an
	// empty watchlist or a malformed endpoint, which are configuration
	// errors and must not be retried.
	EndpointFor(symbols []string) (string, error)

	// Classify reports whether a raw message is a book update. Anything else
	// is ignored by the feed client.
	Classify(raw []byte) bool

	Decode(raw []byte) (*domain.OrderBook, error)

	KeepaliveInterval() time.Duration
}
