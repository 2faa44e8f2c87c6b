package binance

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spooky-finn/go-quote-service/domain"
)

const (
	binanceDefaultWebsocketEndpoint = "wss://stream.binance.com:9443/stream"

	// partial book depth and receive cadence of the subscribed streams
	depthLimit  = 5
	updateSpeed = "100ms"

	pingDelay = time.Minute * 3
)

// Message is the combined-stream envelope: every payload arrives wrapped with
// the name of the stream that produced it.
type Message[T any] struct {
	Stream string `json:"stream"`
	Data   T      `json:"data"`
}

type PartialDepthData struct {
	LastUpdateId int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// SpotProfile is the Binance Spot venue profile: it builds the combined
// partial-depth stream address for a watchlist and decodes the depth messages
// arriving on it.
type SpotProfile struct {
	endpoint string
}

func NewSpotProfile() *SpotProfile {
	return &SpotProfile{endpoint: binanceDefaultWebsocketEndpoint}
}

// NewSpotProfileWithEndpoint overrides the stream endpoint, e.g. for a local
// test venue or a proxy.
func NewSpotProfileWithEndpoint(endpoint string) *SpotProfile {
	return &SpotProfile{endpoint: endpoint}
}

func (p *SpotProfile) EndpointFor(symbols []string) (string, error) {
	if len(symbols) == 0 {
		return "", fmt.Errorf("symbols must not be empty to connect socket")
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("malformed endpoint %q: %w", p.endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("malformed endpoint %q: scheme must be ws or wss", p.endpoint)
	}

	streams := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		streams = append(streams, fmt.Sprintf("%s@depth%d@%s", strings.ToLower(symbol), depthLimit, updateSpeed))
	}

	return fmt.Sprintf("%s?streams=%s", p.endpoint, strings.Join(streams, "/")), nil
}

func (p *SpotProfile) Classify(raw []byte) bool {
	var msg Message[json.RawMessage]
	if err := json.Unmarshal(raw, &msg); err != nil {
		return false
	}

	return strings.Contains(msg.Stream, "@depth")
}

func (p *SpotProfile) Decode(raw []byte) (*domain.OrderBook, error) {
	var msg Message[PartialDepthData]
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("unmarshaling depth message: %w", err)
	}

	// stream name 'ethusdt@depth5@100ms' carries the symbol
	symbol := strings.ToUpper(strings.Split(msg.Stream, "@")[0])
	if symbol == "" {
		return nil, fmt.Errorf("stream name %q carries no symbol", msg.Stream)
	}

	bids, err := domain.ParsePriceLevels(msg.Data.Bids)
	if err != nil {
		return nil, fmt.Errorf("bids of %s: %w", symbol, err)
	}
	asks, err := domain.ParsePriceLevels(msg.Data.Asks)
	if err != nil {
		return nil, fmt.Errorf("asks of %s: %w", symbol, err)
	}

	return &domain.OrderBook{
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		ReceivedAt: time.Now().Unix(),
	}, nil
}

func (p *SpotProfile) KeepaliveInterval() time.Duration {
	return pingDelay
}
