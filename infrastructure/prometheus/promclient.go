package promclient

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spooky-finn/go-quote-service/domain"
)

var FeedConnectsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "feed_connects_total",
		Help: "successful websocket connects to the venue",
	},
)

var FeedReconnectsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "feed_reconnects_total",
		Help: "full reconnects after a live connection was lost",
	},
)

var FeedDecodeErrorsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "feed_decode_errors_total",
		Help: "malformed feed payloads that were skipped",
	},
)

var BookUpdatesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "book_updates_total",
		Help: "order book snapshots published to the cache",
	},
)

var TrackedSymbolsGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tracked_symbols",
		Help: "symbols currently held in the order book cache",
	},
)

var QuoteRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quote_requests_total",
		Help: "quote requests by outcome",
	},
	[]string{"outcome"},
)

// CacheMetricsSubscriber mirrors cache writes into the exported collectors.
// It is registered on the feed client next to the order book storage.
type CacheMetricsSubscriber struct {
	storage *domain.OrderBookStorage
}

func NewCacheMetricsSubscriber(storage *domain.OrderBookStorage) *CacheMetricsSubscriber {
	return &CacheMetricsSubscriber{storage: storage}
}

func (m *CacheMetricsSubscriber) OnBookUpdate(_ *domain.OrderBook) {
	BookUpdatesTotal.Inc()
	TrackedSymbolsGauge.Set(float64(m.storage.Count()))
}

func StartPromClientServer(addr string) {
	reg := prometheus.NewRegistry()
	promHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	reg.MustRegister(
		FeedConnectsTotal,
		FeedReconnectsTotal,
		FeedDecodeErrorsTotal,
		BookUpdatesTotal,
		TrackedSymbolsGauge,
		QuoteRequestsTotal,
	)
	reg.MustRegister(collectors.NewGoCollector())

	http.Handle("/metrics", promHandler)
	log.Printf("prometheus server listening at %s", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
