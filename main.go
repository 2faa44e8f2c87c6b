package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/spooky-finn/go-quote-service/domain"
	"github.com/spooky-finn/go-quote-service/domain/interfaces"
	"github.com/spooky-finn/go-quote-service/helpers"
	promclient "github.com/spooky-finn/go-quote-service/infrastructure/prometheus"
	"github.com/spooky-finn/go-quote-service/provider"
	"github.com/spooky-finn/go-quote-service/provider/binance"
	"github.com/spooky-finn/go-quote-service/rpc"
	"github.com/spooky-finn/go-quote-service/usecase"
)

var defaultSymbols = []string{"BTCUSDT", "ETHUSDT", "LTCUSDT", "BNBUSDT", "USDTTRY"}

const defaultPort = int64(5021)

func main() {
	godotenv.Load()

	symbols := watchlist()
	port := quotePort()

	profile := binance.NewSpotProfile()
	if endpoint := os.Getenv("BINANCE_WS_ENDPOINT"); endpoint != "" {
		profile = binance.NewSpotProfileWithEndpoint(endpoint)
	}

	storage := domain.NewOrderBookStorage()
	quoteUseCase := usecase.NewQuoteUseCase(storage)

	feed := provider.NewFeedClient(profile, symbols, []interfaces.BookSubscriber{
		storage,
		promclient.NewCacheMetricsSubscriber(storage),
	})
	if err := feed.Start(); err != nil {
		log.Fatalf("failed to start feed client: %v", err)
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go promclient.StartPromClientServer(addr)
	}

	server := rpc.NewServer(
		&rpc.ServerConfig{Addr: ":" + helpers.IntToString(port)},
		quoteUseCase, storage, feed,
	)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")

	// stop the feed first so no cache writes happen while draining
	feed.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

func watchlist() []string {
	raw := os.Getenv("SYMBOLS")
	if raw == "" {
		return defaultSymbols
	}

	symbols := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	return symbols
}

func quotePort() int64 {
	raw := os.Getenv("QUOTE_PORT")
	if raw == "" {
		return defaultPort
	}

	port, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("invalid QUOTE_PORT %q: %v", raw, err)
	}

	return port
}
