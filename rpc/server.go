package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spooky-finn/go-quote-service/domain"
	"github.com/spooky-finn/go-quote-service/helpers"
	"github.com/spooky-finn/go-quote-service/provider"
	"github.com/spooky-finn/go-quote-service/usecase"
)

var logger = log.New(os.Stdout, "[rpc] ", log.LstdFlags)

type ServerConfig struct {
	Addr string
}

// Server is the HTTP edge in front of the quote engine. It validates and
// decodes requests, maps engine outcomes to status codes, and serializes
// results; it holds no state of its own.
type Server struct {
	quoteUseCase      *usecase.QuoteUseCase
	validationService *ValidationService
	storage           *domain.OrderBookStorage
	feed              *provider.FeedClient
	httpServer        *http.Server
}

func NewServer(
	conf *ServerConfig,
	quoteUseCase *usecase.QuoteUseCase,
	storage *domain.OrderBookStorage,
	feed *provider.FeedClient,
) *Server {
	s := &Server{
		quoteUseCase:      quoteUseCase,
		validationService: NewValidationService(),
		storage:           storage,
		feed:              feed,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/quote", s.handleQuote)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:              conf.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) ListenAndServe() error {
	logger.Printf("serving quotes at %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type quoteResponse struct {
	Total    string `json:"total"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Feed    string `json:"feed"`
	Symbols int    `json:"symbols"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	params := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object of string parameters"})
		return
	}

	if err := s.validationService.ValidateQuoteParams(params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	// validated above
	amount, _ := strconv.ParseFloat(params["amount"], 64)

	result := s.quoteUseCase.Quote(&domain.QuoteRequest{
		Action:        domain.QuoteAction(params["action"]),
		BaseCurrency:  params["base_currency"],
		QuoteCurrency: params["quote_currency"],
		Amount:        amount,
	})

	if result.Err != nil {
		writeJSON(w, statusFor(result.Err), errorResponse{Error: result.Err.Error()})
		return
	}

	resp := quoteResponse{
		Total:    formatDecimal(result.Total),
		Price:    formatDecimal(result.Price),
		Currency: result.Currency,
	}

	logger.Printf("served quote %s", helpers.ToJsonString(resp))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Feed:    string(s.feed.State()),
		Symbols: s.storage.Count(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Printf("error encoding response: %v", err)
	}
}
