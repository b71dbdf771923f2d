// Package api exposes the token ledger over HTTP. The API accepts human
// decimal amounts and converts them to base units against the token's decimal
// count; ledger rejections come back as 422, malformed input as 400.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sheikh-saqib/token-ledger-system/internal/events/memory"
	"github.com/sheikh-saqib/token-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/token-ledger-system/internal/metrics"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Server routes HTTP requests to a TokenLedger and its notification log.
type Server struct {
	ledger *ledger.TokenLedger
	events *memory.Log
	logger zerolog.Logger
	router chi.Router
}

// NewServer builds the router. An rps of zero disables rate limiting.
func NewServer(l *ledger.TokenLedger, events *memory.Log, logger zerolog.Logger, rps float64) *Server {
	s := &Server{
		ledger: l,
		events: events,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(observeRequests)
	if rps > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(rps), int(rps)+1)))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/token", s.handleToken)
	r.Get("/accounts/{address}/balance", s.handleBalance)
	r.Get("/allowance", s.handleAllowance)
	r.Post("/transfers", s.handleTransfer)
	r.Post("/approvals", s.handleApprove)
	r.Post("/delegated-transfers", s.handleTransferFrom)
	r.Get("/events", s.handleEvents)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleToken(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":         s.ledger.Name(),
		"symbol":       s.ledger.Symbol(),
		"decimals":     s.ledger.Decimals(),
		"total_supply": formatAmount(s.ledger.TotalSupply(), s.ledger.Decimals()),
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := models.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	balance, err := s.ledger.BalanceOf(addr)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"account": addr,
		"balance": formatAmount(balance, s.ledger.Decimals()),
	})
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := models.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	spender, err := models.ParseAddress(r.URL.Query().Get("spender"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	allowance, err := s.ledger.Allowance(owner, spender)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"owner":     owner,
		"spender":   spender,
		"allowance": formatAmount(allowance, s.ledger.Decimals()),
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   models.Address `json:"from"`
		To     models.Address `json:"to"`
		Amount string         `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	amount, err := parseAmount(req.Amount, s.ledger.Decimals())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.ledger.Transfer(r.Context(), req.From, req.To, amount)
	metrics.ObserveOperation("transfer", err)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "transferred"})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner   models.Address `json:"owner"`
		Spender models.Address `json:"spender"`
		Amount  string         `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	amount, err := parseAmount(req.Amount, s.ledger.Decimals())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.ledger.Approve(r.Context(), req.Owner, req.Spender, amount)
	metrics.ObserveOperation("approve", err)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "approved"})
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spender models.Address `json:"spender"`
		From    models.Address `json:"from"`
		To      models.Address `json:"to"`
		Amount  string         `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	amount, err := parseAmount(req.Amount, s.ledger.Decimals())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.ledger.TransferFrom(r.Context(), req.Spender, req.From, req.To, amount)
	metrics.ObserveOperation("transfer_from", err)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"status": "transferred"})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.events.All())
}

// writeLedgerError maps ledger rejections to 422 and anything else to 500.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	for _, rejection := range []error{
		ledger.ErrInvalidRecipient,
		ledger.ErrInvalidSender,
		ledger.ErrInvalidSpender,
		ledger.ErrInsufficientBalance,
		ledger.ErrInsufficientAllowance,
	} {
		if errors.Is(err, rejection) {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}
