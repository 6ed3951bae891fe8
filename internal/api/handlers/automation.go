package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tradepilot/backend/internal/automation"
	"github.com/wonny/tradepilot/backend/internal/candidate"
	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// AutomationHandler handles automation disposition endpoints
// ⭐ SSOT: 자동매매 상태 API 핸들러는 이 구조체에서만
type AutomationHandler struct {
	service *candidate.Service
	store   *automation.Store
	logger  *logger.Logger
}

// NewAutomationHandler creates an automation handler
func NewAutomationHandler(service *candidate.Service, store *automation.Store, log *logger.Logger) *AutomationHandler {
	return &AutomationHandler{
		service: service,
		store:   store,
		logger:  log,
	}
}

// transitionRequest is the transition request body
type transitionRequest struct {
	Status contracts.AutomationStatus `json:"status"`
}

// GetStatuses returns every tracked symbol's disposition
// GET /api/automation
func (h *AutomationHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// GetStatus returns one symbol's disposition
// GET /api/automation/{symbol}
func (h *AutomationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"status": h.store.Get(symbol),
	})
}

// Transition applies an operator-triggered status transition
// POST /api/candidates/{symbol}/automation
func (h *AutomationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Status {
	case contracts.AutomationAuto, contracts.AutomationPaused,
		contracts.AutomationWatchOnly, contracts.AutomationBuying:
	default:
		respondError(w, http.StatusBadRequest, "unknown automation status")
		return
	}

	applied, err := h.service.Transition(ctx, symbol, req.Status)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).
			Warn("Transition persisted partially")
	}

	// 불법 전이는 no-op이지 오류가 아님 (중복 통지 허용)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"applied": applied,
		"status":  h.store.Get(symbol),
	})
}
