package handlers

import (
	"net/http"
	"strconv"

	"github.com/wonny/tradepilot/backend/internal/candidate"
	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// CandidateHandler handles candidate API endpoints
// ⭐ SSOT: 후보 API 핸들러는 이 구조체에서만
type CandidateHandler struct {
	service *candidate.Service
	config  *config.Config
	logger  *logger.Logger
}

// NewCandidateHandler creates a candidate handler
func NewCandidateHandler(service *candidate.Service, cfg *config.Config, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

// GetCandidates returns the latest ranked candidate list
// GET /api/candidates?sort=profit_projection|signal_strength|risk_score&limit=20
func (h *CandidateHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sortKey := contracts.SortKey(r.URL.Query().Get("sort"))
	if sortKey == "" {
		sortKey = contracts.SortByProfitProjection
	}
	if !sortKey.Valid() {
		respondError(w, http.StatusBadRequest, "invalid sort key")
		return
	}

	limit := h.config.Trading.CandidateLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = l
	}

	result, err := h.service.Latest(ctx, sortKey, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load candidates")
		respondError(w, http.StatusNotFound, "no candidate run available")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Generate triggers an on-demand generation run
// POST /api/candidates/generate
func (h *CandidateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tradingCfg := &contracts.AutoTradingConfig{
		Enabled:          h.config.Trading.Enabled,
		MaxPositionSize:  h.config.Trading.MaxPositionSize,
		RiskPerTrade:     h.config.Trading.RiskPerTrade,
		MaxCorrelation:   h.config.Trading.MaxCorrelation,
		TargetDeployment: h.config.Trading.TargetDeployment,
	}

	result, err := h.service.Generate(ctx, tradingCfg, h.config.Trading.AccountValue, h.config.Trading.CandidateLimit)
	if err != nil {
		h.logger.WithError(err).Error("Candidate generation failed")
		respondError(w, http.StatusInternalServerError, "candidate generation failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
