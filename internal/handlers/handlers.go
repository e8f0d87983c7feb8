// Package handlers exposes the validator over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/cache"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/hub"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/processor"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/internal/store"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/boxscore-validator/pkg/models"
)

const maxBodyBytes = 16 << 20

// GameProcessor runs games through the pipeline
type GameProcessor interface {
	Process(ctx context.Context, input models.GameInput) (models.GameResult, error)
	ProcessRequest(ctx context.Context, req models.GameRequest) (models.GameResult, error)
	GetMetrics() processor.Metrics
}

// Handler contains dependencies for HTTP handlers. store, cache and hub may be nil.
type Handler struct {
	processor GameProcessor
	store     contracts.GameStore
	cache     contracts.ReportCache
	hub       *hub.Hub
	ctx       context.Context
	logger    *log.Logger
}

// NewHandler creates a new handler. ctx bounds the lifetime of websocket clients.
func NewHandler(ctx context.Context, p GameProcessor, s contracts.GameStore, c contracts.ReportCache, h *hub.Hub, logger *log.Logger) *Handler {
	return &Handler{
		processor: p,
		store:     s,
		cache:     c,
		hub:       h,
		ctx:       ctx,
		logger:    logger,
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// processBody accepts either extracted tables or a page URL to fetch
type processBody struct {
	models.GameInput
	URL string `json:"url"`
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "boxscore-validator",
	}
	if h.hub != nil {
		health["active_clients"] = h.hub.GetClientCount()
	}

	respondJSON(w, http.StatusOK, health)
}

// Metrics returns processing and hub metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"processor": h.processor.GetMetrics(),
	}
	if h.hub != nil {
		metrics["hub"] = h.hub.GetMetrics()
	}

	respondJSON(w, http.StatusOK, metrics)
}

// ProcessGame validates a game posted as tables, or fetched from "url"
func (h *Handler) ProcessGame(w http.ResponseWriter, r *http.Request) {
	var body processBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var (
		result models.GameResult
		err    error
	)
	if body.URL != "" && !hasTables(body.GameInput) {
		result, err = h.processor.ProcessRequest(r.Context(), models.GameRequest{GameID: body.GameID, URL: body.URL})
	} else {
		if body.GameID == "" {
			h.respondError(w, http.StatusBadRequest, "game_id is required", nil)
			return
		}
		result, err = h.processor.Process(r.Context(), body.GameInput)
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to process game", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetEvents returns the stored events of a game
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusServiceUnavailable, "persistence is disabled", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gameID := chi.URLParam(r, "gameID")
	events, err := h.store.GetEvents(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "game not found", nil)
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve events", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game_id": gameID,
		"events":  events,
		"count":   len(events),
	})
}

// GetReport returns a game's batting or pitching report, from cache when possible
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := models.ParseStatKind(chi.URLParam(r, "kind"))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "kind must be batting or pitching", nil)
		return
	}
	if h.store == nil && h.cache == nil {
		h.respondError(w, http.StatusServiceUnavailable, "persistence is disabled", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gameID := chi.URLParam(r, "gameID")

	if h.cache != nil {
		report, err := h.cache.GetReport(ctx, gameID, kind)
		if err == nil {
			respondJSON(w, http.StatusOK, report)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("report cache read failed", "game_id", gameID, "err", err)
		}
	}

	if h.store == nil {
		h.respondError(w, http.StatusNotFound, "report not found", nil)
		return
	}

	report, err := h.store.GetReport(ctx, gameID, kind)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "report not found", nil)
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to retrieve report", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// HandleWebSocket upgrades the connection and subscribes it to validation summaries
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		h.respondError(w, http.StatusServiceUnavailable, "live feed is disabled", nil)
		return
	}
	h.hub.ServeWS(h.ctx, w, r)
}

func hasTables(input models.GameInput) bool {
	return len(input.PlayByPlay) > 0 || len(input.Batting) > 0 || len(input.Pitching) > 0
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Error(message, "status", status, "err", err)
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
