package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"market-pulse/config"
	"market-pulse/models"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	app *App
	cfg *config.Config
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(app *App, cfg *config.Config) *APIHandler {
	return &APIHandler{app: app, cfg: cfg}
}

// handleHealth returns the health status of the application. Unlike the data
// endpoints this emits the status object directly, not the response envelope.
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"message": "market-pulse api",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if err := h.app.Health(r.Context()); err == nil {
		status["services"].(map[string]string)["database"] = "connected"
	} else {
		status["services"].(map[string]string)["database"] = "disconnected"
		status["status"] = "degraded"
	}

	if breakers := h.app.Breakers(); breakers != nil {
		status["providers"] = breakers.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleGetCurrencyRates returns today's tracked exchange rates
func (h *APIHandler) handleGetCurrencyRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.app.GetCurrencyRates(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, rates)
}

// handleGetCommodityPrices returns today's tracked commodity prices
func (h *APIHandler) handleGetCommodityPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.app.GetCommodityPrices(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, prices)
}

// handleGetNews returns today's news. With headlines=true only the marked
// headline articles come back and every other parameter is ignored. When
// page or limit is present the response carries pagination metadata.
func (h *APIHandler) handleGetNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if parseLenientBool(query.Get("headlines")) {
		articles, err := h.app.GetHeadlines(r.Context())
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonResponse(w, articles)
		return
	}

	filter := h.parseNewsFilter(r)

	if query.Has("page") || query.Has("limit") {
		page := parseLenientInt(query.Get("page"), 1)
		limit := parseLenientInt(query.Get("limit"), models.DefaultNewsLimit)

		result, err := h.app.GetNewsPage(r.Context(), filter, page, limit)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		totalPages := 0
		if result.Limit > 0 {
			totalPages = (result.Total + result.Limit - 1) / result.Limit
		}

		h.jsonPageResponse(w, result.Articles, map[string]interface{}{
			"total":      result.Total,
			"page":       result.Page,
			"limit":      result.Limit,
			"totalPages": totalPages,
		})
		return
	}

	articles, err := h.app.GetNews(r.Context(), filter)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, articles)
}

// parseNewsFilter maps query parameters onto a NewsFilter. Parsing is
// lenient: a malformed value falls back to the default instead of
// failing the request.
func (h *APIHandler) parseNewsFilter(r *http.Request) models.NewsFilter {
	query := r.URL.Query()

	filter := models.NewsFilter{
		Symbols:     strings.TrimSpace(query.Get("symbols")),
		Language:    strings.TrimSpace(query.Get("language")),
		Countries:   strings.TrimSpace(query.Get("countries")),
		EntityTypes: strings.TrimSpace(query.Get("entity_types")),
		Industries:  strings.TrimSpace(query.Get("industries")),
		Limit:       parseLenientInt(query.Get("limit"), 0),
	}

	if query.Has("filter_entities") {
		filter.FilterEntities = parseLenientBool(query.Get("filter_entities"))
	}
	if query.Has("must_have_entities") {
		filter.MustHaveEntities = parseLenientBool(query.Get("must_have_entities"))
	}

	filter.SentimentGTE = parseLenientSentiment(query.Get("sentiment_gte"))
	filter.SentimentLTE = parseLenientSentiment(query.Get("sentiment_lte"))

	return filter
}

// parseLenientInt returns fallback on a missing or malformed value
func parseLenientInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseLenientBool treats anything strconv can't read as false
func parseLenientBool(raw string) bool {
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return b
}

// parseLenientSentiment drops malformed or out-of-range sentiment bounds
func parseLenientSentiment(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < -1 || f > 1 {
		return nil
	}
	return &f
}

func (h *APIHandler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func (h *APIHandler) jsonPageResponse(w http.ResponseWriter, data interface{}, meta map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

func (h *APIHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
