package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"
	"zillow-search-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

// maxRequestBody - ограничение на тело запроса поиска (полигон может быть большим)
const maxRequestBody = 1 << 20

// SearchHandlers - HTTP-обработчики поиска
type SearchHandlers struct {
	searchUC usecases_port.SearchListingsPort
	proxyURL string
}

// NewSearchHandlers - прокси задается конфигурацией сервиса, клиент его не передает
func NewSearchHandlers(searchUC usecases_port.SearchListingsPort, proxyURL string) *SearchHandlers {
	return &SearchHandlers{searchUC: searchUC, proxyURL: proxyURL}
}

// HandleSearch - POST /api/v1/search/{intent}, intent: for-sale | for-rent | sold | custom
func (h *SearchHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleSearch"})

	intent, err := domain.ParseSearchIntent(chi.URLParam(r, "intent"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reqDTO SearchRequestDTO
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&reqDTO); err != nil {
		if errors.Is(err, io.EOF) {
			WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
			return
		}
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	query, msg := h.toSearchQuery(intent, reqDTO)
	if msg != "" {
		WriteJSONError(w, http.StatusBadRequest, msg)
		return
	}

	logger.Info("Received search request", port.Fields{"intent": intent.String(), "page": query.Page, "zoom": query.Zoom})

	payload, err := h.searchUC.Execute(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransportFailure):
			WriteJSONError(w, http.StatusBadGateway, "Search service is unavailable")
		case errors.Is(err, domain.ErrMalformedResponse):
			WriteJSONError(w, http.StatusBadGateway, "Search service returned an unreadable response")
		default:
			logger.Error("Search use case failed", err, nil)
			WriteJSONError(w, http.StatusInternalServerError, "Failed to run search")
		}
		return
	}

	if payload == nil {
		payload = domain.EmptyListingPayload()
	}
	RespondWithJSON(w, http.StatusOK, payload)
}

// toSearchQuery возвращает текст ошибки для клиента, если запрос некорректен
func (h *SearchHandlers) toSearchQuery(intent domain.SearchIntent, dto SearchRequestDTO) (domain.SearchQuery, string) {
	page := 1
	if dto.Page != nil {
		page = *dto.Page
	}
	if page < 1 {
		return domain.SearchQuery{}, "Field 'page' must be a positive number"
	}
	if dto.Zoom == nil {
		return domain.SearchQuery{}, "Field 'zoom' is required"
	}
	if intent == domain.IntentCustom && len(dto.FilterState) == 0 {
		return domain.SearchQuery{}, "Field 'filter_state' is required for custom search"
	}

	return domain.SearchQuery{
		Intent:         intent,
		Page:           page,
		Zoom:           *dto.Zoom,
		Bounds:         dto.bounds(),
		Polygon:        dto.Polygon,
		FilterState:    dto.FilterState,
		CustomRegionID: dto.CustomRegionID,
		ProxyURL:       h.proxyURL,
	}, ""
}

// HandleHealth - GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
