package rabbitmq

import (
	"fmt"
	"zillow-search-service/internal/core/domain"

	"github.com/google/uuid"
)

// SearchTaskDTO - задача поиска из очереди, контракт SearchTaskEvent/1.0.0
type SearchTaskDTO struct {
	TaskID         uuid.UUID          `json:"task_id"`
	Intent         string             `json:"intent"`
	Page           int                `json:"page,omitempty"`
	Zoom           int                `json:"zoom"`
	Bounds         domain.BoundingBox `json:"bounds"`
	Polygon        domain.Polygon     `json:"polygon,omitempty"`
	CustomRegionID string             `json:"custom_region_id,omitempty"`
	FilterState    domain.FilterState `json:"filter_state,omitempty"`
}

// SearchResultsEventDTO - результат поиска, контракт SearchResultsEvent/1.0.0
type SearchResultsEventDTO struct {
	TaskID           uuid.UUID             `json:"task_id"`
	Intent           string                `json:"intent"`
	Page             int                   `json:"page"`
	Zoom             int                   `json:"zoom"`
	MapResultsCount  int                   `json:"map_results_count"`
	ListResultsCount int                   `json:"list_results_count"`
	Capped           bool                  `json:"capped"`
	Results          domain.ListingPayload `json:"results"`
}

// toSearchQuery переводит DTO в запрос use case, прокси берется из конфига сервиса
func (dto SearchTaskDTO) toSearchQuery(proxyURL string) (domain.SearchQuery, error) {
	intent, err := domain.ParseSearchIntent(dto.Intent)
	if err != nil {
		return domain.SearchQuery{}, err
	}
	if intent == domain.IntentCustom && len(dto.FilterState) == 0 {
		return domain.SearchQuery{}, fmt.Errorf("custom search requires filter_state")
	}

	page := dto.Page
	if page == 0 {
		page = 1
	}

	return domain.SearchQuery{
		Intent:         intent,
		Page:           page,
		Zoom:           dto.Zoom,
		Bounds:         dto.Bounds,
		Polygon:        dto.Polygon,
		FilterState:    dto.FilterState,
		CustomRegionID: dto.CustomRegionID,
		ProxyURL:       proxyURL,
	}, nil
}

func newSearchResultsEvent(result domain.SearchResult, taskID uuid.UUID) SearchResultsEventDTO {
	payload := result.Payload
	if payload == nil {
		payload = domain.EmptyListingPayload()
	}

	return SearchResultsEventDTO{
		TaskID:           taskID,
		Intent:           result.Query.Intent.String(),
		Page:             result.Query.Page,
		Zoom:             result.Query.Zoom,
		MapResultsCount:  len(payload.MapResults()),
		ListResultsCount: len(payload.ListResults()),
		Capped:           payload.ReachedResultCap(),
		Results:          payload,
	}
}
