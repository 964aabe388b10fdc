package usecases_port

import (
	"context"
	"zillow-search-service/internal/core/domain"
)

// SearchListingsPort - входная точка поиска объявлений.
// Каждый метод выполняет ровно один запрос к сервису.
type SearchListingsPort interface {
	ForSale(ctx context.Context, page int, box domain.BoundingBox, zoom int, customRegionID string, proxyURL string) (domain.ListingPayload, error)
	ForRent(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error)
	Sold(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string) (domain.ListingPayload, error)
	Search(ctx context.Context, page int, box domain.BoundingBox, zoom int, filter domain.FilterState, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error)

	// Execute выбирает нужную операцию по query.Intent
	Execute(ctx context.Context, query domain.SearchQuery) (domain.ListingPayload, error)
}
