package usecase

import (
	"context"
	"fmt"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"
)

// SearchListingsUseCase - точки входа for_sale / for_rent / sold и общий поиск
type SearchListingsUseCase struct {
	fetcher port.ZillowFetcherPort
}

func NewSearchListingsUseCase(fetcher port.ZillowFetcherPort) *SearchListingsUseCase {
	return &SearchListingsUseCase{fetcher: fetcher}
}

// ForSale ищет объявления о продаже.
// customRegionID принимается для совместимости и в запрос не попадает.
func (uc *SearchListingsUseCase) ForSale(ctx context.Context, page int, box domain.BoundingBox, zoom int, customRegionID string, proxyURL string) (domain.ListingPayload, error) {
	if customRegionID != "" {
		contextkeys.LoggerFromContext(ctx).Debug("custom_region_id is ignored by for_sale search", port.Fields{
			"custom_region_id": customRegionID,
		})
	}
	return uc.search(ctx, domain.IntentForSale, page, box, zoom, domain.ForSaleFilterState(), proxyURL, nil)
}

// ForRent ищет объявления об аренде, область можно задать полигоном
func (uc *SearchListingsUseCase) ForRent(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error) {
	return uc.search(ctx, domain.IntentForRent, page, box, zoom, domain.ForRentFilterState(), proxyURL, polygon)
}

// Sold ищет недавно проданные объекты
func (uc *SearchListingsUseCase) Sold(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string) (domain.ListingPayload, error) {
	return uc.search(ctx, domain.IntentSold, page, box, zoom, domain.SoldFilterState(), proxyURL, nil)
}

// Search - общий путь с произвольным набором фильтров
func (uc *SearchListingsUseCase) Search(ctx context.Context, page int, box domain.BoundingBox, zoom int, filter domain.FilterState, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error) {
	return uc.search(ctx, domain.IntentCustom, page, box, zoom, filter, proxyURL, polygon)
}

// Execute выбирает операцию по типу поиска
func (uc *SearchListingsUseCase) Execute(ctx context.Context, query domain.SearchQuery) (domain.ListingPayload, error) {
	switch query.Intent {
	case domain.IntentForSale:
		return uc.ForSale(ctx, query.Page, query.Bounds, query.Zoom, query.CustomRegionID, query.ProxyURL)
	case domain.IntentForRent:
		return uc.ForRent(ctx, query.Page, query.Bounds, query.Zoom, query.ProxyURL, query.Polygon)
	case domain.IntentSold:
		return uc.Sold(ctx, query.Page, query.Bounds, query.Zoom, query.ProxyURL)
	case domain.IntentCustom:
		return uc.Search(ctx, query.Page, query.Bounds, query.Zoom, query.FilterState, query.ProxyURL, query.Polygon)
	default:
		return nil, fmt.Errorf("search listings: unsupported intent %s", query.Intent)
	}
}

func (uc *SearchListingsUseCase) search(
	ctx context.Context,
	intent domain.SearchIntent,
	page int,
	box domain.BoundingBox,
	zoom int,
	filter domain.FilterState,
	proxyURL string,
	polygon domain.Polygon,
) (domain.ListingPayload, error) {
	region := domain.ResolveRegion(box, polygon)

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "SearchListings",
		"intent":      intent.String(),
		"page":        page,
		"zoom":        zoom,
		"region_kind": region.Kind(),
	})

	request := domain.NewSearchRequest(domain.Compose(page, region, zoom, filter))

	payload, err := uc.fetcher.Search(contextkeys.ContextWithLogger(ctx, logger), request, proxyURL)
	if err != nil {
		logger.Error("Search failed", err, nil)
		return nil, err
	}

	if payload.ReachedResultCap() {
		logger.Warn("Search hit the service result cap, listings in this region may be missing. Narrow the region or raise the zoom", port.Fields{
			"map_results": len(payload.MapResults()),
			"cap":         domain.MaxMapResults,
		})
	}

	logger.Info("Search completed", port.Fields{
		"map_results":  len(payload.MapResults()),
		"list_results": len(payload.ListResults()),
	})

	return payload, nil
}
