package port

import (
	"context"
	"zillow-search-service/internal/core/domain"
)

// ZillowFetcherPort - единственная операция с удаленным сервисом поиска
type ZillowFetcherPort interface {
	// Search отправляет запрос одним вызовом и возвращает содержимое cat1.searchResults.
	// proxyURL == "" означает работу без прокси.
	Search(ctx context.Context, req domain.SearchRequest, proxyURL string) (domain.ListingPayload, error)
}
