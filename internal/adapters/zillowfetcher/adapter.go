package zillowfetcher

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gocolly/colly/v2"
)

const (
	// DefaultSearchURL - эндпоинт, который строит состояние страницы поиска
	DefaultSearchURL = "https://www.zillow.com/async-create-search-page-state"
	// UserAgent - сервис не требует авторизации, достаточно браузерного User-Agent
	UserAgent = "Mozilla/5.0"
)

// ZillowFetcherAdapter отвечает за обращение к сервису поиска Zillow
type ZillowFetcherAdapter struct {
	searchURL string
}

// NewZillowFetcherAdapter - конструктор
func NewZillowFetcherAdapter(searchURL string) (*ZillowFetcherAdapter, error) {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}

	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("ZillowFetcherAdapter: invalid search URL %q: %w", searchURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ZillowFetcherAdapter: search URL %q must be absolute", searchURL)
	}

	return &ZillowFetcherAdapter{searchURL: searchURL}, nil
}

// SearchURL возвращает адрес, на который уходят запросы
func (a *ZillowFetcherAdapter) SearchURL() string {
	return a.searchURL
}

// newCollector создает коллектор на один вызов.
// Общего коллектора нет: прокси задается на транспорте, и у параллельных вызовов
// с разными прокси не должно быть общего состояния.
func (a *ZillowFetcherAdapter) newCollector(ctx context.Context, proxyURL string) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.UserAgent(UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0), // mapResults до 500 объектов, ответ бывает больше лимита по умолчанию
		colly.StdlibContext(ctx),
		// Коды ответа проверяем сами: colly считает ошибкой все начиная с 203
		colly.ParseHTTPErrorResponse(),
	)

	// Таймаут задает вызывающий через ctx, у клиента его нет
	c.SetRequestTimeout(0)

	// Один прокси для http и https
	if proxyURL != "" {
		if err := c.SetProxy(proxyURL); err != nil {
			return nil, fmt.Errorf("ZillowFetcherAdapter: failed to set proxy: %w", err)
		}
	}

	return c, nil
}
