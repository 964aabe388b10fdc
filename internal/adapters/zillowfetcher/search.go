package zillowfetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// Search отправляет один PUT на searchURL и возвращает cat1.searchResults.
// Повторов нет: любая ошибка транспорта сразу возвращается вызывающему.
func (a *ZillowFetcherAdapter) Search(ctx context.Context, req domain.SearchRequest, proxyURL string) (domain.ListingPayload, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	searchLogger := logger.WithFields(port.Fields{
		"component":  "ZillowFetcherAdapter(Search)",
		"page":       req.SearchQueryState.Pagination.CurrentPage,
		"zoom":       req.SearchQueryState.MapZoom,
		"with_proxy": proxyURL != "",
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("zillow adapter: failed to marshal search request: %w", err)
	}

	collector, err := a.newCollector(ctx, proxyURL)
	if err != nil {
		return nil, fmt.Errorf("zillow adapter: %w: %w", domain.ErrTransportFailure, err)
	}

	var payload domain.ListingPayload
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		searchLogger.Debug("Making search request", port.Fields{
			"url":    r.URL.String(),
			"method": r.Method,
		})
	})

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			searchLogger.Error("Search request returned non-success status", nil, port.Fields{
				"url":    a.searchURL,
				"status": r.StatusCode,
			})
			responseErr = fmt.Errorf("zillow adapter: %w: request to %s failed with status %d: %s",
				domain.ErrTransportFailure, a.searchURL, r.StatusCode, http.StatusText(r.StatusCode))
			return
		}

		extracted, err := ExtractListingPayload(r.Body)
		if err != nil {
			searchLogger.Error("Failed to parse search response", err, port.Fields{
				"status":     r.StatusCode,
				"body_bytes": len(r.Body),
			})
			responseErr = fmt.Errorf("zillow adapter: %w", err)
			return
		}
		payload = extracted
	})

	collector.OnError(func(r *colly.Response, err error) {
		searchLogger.Error("Search request failed", err, port.Fields{
			"url":    a.searchURL,
			"status": r.StatusCode,
		})
		responseErr = fmt.Errorf("zillow adapter: %w: request to %s failed with status %d: %w",
			domain.ErrTransportFailure, a.searchURL, r.StatusCode, err)
	})

	headers := http.Header{}
	headers.Set("User-Agent", UserAgent)
	headers.Set("Content-Type", "application/json")

	requestErr := collector.Request(http.MethodPut, a.searchURL, bytes.NewReader(body), nil, headers)
	collector.Wait()

	// OnResponse или OnError уже сформировали ошибку с кодом ответа
	if responseErr != nil {
		return nil, responseErr
	}
	if requestErr != nil {
		searchLogger.Error("Failed to send search request", requestErr, port.Fields{"url": a.searchURL})
		return nil, fmt.Errorf("zillow adapter: %w: %w", domain.ErrTransportFailure, requestErr)
	}
	if payload == nil {
		payload = domain.EmptyListingPayload()
	}

	searchLogger.Info("Finished search request", port.Fields{
		"map_results":  len(payload.MapResults()),
		"list_results": len(payload.ListResults()),
	})

	return payload, nil
}
