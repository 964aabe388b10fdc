package zillowfetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"zillow-search-service/internal/core/domain"
)

// ExtractListingPayload разбирает ответ и спускается в cat1.searchResults.
// Отсутствующий (или не объектный) уровень дает пустой результат, а не ошибку.
// Ошибка возвращается только если тело не JSON-объект.
func ExtractListingPayload(body []byte) (domain.ListingPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	// Числа остаются json.Number, чтобы результат сериализовался обратно без изменений
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal json: %w", domain.ErrMalformedResponse, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after json document", domain.ErrMalformedResponse)
	}

	envelope, ok := root.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected json object, got %T", domain.ErrMalformedResponse, root)
	}

	category := objectAt(envelope, domain.SearchCategory)
	results := objectAt(category, domain.SearchResultsKey)

	return domain.ListingPayload(results), nil
}

func objectAt(parent map[string]interface{}, key string) map[string]interface{} {
	if child, ok := parent[key].(map[string]interface{}); ok {
		return child
	}
	return map[string]interface{}{}
}
