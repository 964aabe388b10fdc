package zillowfetcher

import (
	"encoding/json"
	"testing"
	"zillow-search-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractListingPayloadReturnsSearchResultsUnchanged(t *testing.T) {
	body := `{"cat1":{"searchResults":{"mapResults":[{"id":1,"price":"$1,200,000","zpid":20533915031}],"listResults":[]}},"cat2":{"totalResultCount":1}}`

	payload, err := ExtractListingPayload([]byte(body))
	require.NoError(t, err)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mapResults":[{"id":1,"price":"$1,200,000","zpid":20533915031}],"listResults":[]}`, string(raw))
	// Большие идентификаторы не теряют точность
	assert.Contains(t, string(raw), "20533915031")
	assert.Len(t, payload.MapResults(), 1)
}

func TestExtractListingPayloadMissingLevelsAreEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"no cat1":                 `{"cat2":{"searchResults":{"mapResults":[]}}}`,
		"no searchResults":        `{"cat1":{"other":{}}}`,
		"cat1 is null":            `{"cat1":null}`,
		"searchResults not a map": `{"cat1":{"searchResults":[1,2,3]}}`,
		"empty object":            `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			payload, err := ExtractListingPayload([]byte(body))
			require.NoError(t, err)
			assert.NotNil(t, payload)
			assert.True(t, payload.IsEmpty())
		})
	}
}

func TestExtractListingPayloadMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"html":           `<html>captcha</html>`,
		"empty":          ``,
		"array":          `[{"cat1":{}}]`,
		"trailing bytes": `{"cat1":{}} garbage`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractListingPayload([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}
