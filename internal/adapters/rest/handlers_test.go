package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearchUC реализует SearchListingsPort, запоминает последний запрос
type fakeSearchUC struct {
	query   *domain.SearchQuery
	traceID string
	payload domain.ListingPayload
	err     error
}

func (f *fakeSearchUC) ForSale(ctx context.Context, page int, box domain.BoundingBox, zoom int, customRegionID string, proxyURL string) (domain.ListingPayload, error) {
	return f.Execute(ctx, domain.SearchQuery{Intent: domain.IntentForSale, Page: page, Bounds: box, Zoom: zoom, CustomRegionID: customRegionID, ProxyURL: proxyURL})
}

func (f *fakeSearchUC) ForRent(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error) {
	return f.Execute(ctx, domain.SearchQuery{Intent: domain.IntentForRent, Page: page, Bounds: box, Zoom: zoom, ProxyURL: proxyURL, Polygon: polygon})
}

func (f *fakeSearchUC) Sold(ctx context.Context, page int, box domain.BoundingBox, zoom int, proxyURL string) (domain.ListingPayload, error) {
	return f.Execute(ctx, domain.SearchQuery{Intent: domain.IntentSold, Page: page, Bounds: box, Zoom: zoom, ProxyURL: proxyURL})
}

func (f *fakeSearchUC) Search(ctx context.Context, page int, box domain.BoundingBox, zoom int, filter domain.FilterState, proxyURL string, polygon domain.Polygon) (domain.ListingPayload, error) {
	return f.Execute(ctx, domain.SearchQuery{Intent: domain.IntentCustom, Page: page, Bounds: box, Zoom: zoom, FilterState: filter, ProxyURL: proxyURL, Polygon: polygon})
}

func (f *fakeSearchUC) Execute(ctx context.Context, query domain.SearchQuery) (domain.ListingPayload, error) {
	f.query = &query
	f.traceID = contextkeys.TraceIDFromContext(ctx)
	return f.payload, f.err
}

type discardLogger struct{}

func (discardLogger) Info(msg string, fields port.Fields)             {}
func (discardLogger) Warn(msg string, fields port.Fields)             {}
func (discardLogger) Error(msg string, err error, fields port.Fields) {}
func (discardLogger) Debug(msg string, fields port.Fields)            {}
func (d discardLogger) WithFields(fields port.Fields) port.LoggerPort { return d }

func newTestRouter(uc *fakeSearchUC) http.Handler {
	return NewRouter(NewSearchHandlers(uc, "http://proxy.local:3128"), []string{"*"}, discardLogger{})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace-ID", "trace-rest")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleSearchForSale(t *testing.T) {
	uc := &fakeSearchUC{payload: domain.ListingPayload{"mapResults": []interface{}{map[string]interface{}{"zpid": "1"}}}}

	rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/api/v1/search/for-sale",
		`{"ne_lat":40.8,"ne_long":-73.9,"sw_lat":40.7,"sw_long":-74.0,"zoom":10,"custom_region_id":"r1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mapResults":[{"zpid":"1"}]}`, rec.Body.String())
	assert.Equal(t, "trace-rest", rec.Header().Get("X-Trace-ID"))

	require.NotNil(t, uc.query)
	assert.Equal(t, domain.IntentForSale, uc.query.Intent)
	assert.Equal(t, 1, uc.query.Page)
	assert.Equal(t, 10, uc.query.Zoom)
	assert.Equal(t, domain.BoundingBox{North: 40.8, East: -73.9, South: 40.7, West: -74.0}, uc.query.Bounds)
	assert.Equal(t, "r1", uc.query.CustomRegionID)
	assert.Equal(t, "http://proxy.local:3128", uc.query.ProxyURL)
	assert.Equal(t, "trace-rest", uc.traceID)
}

func TestHandleSearchForRentPolygon(t *testing.T) {
	uc := &fakeSearchUC{payload: domain.EmptyListingPayload()}

	rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/api/v1/search/for_rent",
		`{"page":2,"zoom":12,"polygon":[{"lat":1,"long":1},{"lat":2,"long":1},{"lat":2,"long":2}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Equal(t, domain.IntentForRent, uc.query.Intent)
	assert.Equal(t, 2, uc.query.Page)
	assert.Equal(t, domain.Polygon{{Lat: 1, Long: 1}, {Lat: 2, Long: 1}, {Lat: 2, Long: 2}}, uc.query.Polygon)
}

func TestHandleSearchBadRequests(t *testing.T) {
	cases := map[string]struct {
		path string
		body string
	}{
		"unknown intent":        {"/api/v1/search/auction", `{"zoom":10}`},
		"empty body":            {"/api/v1/search/sold", ``},
		"broken json":           {"/api/v1/search/sold", `{"zoom":`},
		"missing zoom":          {"/api/v1/search/sold", `{"ne_lat":1}`},
		"zero page":             {"/api/v1/search/sold", `{"zoom":10,"page":0}`},
		"custom without filter": {"/api/v1/search/custom", `{"zoom":10}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			uc := &fakeSearchUC{}
			rec := doRequest(t, newTestRouter(uc), http.MethodPost, tc.path, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.query)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleSearchCustom(t *testing.T) {
	uc := &fakeSearchUC{payload: domain.EmptyListingPayload()}

	rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/api/v1/search/custom",
		`{"zoom":10,"filter_state":{"isAuction":{"value":true}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.IntentCustom, uc.query.Intent)
	assert.Equal(t, domain.FilterState{"isAuction": {Value: true}}, uc.query.FilterState)
}

func TestHandleSearchErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: errors.Join(domain.ErrTransportFailure, errors.New("status 403")), status: http.StatusBadGateway},
		{err: domain.ErrMalformedResponse, status: http.StatusBadGateway},
		{err: errors.New("unexpected"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		uc := &fakeSearchUC{err: tc.err}
		rec := doRequest(t, newTestRouter(uc), http.MethodPost, "/api/v1/search/sold", `{"zoom":10}`)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(&fakeSearchUC{}), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoggerMiddlewareGeneratesTraceID(t *testing.T) {
	var seen string
	h := LoggerMiddleware(discardLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Trace-ID"))
}
