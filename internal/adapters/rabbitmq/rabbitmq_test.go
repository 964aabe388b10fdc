package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"zillow-search-service/internal/constants"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/contracts"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessUC struct {
	queries []domain.SearchQuery
	taskIDs []uuid.UUID
	traceID string
	err     error
}

func (f *fakeProcessUC) Execute(ctx context.Context, query domain.SearchQuery, taskID uuid.UUID) error {
	f.queries = append(f.queries, query)
	f.taskIDs = append(f.taskIDs, taskID)
	f.traceID = contextkeys.TraceIDFromContext(ctx)
	return f.err
}

type fakePublisher struct {
	routingKey string
	msgs       []amqp.Publishing
	err        error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.routingKey = routingKey
	p.msgs = append(p.msgs, msg)
	return nil
}

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Info(msg string, fields port.Fields)  {}
func (l *recordingLogger) Warn(msg string, fields port.Fields)  {}
func (l *recordingLogger) Debug(msg string, fields port.Fields) {}
func (l *recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.errors = append(l.errors, msg)
}
func (l *recordingLogger) WithFields(fields port.Fields) port.LoggerPort { return l }

const taskID = "6f1c1f0e-8a3c-4e55-9b8e-2f0c5d0f7a11"

func newHandler(uc *fakeProcessUC, logger port.LoggerPort) *searchTaskHandler {
	return &searchTaskHandler{processUC: uc, proxyURL: "http://proxy.local:3128", logger: logger}
}

func TestHandleValidTask(t *testing.T) {
	uc := &fakeProcessUC{}
	h := newHandler(uc, &recordingLogger{})

	err := h.Handle(context.Background(), amqp.Delivery{
		Headers: amqp.Table{"x-trace-id": "trace-1"},
		Body: []byte(`{"task_id":"` + taskID + `","intent":"for_rent","zoom":12,
			"bounds":{"north":40.8,"east":-73.9,"south":40.7,"west":-74.0},
			"polygon":[{"lat":1,"long":1},{"lat":2,"long":1},{"lat":2,"long":2}]}`),
	})
	require.NoError(t, err)

	require.Len(t, uc.queries, 1)
	q := uc.queries[0]
	assert.Equal(t, domain.IntentForRent, q.Intent)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.Zoom)
	assert.Equal(t, domain.BoundingBox{North: 40.8, East: -73.9, South: 40.7, West: -74.0}, q.Bounds)
	assert.Len(t, q.Polygon, 3)
	assert.Equal(t, "http://proxy.local:3128", q.ProxyURL)
	assert.Equal(t, uuid.MustParse(taskID), uc.taskIDs[0])
	assert.Equal(t, "trace-1", uc.traceID)
}

func TestHandleSchemaFailureIsDropped(t *testing.T) {
	uc := &fakeProcessUC{}
	logger := &recordingLogger{}

	err := newHandler(uc, logger).Handle(context.Background(), amqp.Delivery{
		Body: []byte(`{"task_id":"` + taskID + `","intent":"lease","zoom":10,"bounds":{"north":1,"east":1,"south":0,"west":0}}`),
	})
	require.NoError(t, err)
	assert.Empty(t, uc.queries)
	assert.Len(t, logger.errors, 1)
}

func TestHandleSearchFailureIsReturned(t *testing.T) {
	uc := &fakeProcessUC{err: domain.ErrTransportFailure}

	err := newHandler(uc, &recordingLogger{}).Handle(context.Background(), amqp.Delivery{
		Body: []byte(`{"task_id":"` + taskID + `","intent":"sold","page":2,"zoom":10,"bounds":{"north":1,"east":1,"south":0,"west":0}}`),
	})
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
	require.Len(t, uc.queries, 1)
	assert.Equal(t, 2, uc.queries[0].Page)
	assert.NotEmpty(t, uc.traceID)
}

func TestSearchTaskDTOToQuery(t *testing.T) {
	dto := SearchTaskDTO{
		TaskID:      uuid.New(),
		Intent:      "custom",
		Zoom:        10,
		FilterState: domain.FilterState{"isAuction": {Value: true}},
	}
	q, err := dto.toSearchQuery("")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentCustom, q.Intent)
	assert.Equal(t, dto.FilterState, q.FilterState)

	dto.FilterState = nil
	_, err = dto.toSearchQuery("")
	assert.Error(t, err)

	dto.Intent = "auction"
	_, err = dto.toSearchQuery("")
	assert.Error(t, err)
}

func TestEnqueuePublishesResultsEvent(t *testing.T) {
	pub := &fakePublisher{}
	adapter, err := NewSearchResultsQueueAdapter(pub, constants.RoutingKeySearchResults)
	require.NoError(t, err)

	mapResults := make([]interface{}, domain.MaxMapResults)
	for i := range mapResults {
		mapResults[i] = map[string]interface{}{"zpid": i}
	}
	result := domain.SearchResult{
		Query:   domain.SearchQuery{Intent: domain.IntentForSale, Page: 1, Zoom: 10},
		Payload: domain.ListingPayload{"mapResults": mapResults, "listResults": []interface{}{}},
	}

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-2")
	require.NoError(t, adapter.Enqueue(ctx, result, uuid.MustParse(taskID)))

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, constants.RoutingKeySearchResults, pub.routingKey)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, constants.EventSearchResults, msg.Headers["event-type"])
	assert.Equal(t, constants.EventVersion, msg.Headers["event-version"])
	assert.Equal(t, "trace-2", msg.Headers["x-trace-id"])

	require.NoError(t, contracts.ValidateEvent(constants.EventSearchResults, constants.EventVersion, msg.Body))
	assert.Contains(t, string(msg.Body), `"map_results_count":500`)
	assert.Contains(t, string(msg.Body), `"capped":true`)
	assert.Contains(t, string(msg.Body), `"intent":"for_sale"`)
}

func TestEnqueueEmptyPayload(t *testing.T) {
	pub := &fakePublisher{}
	adapter, err := NewSearchResultsQueueAdapter(pub, constants.RoutingKeySearchResults)
	require.NoError(t, err)

	require.NoError(t, adapter.Enqueue(context.Background(), domain.SearchResult{
		Query: domain.SearchQuery{Intent: domain.IntentSold, Page: 1, Zoom: 10},
	}, uuid.MustParse(taskID)))

	require.NoError(t, contracts.ValidateEvent(constants.EventSearchResults, constants.EventVersion, pub.msgs[0].Body))
	assert.Contains(t, string(pub.msgs[0].Body), `"results":{}`)
	assert.NotContains(t, pub.msgs[0].Headers, "x-trace-id")
}

func TestEnqueuePublishError(t *testing.T) {
	adapter, err := NewSearchResultsQueueAdapter(&fakePublisher{err: errors.New("channel closed")}, "k")
	require.NoError(t, err)

	err = adapter.Enqueue(context.Background(), domain.SearchResult{Payload: domain.EmptyListingPayload()}, uuid.New())
	assert.ErrorContains(t, err, "channel closed")

	_, err = NewSearchResultsQueueAdapter(nil, "k")
	assert.Error(t, err)
	_, err = NewSearchResultsQueueAdapter(&fakePublisher{}, "")
	assert.Error(t, err)
}

func TestPkgLoggerBridgeFields(t *testing.T) {
	assert.Nil(t, toFields(nil))
	assert.Equal(t, port.Fields{"queue": "q", "count": 3}, toFields([]interface{}{"queue", "q", "count", 3}))
	assert.Equal(t, port.Fields{"1": "x", "dangling": nil}, toFields([]interface{}{1, "x", "dangling"}))
}
