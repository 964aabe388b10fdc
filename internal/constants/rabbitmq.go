package constants

// Обменник и ключи маршрутизации
const (
	ExchangeParser = "parser_exchange"

	RoutingKeySearchTasks   = "zillow.search.tasks"
	RoutingKeySearchResults = "zillow.search.results"
)

// Очереди
const (
	QueueSearchTasks = "zillow_search_tasks"

	DeadLetterExchange = "parser_exchange.dlx"
	DeadLetterQueue    = "zillow_search_tasks.dlq"
)

// Типы событий и версии контрактов
const (
	EventSearchTask    = "SearchTaskEvent"
	EventSearchResults = "SearchResultsEvent"
	EventVersion       = "1.0.0"
)
