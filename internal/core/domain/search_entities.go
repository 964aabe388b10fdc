package domain

// SearchQuery - один поиск: тип, область и параметры страницы.
// FilterState используется только для IntentCustom.
type SearchQuery struct {
	Intent         SearchIntent
	Page           int
	Zoom           int
	Bounds         BoundingBox
	Polygon        Polygon
	FilterState    FilterState
	CustomRegionID string
	ProxyURL       string
}

// SearchResult - результат поиска для публикации в очередь
type SearchResult struct {
	Query   SearchQuery
	Payload ListingPayload
}
