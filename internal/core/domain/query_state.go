package domain

// Константы запроса к async-create-search-page-state
const (
	SearchCategory   = "cat1"
	CountCategory    = "cat2"
	SearchRequestID  = 10
	ListResultsKey   = "listResults"
	MapResultsKey    = "mapResults"
	TotalResultsKey  = "total"
	SearchResultsKey = "searchResults"
)

// Pagination - номер страницы, нумерация с 1
type Pagination struct {
	CurrentPage int `json:"currentPage"`
}

// QueryState - тело searchQueryState
type QueryState struct {
	IsMapVisible  bool        `json:"isMapVisible"`
	IsListVisible bool        `json:"isListVisible"`
	MapZoom       int         `json:"mapZoom"`
	FilterState   FilterState `json:"filterState"`
	Pagination    Pagination  `json:"pagination"`
	Category      string      `json:"category"`
	MapBounds     *MapBounds  `json:"mapBounds,omitempty"`
}

// SearchRequest - полный документ, который уходит на сервис
type SearchRequest struct {
	SearchQueryState QueryState          `json:"searchQueryState"`
	Wants            map[string][]string `json:"wants"`
	RequestID        int                 `json:"requestId"`
	IsDebugRequest   bool                `json:"isDebugRequest"`
}

// Compose собирает searchQueryState.
// Координаты и полигон не валидируются: некорректная геометрия уходит как есть.
// Если region == nil, mapBounds не передается.
func Compose(page int, region Region, zoom int, filter FilterState) QueryState {
	qs := QueryState{
		IsMapVisible:  true,
		IsListVisible: true,
		MapZoom:       zoom,
		FilterState:   filter.Copy(),
		Pagination:    Pagination{CurrentPage: page},
		Category:      SearchCategory,
	}

	if region != nil {
		bounds := region.mapBounds()
		qs.MapBounds = &bounds
	}

	return qs
}

// NewSearchRequest оборачивает QueryState фиксированными полями запроса
func NewSearchRequest(qs QueryState) SearchRequest {
	return SearchRequest{
		SearchQueryState: qs,
		Wants: map[string][]string{
			SearchCategory: {ListResultsKey, MapResultsKey},
			CountCategory:  {TotalResultsKey},
		},
		RequestID:      SearchRequestID,
		IsDebugRequest: false,
	}
}
