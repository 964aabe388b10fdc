package domain

import (
	"fmt"
	"strings"
)

// Значения сортировки, которые понимает сервис
const (
	SortGlobalRelevance = "globalrelevanceex"
	SortPriorityScore   = "priorityscore"
)

// Имена фильтров в filterState
const (
	FilterSortSelection        = "sortSelection"
	FilterIsNewConstruction    = "isNewConstruction"
	FilterIsForSaleForeclosure = "isForSaleForeclosure"
	FilterIsForSaleByOwner     = "isForSaleByOwner"
	FilterIsForSaleByAgent     = "isForSaleByAgent"
	FilterIsForRent            = "isForRent"
	FilterIsComingSoon         = "isComingSoon"
	FilterIsAuction            = "isAuction"
	FilterIsAllHomes           = "isAllHomes"
	FilterIsRecentlySold       = "isRecentlySold"
)

// FilterValue - значение одного фильтра, на проводе {"value": ...}
type FilterValue struct {
	Value interface{} `json:"value"`
}

// FilterState - набор фильтров поиска: имя фильтра -> значение
type FilterState map[string]FilterValue

// Copy возвращает независимую копию набора фильтров
func (f FilterState) Copy() FilterState {
	if f == nil {
		return nil
	}
	cp := make(FilterState, len(f))
	for k, v := range f {
		cp[k] = v
	}
	return cp
}

// ForSaleFilterState - объявления о продаже.
// Остальные флаги статуса не передаются, сервис подставляет свои значения по умолчанию.
func ForSaleFilterState() FilterState {
	return FilterState{
		FilterSortSelection: {Value: SortGlobalRelevance},
		FilterIsAllHomes:    {Value: true},
	}
}

// ForRentFilterState - объявления об аренде
func ForRentFilterState() FilterState {
	return FilterState{
		FilterSortSelection:        {Value: SortPriorityScore},
		FilterIsNewConstruction:    {Value: false},
		FilterIsForSaleForeclosure: {Value: false},
		FilterIsForSaleByOwner:     {Value: false},
		FilterIsForSaleByAgent:     {Value: false},
		FilterIsForRent:            {Value: true},
		FilterIsComingSoon:         {Value: false},
		FilterIsAuction:            {Value: false},
		FilterIsAllHomes:           {Value: true},
	}
}

// SoldFilterState - недавно проданные объекты
func SoldFilterState() FilterState {
	return FilterState{
		FilterSortSelection:        {Value: SortGlobalRelevance},
		FilterIsNewConstruction:    {Value: false},
		FilterIsForSaleForeclosure: {Value: false},
		FilterIsForSaleByOwner:     {Value: false},
		FilterIsForSaleByAgent:     {Value: false},
		FilterIsForRent:            {Value: false},
		FilterIsComingSoon:         {Value: false},
		FilterIsAuction:            {Value: false},
		FilterIsAllHomes:           {Value: true},
		FilterIsRecentlySold:       {Value: true},
	}
}

// SearchIntent - наш внутренний "enum" для типа поиска
type SearchIntent int

const (
	// IntentCustom - общий путь: фильтры передает вызывающий код
	IntentCustom SearchIntent = iota
	IntentForSale
	IntentForRent
	IntentSold
)

func (i SearchIntent) String() string {
	switch i {
	case IntentForSale:
		return "for_sale"
	case IntentForRent:
		return "for_rent"
	case IntentSold:
		return "sold"
	case IntentCustom:
		return "custom"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// FilterState возвращает новый экземпляр пресета.
// Для IntentCustom пресета нет, возвращается nil.
func (i SearchIntent) FilterState() FilterState {
	switch i {
	case IntentForSale:
		return ForSaleFilterState()
	case IntentForRent:
		return ForRentFilterState()
	case IntentSold:
		return SoldFilterState()
	default:
		return nil
	}
}

// ParseSearchIntent переводит внешнее имя ("for-sale", "for_sale", "sold", ...) в SearchIntent
func ParseSearchIntent(raw string) (SearchIntent, error) {
	normalized := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case "forsale":
		return IntentForSale, nil
	case "forrent":
		return IntentForRent, nil
	case "sold":
		return IntentSold, nil
	case "custom":
		return IntentCustom, nil
	default:
		return IntentCustom, fmt.Errorf("unknown search intent: %q", raw)
	}
}
