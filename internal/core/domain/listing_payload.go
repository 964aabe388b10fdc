package domain

// MaxMapResults - сервис отдает не больше 500 объектов в mapResults на один запрос.
// Если пришло ровно столько, часть объектов в области потеряна: нужно уменьшать
// область или менять zoom. Пагинация это не обходит.
const MaxMapResults = 500

// ListingPayload - содержимое cat1.searchResults.
// Ключи mapResults и listResults могут отсутствовать.
type ListingPayload map[string]interface{}

// EmptyListingPayload - пустой результат: "ничего не найдено" или "ответ другой формы", различить нельзя
func EmptyListingPayload() ListingPayload {
	return ListingPayload{}
}

// MapResults - все объекты области (до MaxMapResults)
func (p ListingPayload) MapResults() []interface{} {
	return p.results(MapResultsKey)
}

// ListResults - короткий список для боковой панели
func (p ListingPayload) ListResults() []interface{} {
	return p.results(ListResultsKey)
}

func (p ListingPayload) results(key string) []interface{} {
	items, ok := p[key].([]interface{})
	if !ok {
		return nil
	}
	return items
}

func (p ListingPayload) IsEmpty() bool {
	return len(p) == 0
}

// ReachedResultCap сообщает, упёрся ли ответ в лимит сервиса
func (p ListingPayload) ReachedResultCap() bool {
	return len(p.MapResults()) >= MaxMapResults
}
