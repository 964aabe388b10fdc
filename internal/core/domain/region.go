package domain

import "encoding/json"

// BoundingBox - прямоугольная область поиска.
// North/East - координаты северо-восточного угла, South/West - юго-западного.
type BoundingBox struct {
	North float64 `json:"north"`
	East  float64 `json:"east"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
}

// LatLong - вершина полигона
type LatLong struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Polygon - произвольная область поиска, вершины в порядке обхода.
// Количество вершин и их корректность не проверяются: это решает удаленный сервис.
type Polygon []LatLong

// Region - область поиска: либо BoundingBox, либо Polygon.
// Интерфейс закрыт, других реализаций нет.
type Region interface {
	mapBounds() MapBounds
	Kind() string
}

func (b BoundingBox) mapBounds() MapBounds {
	box := b
	return MapBounds{Box: &box}
}

// Kind возвращает тип области для логов
func (b BoundingBox) Kind() string { return "bounding_box" }

func (p Polygon) mapBounds() MapBounds {
	// Копируем вершины, чтобы запрос не зависел от среза вызывающего кода.
	// Пустой, но не nil срез нужен, чтобы в JSON ушел именно "polygon".
	vertices := make(Polygon, len(p))
	copy(vertices, p)
	return MapBounds{Polygon: vertices}
}

func (p Polygon) Kind() string { return "polygon" }

// ResolveRegion выбирает активное представление области.
// Непустой полигон имеет приоритет над прямоугольником.
func ResolveRegion(box BoundingBox, polygon Polygon) Region {
	if len(polygon) > 0 {
		return polygon
	}
	return box
}

// MapBounds - представление области в запросе.
// В JSON всегда попадает ровно одна форма: {"polygon": [...]} или {"north", "east", "south", "west"}.
type MapBounds struct {
	Box     *BoundingBox
	Polygon Polygon
}

// HasPolygon сообщает, задана ли область полигоном
func (m MapBounds) HasPolygon() bool {
	return m.Polygon != nil
}

func (m MapBounds) MarshalJSON() ([]byte, error) {
	if m.Polygon != nil {
		return json.Marshal(struct {
			Polygon Polygon `json:"polygon"`
		}{Polygon: m.Polygon})
	}
	if m.Box != nil {
		return json.Marshal(*m.Box)
	}
	return []byte("{}"), nil
}
