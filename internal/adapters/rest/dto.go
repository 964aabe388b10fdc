package rest

import "zillow-search-service/internal/core/domain"

// SearchRequestDTO - тело POST /api/v1/search/{intent}
type SearchRequestDTO struct {
	Page           *int               `json:"page"`
	NorthLat       float64            `json:"ne_lat"`
	EastLong       float64            `json:"ne_long"`
	SouthLat       float64            `json:"sw_lat"`
	WestLong       float64            `json:"sw_long"`
	Zoom           *int               `json:"zoom"`
	Polygon        domain.Polygon     `json:"polygon"`
	CustomRegionID string             `json:"custom_region_id"`
	FilterState    domain.FilterState `json:"filter_state"`
}

func (dto SearchRequestDTO) bounds() domain.BoundingBox {
	return domain.BoundingBox{
		North: dto.NorthLat,
		East:  dto.EastLong,
		South: dto.SouthLat,
		West:  dto.WestLong,
	}
}
