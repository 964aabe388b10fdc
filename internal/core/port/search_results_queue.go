package port

import (
	"context"
	"zillow-search-service/internal/core/domain"

	"github.com/google/uuid"
)

type SearchResultsQueuePort interface {
	Enqueue(ctx context.Context, result domain.SearchResult, taskID uuid.UUID) error
}
