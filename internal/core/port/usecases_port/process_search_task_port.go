package usecases_port

import (
	"context"
	"zillow-search-service/internal/core/domain"

	"github.com/google/uuid"
)

type ProcessSearchTaskPort interface {
	Execute(ctx context.Context, query domain.SearchQuery, taskID uuid.UUID) error
}
