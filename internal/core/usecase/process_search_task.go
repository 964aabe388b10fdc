package usecase

import (
	"context"
	"fmt"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"
	"zillow-search-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// ProcessSearchTaskUseCase выполняет поиск из задачи и публикует результат
type ProcessSearchTaskUseCase struct {
	searchUC     usecases_port.SearchListingsPort
	resultsQueue port.SearchResultsQueuePort
}

func NewProcessSearchTaskUseCase(searchUC usecases_port.SearchListingsPort, resultsQueue port.SearchResultsQueuePort) *ProcessSearchTaskUseCase {
	return &ProcessSearchTaskUseCase{
		searchUC:     searchUC,
		resultsQueue: resultsQueue,
	}
}

func (uc *ProcessSearchTaskUseCase) Execute(ctx context.Context, query domain.SearchQuery, taskID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ProcessSearchTask",
		"task_id":  taskID.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	payload, err := uc.searchUC.Execute(ctx, query)
	if err != nil {
		return fmt.Errorf("process search task %s: %w", taskID, err)
	}

	result := domain.SearchResult{Query: query, Payload: payload}
	if err := uc.resultsQueue.Enqueue(ctx, result, taskID); err != nil {
		logger.Error("Failed to enqueue search results", err, nil)
		return fmt.Errorf("process search task %s: failed to enqueue results: %w", taskID, err)
	}

	logger.Info("Search task processed", port.Fields{"map_results": len(payload.MapResults())})
	return nil
}
