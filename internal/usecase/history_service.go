package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// HistoryService lists the user's past predictions with their earned points.
type HistoryService struct {
	gateway LeagueGateway
	logger  *logging.Logger
}

func NewHistoryService(gateway LeagueGateway, logger *logging.Logger) (*HistoryService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("league gateway is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryService{gateway: gateway, logger: logger}, nil
}

// LoadHistory returns predictions newest first.
func (s *HistoryService) LoadHistory(ctx context.Context) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "history.load")
	defer span.End()

	items, err := s.gateway.FetchPredictions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prediction history: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

// TotalPoints sums the points across a history listing.
func TotalPoints(items []prediction.Prediction) int {
	total := 0
	for _, item := range items {
		total += item.Points
	}
	return total
}
