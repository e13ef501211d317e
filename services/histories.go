package services

import (
	"context"

	"galaxy-sdk/models"
)

type HistoryService struct {
	client ClientInterface
}

func NewHistoryService(client ClientInterface) *HistoryService {
	return &HistoryService{
		client: client,
	}
}

// List retrieves all histories visible to the API key
func (s *HistoryService) List(ctx context.Context) ([]*models.History, error) {
	var histories []*models.History
	if err := getJSON(ctx, s.client, "/api/histories", &histories); err != nil {
		return nil, err
	}
	return histories, nil
}
