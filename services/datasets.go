package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"galaxy-sdk/models"
)

// DefaultPollInterval is the pause between two dataset state queries
const DefaultPollInterval = time.Second

type DatasetService struct {
	client ClientInterface
}

func NewDatasetService(client ClientInterface) *DatasetService {
	return &DatasetService{
		client: client,
	}
}

// WaitOptions configures WaitUntilReady
type WaitOptions struct {
	// Interval between queries, DefaultPollInterval when zero
	Interval time.Duration

	// OnPoll is called with every fetched snapshot, including the final one
	OnPoll func(attempt int, dataset *models.Dataset)
}

// Show fetches the current snapshot of a dataset within a history
func (s *DatasetService) Show(ctx context.Context, historyID, datasetID string) (*models.Dataset, error) {
	path := fmt.Sprintf("/api/histories/%s/contents/%s", url.PathEscape(historyID), url.PathEscape(datasetID))

	var dataset models.Dataset
	if err := getJSON(ctx, s.client, path, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// WaitUntilReady queries the dataset until its state is "ok" and returns
// that snapshot.
//
// There is no attempt limit and no failed-state check: a dataset that
// ends in "error" is polled until ctx is done. Callers that need a bound
// must put a deadline on ctx.
func (s *DatasetService) WaitUntilReady(ctx context.Context, historyID, datasetID string, opts *WaitOptions) (*models.Dataset, error) {
	interval := DefaultPollInterval
	var onPoll func(int, *models.Dataset)
	if opts != nil {
		if opts.Interval > 0 {
			interval = opts.Interval
		}
		onPoll = opts.OnPoll
	}

	for attempt := 1; ; attempt++ {
		dataset, err := s.Show(ctx, historyID, datasetID)
		if err != nil {
			return nil, err
		}

		if onPoll != nil {
			onPoll(attempt, dataset)
		}

		if dataset.State.Ready() {
			return dataset, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// DisplayURL returns the raw display URL of a dataset with the API key
// embedded as the key query parameter
func (s *DatasetService) DisplayURL(datasetID, ext string) string {
	return fmt.Sprintf("%s/api/datasets/%s/display?to_ext=%s&key=%s",
		s.client.GetBaseURL(),
		url.PathEscape(datasetID),
		url.QueryEscape(ext),
		url.QueryEscape(s.client.GetAPIKey()))
}

// Display downloads the rendered dataset with a plain GET on DisplayURL
// and copies it to w, returning the number of bytes written. The client
// timeout does not apply; cancel ctx to abort a slow transfer.
func (s *DatasetService) Display(ctx context.Context, datasetID, ext string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.DisplayURL(datasetID, ext), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Stream(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := s.client.CheckResponse(resp, http.StatusOK); err != nil {
		return 0, fmt.Errorf("download dataset %s: %w", datasetID, err)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read dataset body: %w", err)
	}
	return n, nil
}
