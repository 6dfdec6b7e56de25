package urls

import (
	"context"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/pkg/errors"
)

// Remote analysis endpoints, relative to the API base URL.
const (
	RouteAnalyze    = "/urls/analyze"
	RouteHistory    = "/urls/history"
	RouteHistoryAll = "/urls/history/all"
)

// Pagination defaults applied when a caller leaves page or size unset.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Service wraps the analysis endpoints. Failures from the client are returned
// unchanged.
type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[urls NewService] client is required")
	}
	return &Service{client: client}, nil
}

// Analyze asks the server to fetch and analyze url. The url is not validated
// here.
func (s *Service) Analyze(ctx context.Context, url string) (*AnalysisResult, error) {
	result, err := apiclient.Post[AnalysisResult](ctx, s.client, RouteAnalyze, analyzeRequest{URL: url}, &apiclient.RequestConfig{
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// History fetches one page of the current user's analyses. Values of page or
// size below 1 fall back to DefaultPage and DefaultPageSize.
func (s *Service) History(ctx context.Context, page, size int) (*HistoryPage, error) {
	return s.history(ctx, RouteHistory, page, size)
}

// AllHistory fetches one page of the analyses of every user.
func (s *Service) AllHistory(ctx context.Context, page, size int) (*HistoryPage, error) {
	return s.history(ctx, RouteHistoryAll, page, size)
}

func (s *Service) history(ctx context.Context, route string, page, size int) (*HistoryPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	result, err := apiclient.Get[HistoryPage](ctx, s.client, route, &apiclient.RequestConfig{
		Params: map[string]any{"page": page, "size": size},
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
