package usecase

import (
	"context"
	"fmt"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/pkg/util"
)

// HistoryUseCase exposes the series the indicator engine would see.
type HistoryUseCase struct {
	data *MarketData
}

func NewHistoryUseCase(data *MarketData) *HistoryUseCase {
	return &HistoryUseCase{data: data}
}

// HistoryResult is the /api/history payload.
type HistoryResult struct {
	Symbol string                  `json:"symbol"`
	Source models.HistorySource    `json:"source"`
	Count  int                     `json:"count"`
	Bars   models.HistoricalSeries `json:"bars"`
}

// Get returns up to limit bars, most-recent-first.
func (uc *HistoryUseCase) Get(ctx context.Context, ticker string, limit int) (*HistoryResult, error) {
	symbol := util.NormalizeTicker(ticker)
	if symbol == "" {
		return nil, models.ErrInvalidTicker
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	series, source := uc.data.History(ctx, symbol)
	series = series.Latest(limit)
	return &HistoryResult{
		Symbol: symbol,
		Source: source,
		Count:  len(series),
		Bars:   series,
	}, nil
}

// RecentAnalysesUseCase reads persisted analyses back.
type RecentAnalysesUseCase struct {
	store domrepo.AnalysisStore
}

func NewRecentAnalysesUseCase(store domrepo.AnalysisStore) *RecentAnalysesUseCase {
	return &RecentAnalysesUseCase{store: store}
}

func (uc *RecentAnalysesUseCase) Get(ctx context.Context, ticker string, limit int) ([]models.AnalysisResult, error) {
	symbol := util.NormalizeTicker(ticker)
	if symbol == "" {
		return nil, models.ErrInvalidTicker
	}
	if uc.store == nil {
		return nil, models.ErrNotConfigured
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	out, err := uc.store.Recent(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	return out, nil
}
