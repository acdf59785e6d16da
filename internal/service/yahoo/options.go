package yahoo

import (
	"context"
	"fmt"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
)

var _ repository.OptionsProvider = (*OptionsProvider)(nil)

type optionContract struct {
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"` // fraction
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string `json:"underlyingSymbol"`
			Options          []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []optionContract `json:"calls"`
				Puts           []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type OptionsProvider struct{ c *Client }

func (p *OptionsProvider) Name() string { return "yahoo-options" }

// FetchOptions summarizes the nearest expiry: put/call volume ratio, mean implied
// volatility in percent, and unusual activity when volume exceeds open interest.
func (p *OptionsProvider) FetchOptions(ctx context.Context, symbol string) (*models.OptionsFlow, error) {
	var resp optionsResponse
	if err := p.c.get(ctx, p.c.quoteURL, "/v7/finance/options/"+escape(symbol), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoData)
	}
	chain := resp.OptionChain.Result[0].Options[0]

	var callVol, putVol, oi int64
	var ivSum float64
	var ivN int
	tally := func(cs []optionContract, vol *int64) {
		for _, c := range cs {
			*vol += c.Volume
			oi += c.OpenInterest
			if c.ImpliedVolatility > 0 {
				ivSum += c.ImpliedVolatility
				ivN++
			}
		}
	}
	tally(chain.Calls, &callVol)
	tally(chain.Puts, &putVol)
	if callVol == 0 {
		return nil, fmt.Errorf("%s: no call volume: %w", symbol, models.ErrNoData)
	}

	flow := &models.OptionsFlow{
		Symbol:          symbol,
		PutCallRatio:    float64(putVol) / float64(callVol),
		CallVolume:      callVol,
		PutVolume:       putVol,
		UnusualActivity: oi > 0 && callVol+putVol > oi,
		AcquiredAt:      time.Now().UTC(),
	}
	if ivN > 0 {
		flow.ImpliedVol = ivSum / float64(ivN) * 100
	}
	return flow, nil
}
