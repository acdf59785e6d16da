package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/services/tradingdays"
	"FinScope/pkg/util"
)

// DailyRand returns a generator stable for one symbol over one UTC day.
func DailyRand(symbol string, now time.Time) *rand.Rand {
	day := uint64(now.UTC().Unix() / 86400)
	s := Seed(symbol)
	return rand.New(rand.NewPCG(s, s^day))
}

// EstimateOptions: put/call ratio in [0.7,1.3], implied volatility in [25,45)%.
func EstimateOptions(symbol string, now time.Time, rng *rand.Rand) *models.OptionsFlow {
	pcr := round2(0.7 + rng.Float64()*0.6)
	callVol := int64(5000 + rng.IntN(45000))
	return &models.OptionsFlow{
		Symbol:       symbol,
		PutCallRatio: pcr,
		CallVolume:   callVol,
		PutVolume:    int64(math.Round(float64(callVol) * pcr)),
		ImpliedVol:   round2(25 + rng.Float64()*20),
		Estimated:    true,
		AcquiredAt:   now.UTC(),
	}
}

// EstimateCalendar places the next report 20 to 80 trading days out.
func EstimateCalendar(symbol string, now time.Time, rng *rand.Rand) *models.EventsCalendar {
	days := 20 + rng.IntN(61)
	next := tradingdays.ForSymbol(symbol).Forward(now, days)
	return &models.EventsCalendar{
		Symbol:         symbol,
		NextEarnings:   util.FormatDate(next),
		DaysToEarnings: days,
		Estimated:      true,
		AcquiredAt:     now.UTC(),
	}
}

// EstimateSocial: score in [-0.3,0.3].
func EstimateSocial(symbol string, now time.Time, rng *rand.Rand) *models.SocialSentiment {
	score := round2(-0.3 + rng.Float64()*0.6)
	msgs := 20 + rng.IntN(30)
	bull := int(math.Round(float64(msgs) * (0.5 + score/2)))
	return &models.SocialSentiment{
		Symbol:     symbol,
		Score:      score,
		Bullish:    bull,
		Bearish:    msgs - bull,
		Messages:   msgs,
		Estimated:  true,
		AcquiredAt: now.UTC(),
	}
}
