package usecase

import (
	"context"
	"sync"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/service/breaker"
	"FinScope/internal/services/fusion"
	"FinScope/internal/services/synthetic"
	"FinScope/pkg/logger"
	"FinScope/pkg/metrics"
	"FinScope/pkg/util"
)

// SecondarySignalsUseCase fans out to the options, calendar and social
// providers. Any signal that cannot be fetched is replaced by an estimate and
// the failure is listed in Errors.
type SecondarySignalsUseCase struct {
	options  domrepo.OptionsProvider
	calendar domrepo.CalendarProvider
	social   domrepo.SocialProvider

	breakers *breaker.Manager
	timeout  time.Duration
	now      func() time.Time
	log      *logger.Logger
	metrics  domrepo.Metrics
}

// SignalsOption configures SecondarySignalsUseCase.
type SignalsOption func(*SecondarySignalsUseCase)

// WithOptionsProvider sets the options flow provider.
func WithOptionsProvider(p domrepo.OptionsProvider) SignalsOption {
	return func(uc *SecondarySignalsUseCase) { uc.options = p }
}

// WithCalendarProvider sets the events calendar provider.
func WithCalendarProvider(p domrepo.CalendarProvider) SignalsOption {
	return func(uc *SecondarySignalsUseCase) { uc.calendar = p }
}

// WithSocialProvider sets the social sentiment provider.
func WithSocialProvider(p domrepo.SocialProvider) SignalsOption {
	return func(uc *SecondarySignalsUseCase) { uc.social = p }
}

// WithSignalsBreakers sets the per-provider circuit breakers.
func WithSignalsBreakers(b *breaker.Manager) SignalsOption {
	return func(uc *SecondarySignalsUseCase) { uc.breakers = b }
}

// WithSignalsTimeout sets the deadline for each signal fetch.
func WithSignalsTimeout(d time.Duration) SignalsOption {
	return func(uc *SecondarySignalsUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithSignalsMetrics sets the metrics recorder.
func WithSignalsMetrics(m domrepo.Metrics) SignalsOption {
	return func(uc *SecondarySignalsUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

func NewSecondarySignalsUseCase(log *logger.Logger, opts ...SignalsOption) *SecondarySignalsUseCase {
	if log == nil {
		log = logger.Nop()
	}
	uc := &SecondarySignalsUseCase{
		timeout: 10 * time.Second,
		now:     time.Now,
		log:     log,
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Get never fails for a non-empty symbol.
func (uc *SecondarySignalsUseCase) Get(ctx context.Context, symbol string) (*models.SecondarySignals, error) {
	symbol = util.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, models.ErrInvalidTicker
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.SecondarySignals{Symbol: symbol, Errors: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	run := func(name, provider string, fetch func(context.Context) (interface{}, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			v, err := breaker.Do(uc.breakers, provider, func() (interface{}, error) { return fetch(ctx) })
			uc.metrics.RecordProviderAttempt(name, provider, err == nil, time.Since(start).Seconds())
			ch <- item{name, v, err}
		}()
	}
	missing := func(name string, err error) { ch <- item{name: name, err: err} }

	switch {
	case uc.options == nil:
		missing("options", models.ErrNotConfigured)
	default:
		run("options", uc.options.Name(), func(ctx context.Context) (interface{}, error) { return uc.options.FetchOptions(ctx, symbol) })
	}
	switch {
	case uc.calendar == nil:
		missing("calendar", models.ErrNotConfigured)
	case skipped(uc.calendar):
		missing("calendar", models.ErrMissingCredentials)
	default:
		run("calendar", uc.calendar.Name(), func(ctx context.Context) (interface{}, error) { return uc.calendar.FetchCalendar(ctx, symbol) })
	}
	switch {
	case uc.social == nil:
		missing("social", models.ErrNotConfigured)
	default:
		run("social", uc.social.Name(), func(ctx context.Context) (interface{}, error) { return uc.social.FetchSocial(ctx, symbol) })
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch v := it.val.(type) {
		case *models.OptionsFlow:
			res.Options = v
		case *models.EventsCalendar:
			res.Calendar = v
		case *models.SocialSentiment:
			res.Social = v
		}
	}

	uc.estimateMissing(res)
	fusion.Combine(res)

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (uc *SecondarySignalsUseCase) estimateMissing(res *models.SecondarySignals) {
	if res.Options != nil && res.Calendar != nil && res.Social != nil {
		return
	}
	now := uc.now()
	rng := synthetic.DailyRand(res.Symbol, now)
	// draw in a fixed order so each estimate is stable regardless of which ones failed
	opts := synthetic.EstimateOptions(res.Symbol, now, rng)
	cal := synthetic.EstimateCalendar(res.Symbol, now, rng)
	soc := synthetic.EstimateSocial(res.Symbol, now, rng)

	if res.Options == nil {
		res.Options = opts
		uc.metrics.RecordDegraded("options")
	}
	if res.Calendar == nil {
		res.Calendar = cal
		uc.metrics.RecordDegraded("calendar")
	}
	if res.Social == nil {
		res.Social = soc
		uc.metrics.RecordDegraded("social")
	}
	uc.log.Debug("secondary signals estimated",
		logger.String("symbol", res.Symbol),
		logger.Int("failed", len(res.Errors)),
	)
}
