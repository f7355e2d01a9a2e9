package activity

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/igortacu/summer-hackathon-sub000/core"
)

var (
	// errors
	ErrInvalidDate  = errors.New("date is outside the activity window")
	ErrInvalidCount = errors.New("count must be positive")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// IncrementSample adds `by` to the user's count for date, creating the sample if needed.
		IncrementSample(ctx context.Context, userID string, date Date, by int) (Sample, error)
		// UpsertSamples sets the user's counts for the given dates.
		UpsertSamples(ctx context.Context, userID string, samples []Sample) error
		// QuerySamples returns the per-date sums over userIDs within [start, end], ascending.
		QuerySamples(ctx context.Context, userIDs []string, start, end Date) ([]Sample, error)
		DeleteSamples(ctx context.Context, userIDs ...string) error
	}

	Options struct {
		Location           *time.Location
		WeekStartsOnMonday bool
		Palette            Palette
		MaxCount           int
		Density            int
	}

	Service struct {
		repo Repository
		opts Options
	}

	HeatmapQuery struct {
		UserIDs []string
		// Today overrides the service clock when set.
		Today Date
		// WeekStartsOnMonday overrides the service default when set.
		WeekStartsOnMonday *bool
	}
)

// OptionsFromConfig maps the activity config section onto service options.
func OptionsFromConfig(conf core.ActivityConfig) Options {
	return Options{
		Location:           conf.Location(),
		WeekStartsOnMonday: conf.WeekStartsOnMonday,
		Palette:            DefaultPalette,
		MaxCount:           conf.MaxCount,
		Density:            conf.Density,
	}
}

func NewService(repo Repository, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette
	}
	return &Service{repo: repo, opts: opts}
}

// Today is the current date in the service's timezone.
func (svc *Service) Today() Date {
	return DateOf(NowFunc().In(svc.opts.Location))
}

func (svc *Service) Palette() Palette {
	return svc.opts.Palette
}

func (svc *Service) checkDate(date Date, today Date) error {
	if date.IsZero() {
		return core.NewValidationError(ErrInvalidDate, core.FieldError{Field: "date", Error: "this field is required"})
	}
	if date.After(today) {
		return core.NewValidationError(ErrInvalidDate, core.FieldError{Field: "date", Error: "date cannot be in the future"})
	}
	if date.Before(WindowStart(today)) {
		return core.NewValidationError(ErrInvalidDate, core.FieldError{Field: "date", Error: ErrInvalidDate.Error()})
	}
	return nil
}

// Record adds count to the user's activity on date.
func (svc *Service) Record(ctx context.Context, userID string, date Date, count int) (Sample, error) {
	if count < 1 {
		return Sample{}, core.NewValidationError(ErrInvalidCount, core.FieldError{Field: "count", Error: ErrInvalidCount.Error()})
	}
	if err := svc.checkDate(date, svc.Today()); err != nil {
		return Sample{}, err
	}
	s, err := svc.repo.IncrementSample(ctx, userID, date, count)
	if err != nil {
		return Sample{}, errors.Wrap(err, "recording activity")
	}
	return s, nil
}

// Import replaces the user's counts for the dates in samples and returns how many dates were written.
// Duplicate dates are summed first; zero dates and negative counts are skipped.
func (svc *Service) Import(ctx context.Context, userID string, samples []Sample) (int, error) {
	counts := make(map[Date]int, len(samples))
	for _, s := range samples {
		if s.Date.IsZero() || s.Count < 0 {
			continue
		}
		counts[s.Date] += s.Count
	}
	if len(counts) == 0 {
		return 0, nil
	}

	merged := make([]Sample, 0, len(counts))
	for d, n := range counts {
		merged = append(merged, Sample{Date: d, Count: n})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	if err := svc.repo.UpsertSamples(ctx, userID, merged); err != nil {
		return 0, errors.Wrap(err, "importing activity")
	}
	return len(merged), nil
}

// Series returns the activity of userIDs summed per date within [start, end].
func (svc *Service) Series(ctx context.Context, userIDs []string, start, end Date) ([]Sample, error) {
	if len(userIDs) == 0 || start.After(end) {
		return []Sample{}, nil
	}
	samples, err := svc.repo.QuerySamples(ctx, userIDs, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "querying activity")
	}
	return samples, nil
}

// Heatmap builds the heatmap view-model of the trailing year for q.UserIDs.
func (svc *Service) Heatmap(ctx context.Context, q HeatmapQuery) (Heatmap, error) {
	today := q.Today
	if today.IsZero() {
		today = svc.Today()
	}
	mondayFirst := svc.opts.WeekStartsOnMonday
	if q.WeekStartsOnMonday != nil {
		mondayFirst = *q.WeekStartsOnMonday
	}

	samples, err := svc.Series(ctx, q.UserIDs, WindowStart(today), today)
	if err != nil {
		return Heatmap{}, err
	}
	return NewHeatmap(samples, today, mondayFirst, svc.opts.Palette), nil
}

// SeedDemo replaces the user's trailing year with a generated series.
func (svc *Service) SeedDemo(ctx context.Context, userID string, seed int64) (int, error) {
	gen := NewGenerator(seed)
	if svc.opts.MaxCount > 0 {
		gen.MaxCount = svc.opts.MaxCount
	}
	if svc.opts.Density > 0 {
		gen.Density = svc.opts.Density
	}

	today := svc.Today()
	if err := svc.repo.DeleteSamples(ctx, userID); err != nil {
		return 0, errors.Wrap(err, "clearing activity")
	}
	return svc.Import(ctx, userID, gen.GenerateSeries(WindowStart(today), today))
}

// Clear removes all activity of the given users.
func (svc *Service) Clear(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return errors.Wrap(svc.repo.DeleteSamples(ctx, userIDs...), "clearing activity")
}
