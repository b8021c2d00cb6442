package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/worddee/internal/i18n"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/models"
)

// Backend is the part of the backend API the dashboard consumes.
type Backend interface {
	FetchSummary(ctx context.Context, clientDate string) (models.Summary, error)
	FetchHistory(ctx context.Context) ([]models.HistoryItem, error)
}

// Aggregator loads and derives everything the dashboard shows.
type Aggregator struct {
	backend Backend
	loc     *time.Location
	tr      i18n.Translator
}

func NewAggregator(backend Backend, loc *time.Location, tr i18n.Translator) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{backend: backend, loc: loc, tr: tr}
}

// Data is the raw pair fetched from the backend.
type Data struct {
	Summary models.Summary
	History []models.HistoryItem
}

// Fetch issues the summary and history requests together and waits for
// both. If either fails, no data is returned.
func (a *Aggregator) Fetch(ctx context.Context, now time.Time) (*Data, error) {
	log := logger.FromContext(ctx).WithPrefix("dashboard")
	clientDate := models.FormatClientDate(now, a.loc)

	var (
		summary models.Summary
		history []models.HistoryItem
	)
	// Both requests run to completion; one failing does not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		s, err := a.backend.FetchSummary(ctx, clientDate)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		summary = s
		return nil
	})
	g.Go(func() error {
		h, err := a.backend.FetchHistory(ctx)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn("dashboard data unavailable: %v", err)
		return nil, err
	}

	log.Debug("dashboard data loaded: attempts=%d history=%d", summary.TotalAttempts, len(history))
	return &Data{Summary: summary, History: history}, nil
}

// View is the render model for the dashboard page. When Error is set nothing
// else is populated.
type View struct {
	Error string

	Summary      *models.Summary
	DayStreak    int64
	AverageScore string
	LearningTime LearningTime
	Ordering     Ordering
	History      []models.HistoryItem
	Chart        Series
}

// HasData reports whether cards and chart should be rendered.
func (v View) HasData() bool {
	return v.Error == "" && v.Summary != nil
}

// Load fetches and derives the dashboard view. On failure the returned view
// carries exactly one localized message and no data.
func (a *Aggregator) Load(ctx context.Context, now time.Time) (View, error) {
	data, err := a.Fetch(ctx, now)
	if err != nil {
		return View{Error: a.tr.T(i18n.DashboardLoadFailed)}, err
	}
	return Build(*data), nil
}

// Build derives the view from fetched data.
func Build(data Data) View {
	ordered, how := OrderHistory(data.History)
	summary := data.Summary

	var streak int64
	if summary.DayStreak != nil {
		streak = *summary.DayStreak
	}
	return View{
		Summary:      &summary,
		DayStreak:    streak,
		AverageScore: fmt.Sprintf("%.1f", summary.AverageScore),
		LearningTime: NewLearningTime(TotalLearningSeconds(data.History)),
		Ordering:     how,
		History:      ordered,
		Chart:        ChartSeries(ordered),
	}
}
