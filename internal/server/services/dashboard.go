// This file implements DashboardService: the aggregate counts behind the
// landing page charts. Reads hit only the relational store.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/missionset/missionset/internal/common"
	"github.com/missionset/missionset/internal/server/models"
	"github.com/missionset/missionset/internal/server/repositories/repomanager"
)

// dailySeriesDays is the width of the trailing daily-count series,
// including today.
const dailySeriesDays = 5

// UnlabeledBucket collects items that carry no known label.
const UnlabeledBucket = "Unlabeled"

// NoDataBucket is the synthetic histogram entry emitted for an empty store
// so charts never render empty.
const NoDataBucket = "No data"

// LabelCount is one histogram bucket.
type LabelCount struct {
	Label string
	Count int
}

// DayCount is one entry of the daily series, keyed by calendar date
// (YYYY-MM-DD).
type DayCount struct {
	Date  string
	Count int
}

// Stats is the dashboard payload.
type Stats struct {
	Recent      []*models.Item
	LabelCounts []LabelCount
	Daily       []DayCount
}

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	// now is a seam for tests pinning the daily series.
	now func() time.Time
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m, now: time.Now}
}

// ComputeStats builds the dashboard: the five newest items, the label
// histogram, and a zero-filled five-day daily count series ending today.
func (s *DashboardService) ComputeStats(ctx context.Context) (*Stats, error) {
	repo := s.repomanager.Items(s.db)

	recent, err := repo.ListRecent(ctx, dailySeriesDays)
	if err != nil {
		return nil, fmt.Errorf("error loading recent items: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting items: %w", err)
	}

	labelCounts, err := s.computeLabelCounts(ctx, total)
	if err != nil {
		return nil, err
	}

	daily, err := s.computeDaily(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{Recent: recent, LabelCounts: labelCounts, Daily: daily}, nil
}

// computeLabelCounts builds the histogram. Each item contributes to every
// label it carries; items with no known label count once under Unlabeled;
// an empty store yields a single synthetic bucket.
func (s *DashboardService) computeLabelCounts(ctx context.Context, total int) ([]LabelCount, error) {
	if total == 0 {
		return []LabelCount{{Label: NoDataBucket, Count: 1}}, nil
	}

	repo := s.repomanager.Items(s.db)

	byLabel, err := repo.CountByLabel(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting labels: %w", err)
	}
	unlabeled, err := repo.CountUnlabeled(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting unlabeled items: %w", err)
	}

	counts := make([]LabelCount, 0, len(common.AllowedLabels)+1)
	for _, label := range common.AllowedLabels {
		if n := byLabel[label]; n > 0 {
			counts = append(counts, LabelCount{Label: label, Count: n})
		}
	}
	if unlabeled > 0 {
		counts = append(counts, LabelCount{Label: UnlabeledBucket, Count: unlabeled})
	}
	return counts, nil
}

// computeDaily builds the trailing daily series: exactly dailySeriesDays
// entries, oldest first, zero-filled for days with no items.
func (s *DashboardService) computeDaily(ctx context.Context) ([]DayCount, error) {
	today := s.now().UTC()
	from := today.AddDate(0, 0, -(dailySeriesDays - 1)).Format("2006-01-02")

	byDay, err := s.repomanager.Items(s.db).CountByDay(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("error counting items by day: %w", err)
	}

	daily := make([]DayCount, 0, dailySeriesDays)
	for i := dailySeriesDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		daily = append(daily, DayCount{Date: date, Count: byDay[date]})
	}
	return daily, nil
}
