package app

import (
	"context"

	"eatwise/internal/metrics"

	"github.com/google/uuid"
)

// ReportWindowDays is the window used by every admin report.
const ReportWindowDays = 7

// WeeklyComparisonReport compares entry counts across all users for the
// current and the previous week.
type WeeklyComparisonReport struct {
	CurrentWeekEntries  int64   `json:"currentWeekEntries"`
	PreviousWeekEntries int64   `json:"previousWeekEntries"`
	PercentageChange    float64 `json:"percentageChange"`
}

// UserCaloriesAverage is one user's mean calories per entry.
type UserCaloriesAverage struct {
	UserID          uuid.UUID `json:"userId"`
	AverageCalories float64   `json:"averageCalories"`
}

// AdminDashboardReport bundles the weekly comparison and user averages.
type AdminDashboardReport struct {
	WeeklyComparison WeeklyComparisonReport `json:"weeklyComparison"`
	UserAverages     []UserCaloriesAverage  `json:"userAverages"`
}

// PercentageChange returns (current-previous)/previous*100, or 0 when
// previous is 0.
func PercentageChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// AdminReportService assembles admin reports from the aggregation engine.
type AdminReportService struct {
	reports *ReportService
	metrics *metrics.Metrics
}

// NewAdminReportService creates an AdminReportService.
func NewAdminReportService(reports *ReportService) *AdminReportService {
	return &AdminReportService{reports: reports}
}

// WithMetrics records every computed report on m.
func (s *AdminReportService) WithMetrics(m *metrics.Metrics) *AdminReportService {
	s.metrics = m
	return s
}

// WeeklyComparison counts entries of the last 7 days (today included) and of
// the 7 days ending 8 days ago.
func (s *AdminReportService) WeeklyComparison(ctx context.Context) (WeeklyComparisonReport, error) {
	r, err := s.weeklyComparison(ctx)
	if err != nil {
		return WeeklyComparisonReport{}, err
	}
	s.metrics.ReportServed("weekly_comparison")
	return r, nil
}

func (s *AdminReportService) weeklyComparison(ctx context.Context) (WeeklyComparisonReport, error) {
	current, err := s.reports.LastNDaysEntries(ctx, ReportWindowDays)
	if err != nil {
		return WeeklyComparisonReport{}, err
	}
	today := s.reports.today()
	previous, err := s.reports.EntriesBetween(ctx,
		today.AddDate(0, 0, -2*ReportWindowDays),
		today.AddDate(0, 0, -(ReportWindowDays+1)))
	if err != nil {
		return WeeklyComparisonReport{}, err
	}

	cur, prev := int64(len(current)), int64(len(previous))
	return WeeklyComparisonReport{
		CurrentWeekEntries:  cur,
		PreviousWeekEntries: prev,
		PercentageChange:    PercentageChange(cur, prev),
	}, nil
}

// UserAverages returns the mean calories per user over the report window,
// ordered by user ID.
func (s *AdminReportService) UserAverages(ctx context.Context) ([]UserCaloriesAverage, error) {
	out, err := s.userAverages(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportServed("user_averages")
	return out, nil
}

func (s *AdminReportService) userAverages(ctx context.Context) ([]UserCaloriesAverage, error) {
	summary, err := s.reports.PeriodicUserSummary(ctx, ReportWindowDays)
	if err != nil {
		return nil, err
	}
	return sortedAverages(summary), nil
}

// AdminReport computes both parts independently. Writes landing between the
// two reads may skew them slightly.
func (s *AdminReportService) AdminReport(ctx context.Context) (AdminDashboardReport, error) {
	weekly, err := s.weeklyComparison(ctx)
	if err != nil {
		return AdminDashboardReport{}, err
	}
	averages, err := s.userAverages(ctx)
	if err != nil {
		return AdminDashboardReport{}, err
	}
	s.metrics.ReportServed("dashboard")
	return AdminDashboardReport{WeeklyComparison: weekly, UserAverages: averages}, nil
}
