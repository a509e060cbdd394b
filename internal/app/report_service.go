package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
)

// ReportService aggregates ledger entries by calendar day in a fixed time
// zone. It only reads from the repository.
type ReportService struct {
	repo domain.LedgerRepository
	loc  *time.Location
	now  Clock
}

// NewReportService creates a ReportService bucketing days in loc.
func NewReportService(repo domain.LedgerRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{repo: repo, loc: loc, now: time.Now}
}

// WithClock overrides the time source used to determine "today".
func (s *ReportService) WithClock(c Clock) *ReportService {
	s.now = c
	return s
}

// DayBucket holds the entries registered on one calendar day.
type DayBucket struct {
	Day     string               `json:"day"`
	Entries []domain.LedgerEntry `json:"entries"`
}

// DayTotal is the calorie sum of one calendar day.
type DayTotal struct {
	Day      string  `json:"day"`
	Calories float64 `json:"calories"`
}

// DayCount is the number of entries registered on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

func (s *ReportService) today() time.Time {
	return startOfDay(s.now().In(s.loc))
}

// Today returns the current calendar day as YYYY-MM-DD.
func (s *ReportService) Today() string {
	return s.today().Format(dayLayout)
}

// EntriesBetween returns entries registered from 00:00:00 on start's day
// through 23:59:59 on end's day.
func (s *ReportService) EntriesBetween(ctx context.Context, start, end time.Time) ([]domain.LedgerEntry, error) {
	from := startOfDay(start.In(s.loc))
	to := endOfDay(end.In(s.loc))
	return s.repo.FindByDateRange(ctx, from, to)
}

// LastNDaysEntries returns entries from today-n through today. The window
// spans n+1 calendar days.
func (s *ReportService) LastNDaysEntries(ctx context.Context, n int) ([]domain.LedgerEntry, error) {
	today := s.today()
	return s.EntriesBetween(ctx, today.AddDate(0, 0, -n), today)
}

// GroupByDay buckets entries into every calendar day from the earliest
// entry's day through today. Entries outside that range are dropped.
func (s *ReportService) GroupByDay(entries []domain.LedgerEntry) []DayBucket {
	if len(entries) == 0 {
		return []DayBucket{}
	}
	earliest := entries[0].RegistrationDate
	for _, e := range entries[1:] {
		if e.RegistrationDate.Before(earliest) {
			earliest = e.RegistrationDate
		}
	}

	buckets := s.emptyDays(startOfDay(earliest.In(s.loc)), s.today())
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Day] = i
	}
	for _, e := range entries {
		day := e.RegistrationDate.In(s.loc).Format(dayLayout)
		if i, ok := index[day]; ok {
			buckets[i].Entries = append(buckets[i].Entries, e)
		}
	}
	return buckets
}

func (s *ReportService) emptyDays(from, to time.Time) []DayBucket {
	var out []DayBucket
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, DayBucket{Day: d.Format(dayLayout), Entries: []domain.LedgerEntry{}})
	}
	return out
}

// TotalCaloriesByDay sums each day bucket of GroupByDay.
func (s *ReportService) TotalCaloriesByDay(entries []domain.LedgerEntry) []DayTotal {
	buckets := s.GroupByDay(entries)
	out := make([]DayTotal, 0, len(buckets))
	for _, b := range buckets {
		var sum float64
		for _, e := range b.Entries {
			sum += e.Calories
		}
		out = append(out, DayTotal{Day: b.Day, Calories: sum})
	}
	return out
}

// PeriodicUserSummary returns the mean calories per entry for every user
// with at least one entry in LastNDaysEntries(windowDays).
func (s *ReportService) PeriodicUserSummary(ctx context.Context, windowDays int) (map[uuid.UUID]float64, error) {
	entries, err := s.LastNDaysEntries(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID]float64)
	counts := make(map[uuid.UUID]int)
	for _, e := range entries {
		sums[e.UserID] += e.Calories
		counts[e.UserID]++
	}
	out := make(map[uuid.UUID]float64, len(sums))
	for id, sum := range sums {
		out[id] = sum / float64(counts[id])
	}
	return out, nil
}

// MaxMovingAverageDays bounds windowSize*chunks for MovingAverage.
const MaxMovingAverageDays = 3660

// MovingAverage counts entries per day over windowSize*chunks calendar days
// ending today, zero-filled. Despite the name it reports counts.
func (s *ReportService) MovingAverage(ctx context.Context, windowSize, chunks int) ([]DayCount, error) {
	if windowSize <= 0 {
		return nil, fieldError("window", "must be greater than 0")
	}
	if chunks <= 0 {
		return nil, fieldError("chunks", "must be greater than 0")
	}
	if windowSize > MaxMovingAverageDays || chunks > MaxMovingAverageDays/windowSize {
		return nil, fieldError("window", fmt.Sprintf("window*chunks must not exceed %d days", MaxMovingAverageDays))
	}
	span := windowSize * chunks
	today := s.today()
	start := today.AddDate(0, 0, -(span - 1))

	entries, err := s.EntriesBetween(ctx, start, today)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.RegistrationDate.In(s.loc).Format(dayLayout)]++
	}

	out := make([]DayCount, 0, span)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayLayout)
		out = append(out, DayCount{Day: day, Count: counts[day]})
	}
	return out, nil
}

func sortedAverages(m map[uuid.UUID]float64) []UserCaloriesAverage {
	out := make([]UserCaloriesAverage, 0, len(m))
	for id, avg := range m {
		out = append(out, UserCaloriesAverage{UserID: id, AverageCalories: avg})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out
}
