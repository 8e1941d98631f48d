// Package reports exports daily nutrition totals over a date range as
// CSV or PDF.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealvoice/server/internal/nutrition"
	"github.com/mealvoice/server/internal/storage"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var (
	ErrInvalidFormat    = errors.New("format must be csv or pdf")
	ErrInvalidDate      = errors.New("dates must be YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("from must not be after to")
	ErrRangeTooLarge    = errors.New("date range exceeds the maximum")
)

// TargetProvider reports the caller's daily calorie target.
type TargetProvider interface {
	TargetCalories(ctx context.Context) (int, error)
}

// DayRow is one aggregated day in a report. Only meals with a successful
// estimation contribute to the sums; MealsLogged counts every entry.
type DayRow struct {
	Date        string
	MealsLogged int
	Calories    float64
	Protein     float64
	Carbs       float64
	Fats        float64
}

// Service assembles report data and renders it.
type Service struct {
	storage      storage.MealLogStorage
	targets      TargetProvider
	maxRangeDays int
}

func NewService(st storage.MealLogStorage, targets TargetProvider, maxRangeDays int) *Service {
	return &Service{
		storage:      st,
		targets:      targets,
		maxRangeDays: maxRangeDays,
	}
}

func (s *Service) MaxRangeDays() int {
	return s.maxRangeDays
}

// DailyReport renders daily totals for [from, to] in the given format
// and returns the document bytes with their content type.
func (s *Service) DailyReport(ctx context.Context, userID, from, to, format string) ([]byte, string, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, "", ErrInvalidFormat
	}

	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidDate, from)
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidDate, to)
	}
	if fromDay.After(toDay) {
		return nil, "", ErrInvalidDateRange
	}
	if days := int(toDay.Sub(fromDay).Hours()/24) + 1; days > s.maxRangeDays {
		return nil, "", fmt.Errorf("%w: %d days (limit %d)", ErrRangeTooLarge, days, s.maxRangeDays)
	}

	target, err := s.targets.TargetCalories(ctx)
	if err != nil {
		return nil, "", err
	}

	rows, err := s.assembleRows(ctx, userID, fromDay, toDay)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatPDF:
		data, err := renderPDF(from, to, target, rows)
		return data, "application/pdf", err
	default:
		data, err := renderCSV(target, rows)
		return data, "text/csv", err
	}
}

// assembleRows produces one row per day in the range, zero-valued for
// days without meals.
func (s *Service) assembleRows(ctx context.Context, userID string, fromDay, toDay time.Time) ([]DayRow, error) {
	meals, err := s.storage.ListMealsInRange(ctx, userID, fromDay.Format("2006-01-02"), toDay.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*DayRow)
	var rows []DayRow
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		rows = append(rows, DayRow{Date: day.Format("2006-01-02")})
	}
	for i := range rows {
		byDate[rows[i].Date] = &rows[i]
	}

	for _, meal := range meals {
		row, ok := byDate[meal.MealDate]
		if !ok {
			continue
		}
		row.MealsLogged++

		if len(meal.Nutrition) == 0 {
			continue
		}
		decoded, err := nutrition.Decode(meal.Nutrition)
		if err != nil {
			continue
		}
		analysis, ok := decoded.Analysis()
		if !ok {
			continue
		}
		row.Calories += analysis.TotalCalories
		row.Protein += analysis.TotalProtein
		row.Carbs += analysis.TotalCarbs
		row.Fats += analysis.TotalFats
	}

	return rows, nil
}
