package services

import (
	"context"
	"sort"

	"centime/internal/core"
	"centime/internal/storage"
)

// ReportService builds aggregated views over the ledger. Results are pure
// functions of stored transactions; the HTTP layer caches them.
type ReportService struct {
	storage *storage.SQLiteRepository
}

func NewReportService(repo *storage.SQLiteRepository) *ReportService {
	return &ReportService{storage: repo}
}

// Monthly aggregates one calendar month with a per-category expense
// breakdown.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	start := core.NewDate(year, month, 1)
	end := core.NewDate(year, month, core.DaysInMonth(year, month))

	txns, err := s.storage.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return core.MonthlyReport{}, err
	}

	report := core.MonthlyReport{Year: year, Month: month}
	byCategory := map[string]int64{}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			report.TotalIncome = report.TotalIncome.Add(t.Amount)
		case core.Expense:
			report.TotalExpense = report.TotalExpense.Add(t.Amount)
			byCategory[t.Category] += t.Amount.Cents
		}
	}
	report.Balance = report.TotalIncome.Sub(report.TotalExpense)
	report.ByCategory = sortedCategories(byCategory)
	return report, nil
}

// Yearly aggregates a full year month by month.
func (s *ReportService) Yearly(ctx context.Context, year int) (core.YearlyReport, error) {
	start := core.NewDate(year, 1, 1)
	end := core.NewDate(year, 12, 31)

	txns, err := s.storage.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return core.YearlyReport{}, err
	}

	report := core.YearlyReport{Year: year, Months: make([]core.MonthTotal, 12)}
	for i := range report.Months {
		report.Months[i].Month = i + 1
	}
	for _, t := range txns {
		m := &report.Months[int(t.Date.Month())-1]
		switch t.Type {
		case core.Income:
			report.TotalIncome = report.TotalIncome.Add(t.Amount)
			m.TotalIncome = m.TotalIncome.Add(t.Amount)
		case core.Expense:
			report.TotalExpense = report.TotalExpense.Add(t.Amount)
			m.TotalExpense = m.TotalExpense.Add(t.Amount)
		}
	}
	report.Balance = report.TotalIncome.Sub(report.TotalExpense)
	return report, nil
}

// Compare contrasts expense totals across two inclusive date ranges. The
// change percentage is relative to the first period; it is zero when the
// first period had no expenses.
func (s *ReportService) Compare(ctx context.Context, firstStart, firstEnd, secondStart, secondEnd core.Date) (core.ComparisonReport, error) {
	first, err := s.periodSummary(ctx, firstStart, firstEnd)
	if err != nil {
		return core.ComparisonReport{}, err
	}
	second, err := s.periodSummary(ctx, secondStart, secondEnd)
	if err != nil {
		return core.ComparisonReport{}, err
	}

	report := core.ComparisonReport{
		First:        first,
		Second:       second,
		ExpenseDelta: second.TotalExpense.Sub(first.TotalExpense),
	}
	if first.TotalExpense.Cents != 0 {
		report.ExpenseChangePct = float64(report.ExpenseDelta.Cents) / float64(first.TotalExpense.Cents) * 100
	}
	return report, nil
}

func (s *ReportService) periodSummary(ctx context.Context, start, end core.Date) (core.PeriodSummary, error) {
	txns, err := s.storage.ListTransactionsBetween(ctx, start, end)
	if err != nil {
		return core.PeriodSummary{}, err
	}

	summary := core.PeriodSummary{Start: start, End: end}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case core.Expense:
			summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
		}
	}
	return summary, nil
}

// sortCategoryAmounts orders categories by descending amount, name as the
// tie breaker.
func sortCategoryAmounts(items []core.CategoryAmount) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Amount.Cents != items[j].Amount.Cents {
			return items[i].Amount.Cents > items[j].Amount.Cents
		}
		return items[i].Name < items[j].Name
	})
}
