package core

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Statistics summarizes a set of transactions over a date range.
type Statistics struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	Count        int
	ByCategory   []CategoryAmount
}

// MonthlyReport is a per-category breakdown for a single year+month.
type MonthlyReport struct {
	Year         int
	Month        int // 1-12
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	ByCategory   []CategoryAmount
}

// MonthTotal carries one month's totals inside a YearlyReport.
type MonthTotal struct {
	Month        int // 1-12
	TotalIncome  Money
	TotalExpense Money
}

// YearlyReport aggregates a full year month by month.
type YearlyReport struct {
	Year         int
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	Months       []MonthTotal
}

// PeriodSummary is one side of a comparison report.
type PeriodSummary struct {
	Start        Date
	End          Date
	TotalIncome  Money
	TotalExpense Money
}

// ComparisonReport contrasts spending across two date ranges.
type ComparisonReport struct {
	First            PeriodSummary
	Second           PeriodSummary
	ExpenseDelta     Money
	ExpenseChangePct float64
}
