package http

import (
	"centime/internal/core"
	"centime/internal/schedule"
)

// Transport shapes for the JSON API. Amounts cross the wire as decimal
// units (12.50), never cents; dates as ISO strings.

type transactionDTO struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId,omitempty"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        core.Date `json:"date"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount.Float64(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
	}
}

func toTransactionDTOs(txns []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txns))
	for i, t := range txns {
		out[i] = toTransactionDTO(t)
	}
	return out
}

func (d transactionDTO) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID,
		AccountID:   d.AccountID,
		Type:        core.TransactionType(d.Type),
		Amount:      core.MoneyFromFloat(d.Amount),
		Category:    d.Category,
		Description: d.Description,
		Date:        d.Date,
	}
}

type recurringDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Amount        float64    `json:"amount"`
	Category      string     `json:"category"`
	Description   string     `json:"description,omitempty"`
	Frequency     string     `json:"frequency"`
	StartDate     core.Date  `json:"startDate"`
	EndDate       *core.Date `json:"endDate,omitempty"`
	DayOfMonth    *int       `json:"dayOfMonth,omitempty"`
	DayOfWeek     *int       `json:"dayOfWeek,omitempty"`
	Active        bool       `json:"active"`
	AutoCreate    bool       `json:"autoCreate"`
	NotifyBefore  int        `json:"notifyBefore"`
	LastExecuted  *core.Date `json:"lastExecuted,omitempty"`
	NextExecution *core.Date `json:"nextExecution,omitempty"`
	State         string     `json:"state"`
}

func toRecurringDTO(def core.RecurringDefinition, today core.Date) recurringDTO {
	dto := recurringDTO{
		ID:           def.ID,
		Name:         def.Name,
		Type:         string(def.Type),
		Amount:       def.Amount.Float64(),
		Category:     def.Category,
		Description:  def.Description,
		Frequency:    string(def.Frequency),
		StartDate:    def.StartDate,
		EndDate:      def.EndDate,
		DayOfMonth:   def.DayOfMonth,
		DayOfWeek:    def.DayOfWeek,
		Active:       def.Active,
		AutoCreate:   def.AutoCreate,
		NotifyBefore: def.NotifyBefore,
		LastExecuted: def.LastExecuted,
		State:        string(schedule.StateOf(def, today)),
	}
	// A paused definition reports no next execution; whatever is stored is
	// stale until it is resumed.
	if def.Active {
		dto.NextExecution = def.NextExecution
	}
	return dto
}

func (d recurringDTO) toCore() core.RecurringDefinition {
	return core.RecurringDefinition{
		ID:           d.ID,
		Name:         d.Name,
		Type:         core.TransactionType(d.Type),
		Amount:       core.MoneyFromFloat(d.Amount),
		Category:     d.Category,
		Description:  d.Description,
		Frequency:    core.Frequency(d.Frequency),
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		DayOfMonth:   d.DayOfMonth,
		DayOfWeek:    d.DayOfWeek,
		Active:       d.Active,
		AutoCreate:   d.AutoCreate,
		NotifyBefore: d.NotifyBefore,
	}
}

type categoryDTO struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Color  string  `json:"color"`
	Budget float64 `json:"budget"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:     c.ID,
		Name:   c.Name,
		Type:   string(c.Type),
		Color:  c.Color,
		Budget: c.Budget.Float64(),
	}
}

func (d categoryDTO) toCore() core.Category {
	return core.Category{
		ID:     d.ID,
		Name:   d.Name,
		Type:   core.TransactionType(d.Type),
		Color:  d.Color,
		Budget: core.MoneyFromFloat(d.Budget),
	}
}

type accountDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	Active   bool    `json:"active"`
}

func toAccountDTO(a core.Account) accountDTO {
	return accountDTO{
		ID:       a.ID,
		Name:     a.Name,
		Kind:     string(a.Kind),
		Balance:  a.Balance.Float64(),
		Currency: a.Currency,
		Active:   a.Active,
	}
}

func (d accountDTO) toCore() core.Account {
	return core.Account{
		ID:       d.ID,
		Name:     d.Name,
		Kind:     core.AccountKind(d.Kind),
		Balance:  core.MoneyFromFloat(d.Balance),
		Currency: d.Currency,
		Active:   d.Active,
	}
}

type goalDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      *core.Date `json:"deadline,omitempty"`
	Completed     bool       `json:"completed"`
	CompletedAt   *core.Date `json:"completedAt,omitempty"`
	Progress      float64    `json:"progress"`
}

func toGoalDTO(g core.Goal) goalDTO {
	dto := goalDTO{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.Float64(),
		CurrentAmount: g.CurrentAmount.Float64(),
		Deadline:      g.Deadline,
		Completed:     g.Completed,
		CompletedAt:   g.CompletedAt,
	}
	if g.TargetAmount.Cents > 0 {
		dto.Progress = float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
	}
	return dto
}

func (d goalDTO) toCore() core.Goal {
	return core.Goal{
		ID:            d.ID,
		Name:          d.Name,
		TargetAmount:  core.MoneyFromFloat(d.TargetAmount),
		CurrentAmount: core.MoneyFromFloat(d.CurrentAmount),
		Deadline:      d.Deadline,
		Completed:     d.Completed,
		CompletedAt:   d.CompletedAt,
	}
}

type notificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Priority  string    `json:"priority"`
	Read      bool      `json:"read"`
	RelatedID string    `json:"relatedId,omitempty"`
	ActionURL string    `json:"actionUrl,omitempty"`
	CreatedAt core.Date `json:"createdAt"`
}

func toNotificationDTO(n core.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		Read:      n.Read,
		RelatedID: n.RelatedID,
		ActionURL: n.ActionURL,
		CreatedAt: n.CreatedAt,
	}
}

type categoryAmountDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func toCategoryDTOs(items []core.CategoryAmount) []categoryAmountDTO {
	out := make([]categoryAmountDTO, len(items))
	for i, c := range items {
		out[i] = categoryAmountDTO{Name: c.Name, Amount: c.Amount.Float64()}
	}
	return out
}

type statisticsDTO struct {
	TotalIncome  float64             `json:"totalIncome"`
	TotalExpense float64             `json:"totalExpense"`
	Balance      float64             `json:"balance"`
	Count        int                 `json:"count"`
	ByCategory   []categoryAmountDTO `json:"byCategory"`
}

type monthlyReportDTO struct {
	Year         int                 `json:"year"`
	Month        int                 `json:"month"`
	TotalIncome  float64             `json:"totalIncome"`
	TotalExpense float64             `json:"totalExpense"`
	Balance      float64             `json:"balance"`
	ByCategory   []categoryAmountDTO `json:"byCategory"`
}

type monthTotalDTO struct {
	Month        int     `json:"month"`
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
}

type yearlyReportDTO struct {
	Year         int             `json:"year"`
	TotalIncome  float64         `json:"totalIncome"`
	TotalExpense float64         `json:"totalExpense"`
	Balance      float64         `json:"balance"`
	Months       []monthTotalDTO `json:"months"`
}

type periodSummaryDTO struct {
	Start        core.Date `json:"start"`
	End          core.Date `json:"end"`
	TotalIncome  float64   `json:"totalIncome"`
	TotalExpense float64   `json:"totalExpense"`
}

type comparisonReportDTO struct {
	First            periodSummaryDTO `json:"first"`
	Second           periodSummaryDTO `json:"second"`
	ExpenseDelta     float64          `json:"expenseDelta"`
	ExpenseChangePct float64          `json:"expenseChangePct"`
}

func toMonthlyReportDTO(r core.MonthlyReport) monthlyReportDTO {
	return monthlyReportDTO{
		Year:         r.Year,
		Month:        r.Month,
		TotalIncome:  r.TotalIncome.Float64(),
		TotalExpense: r.TotalExpense.Float64(),
		Balance:      r.Balance.Float64(),
		ByCategory:   toCategoryDTOs(r.ByCategory),
	}
}

func toYearlyReportDTO(r core.YearlyReport) yearlyReportDTO {
	dto := yearlyReportDTO{
		Year:         r.Year,
		TotalIncome:  r.TotalIncome.Float64(),
		TotalExpense: r.TotalExpense.Float64(),
		Balance:      r.Balance.Float64(),
		Months:       make([]monthTotalDTO, len(r.Months)),
	}
	for i, m := range r.Months {
		dto.Months[i] = monthTotalDTO{
			Month:        m.Month,
			TotalIncome:  m.TotalIncome.Float64(),
			TotalExpense: m.TotalExpense.Float64(),
		}
	}
	return dto
}

func toComparisonReportDTO(r core.ComparisonReport) comparisonReportDTO {
	return comparisonReportDTO{
		First:            toPeriodSummaryDTO(r.First),
		Second:           toPeriodSummaryDTO(r.Second),
		ExpenseDelta:     r.ExpenseDelta.Float64(),
		ExpenseChangePct: r.ExpenseChangePct,
	}
}

func toPeriodSummaryDTO(p core.PeriodSummary) periodSummaryDTO {
	return periodSummaryDTO{
		Start:        p.Start,
		End:          p.End,
		TotalIncome:  p.TotalIncome.Float64(),
		TotalExpense: p.TotalExpense.Float64(),
	}
}
