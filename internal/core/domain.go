package core

import (
	"errors"
	"strings"
)

type (
	TransactionType string

	Frequency string

	Priority string
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyName         = errors.New("empty name")
	ErrInvalidDayOfWeek  = errors.New("day of week must be between 0 and 6")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrEndBeforeStart    = errors.New("end date must not be before start date")
	ErrInvalidColor      = errors.New("color must be a #rrggbb value")
)

// Transaction is a single recorded income or expense.
type Transaction struct {
	ID          string
	AccountID   string
	Type        TransactionType
	Amount      Money
	Category    string
	Description string
	Date        Date
}

func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// RecurringDefinition is a template from which transactions are materialized
// on a cadence. DayOfMonth and DayOfWeek are optional; when nil the anchor
// day is derived from StartDate.
type RecurringDefinition struct {
	ID            string
	Name          string
	Type          TransactionType
	Amount        Money
	Category      string
	Description   string
	Frequency     Frequency
	StartDate     Date
	EndDate       *Date
	DayOfMonth    *int // 1-31, monthly/quarterly/yearly only
	DayOfWeek     *int // 0-6, Sunday = 0, weekly/biweekly only
	Active        bool
	AutoCreate    bool
	NotifyBefore  int // days before next execution a reminder fires
	LastExecuted  *Date
	NextExecution *Date
}

func (r RecurringDefinition) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Type != Income && r.Type != Expense {
		return ErrInvalidType
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	switch r.Frequency {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
	default:
		return ErrInvalidFrequency
	}
	if r.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate.Time) {
		return ErrEndBeforeStart
	}
	if r.DayOfMonth != nil && (*r.DayOfMonth < 1 || *r.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		return ErrInvalidDayOfWeek
	}
	if r.NotifyBefore < 0 {
		return errors.New("notify before must not be negative")
	}
	return nil
}

// Category is a user-managed transaction label with a display color and an
// optional monthly budget. A zero budget means the category is not
// budgeted; per-category budget alerts apply to expense categories only.
type Category struct {
	ID     string
	Name   string
	Type   TransactionType
	Color  string
	Budget Money
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != Income && c.Type != Expense {
		return ErrInvalidType
	}
	if c.Color != "" && !validHexColor(c.Color) {
		return ErrInvalidColor
	}
	if c.Budget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// AccountKind classifies an account for balance rules: credit accounts may
// go negative, the others may not.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
	AccountCash     AccountKind = "cash"
	AccountCredit   AccountKind = "credit"
	AccountOther    AccountKind = "other"
)

type Account struct {
	ID       string
	Name     string
	Kind     AccountKind
	Balance  Money
	Currency string
	Active   bool
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Kind {
	case AccountChecking, AccountSavings, AccountCash, AccountCredit, AccountOther:
	default:
		return errors.New("invalid account kind")
	}
	return nil
}

// Goal is a savings target with an optional deadline.
type Goal struct {
	ID            string
	Name          string
	TargetAmount  Money
	CurrentAmount Money
	Deadline      *Date
	Completed     bool
	CompletedAt   *Date
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NotificationType labels what triggered a notification.
type NotificationType string

const (
	NotifyBudgetWarning     NotificationType = "budget_warning"
	NotifyBudgetExceeded    NotificationType = "budget_exceeded"
	NotifyGoalDeadline      NotificationType = "goal_deadline"
	NotifyGoalAchieved      NotificationType = "goal_achieved"
	NotifyRecurringDue      NotificationType = "recurring_due"
	NotifyRecurringExecuted NotificationType = "recurring_executed"
)

type Notification struct {
	ID        string
	Type      NotificationType
	Title     string
	Message   string
	Priority  Priority
	Read      bool
	RelatedID string
	ActionURL string
	DedupeKey string
	CreatedAt Date
}
