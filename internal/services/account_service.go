package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"centime/internal/core"
	"centime/internal/storage"
)

// AccountService manages accounts and transfers between them.
type AccountService struct {
	storage *storage.SQLiteRepository
	today   func() core.Date
}

func NewAccountService(repo *storage.SQLiteRepository) *AccountService {
	return &AccountService{
		storage: repo,
		today:   core.Today,
	}
}

func (s *AccountService) Create(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Currency == "" {
		a.Currency = "EUR"
	}
	a.Active = true
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.CreateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (core.Account, error) {
	return s.storage.GetAccount(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]core.Account, error) {
	return s.storage.ListAccounts(ctx)
}

func (s *AccountService) Update(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.storage.UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteAccount(ctx, id)
}

// TotalBalance sums the balances of all active accounts.
func (s *AccountService) TotalBalance(ctx context.Context) (core.Money, error) {
	accounts, err := s.storage.ListAccounts(ctx)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, a := range accounts {
		if a.Active {
			total = total.Add(a.Balance)
		}
	}
	return total, nil
}

// Transfer moves money between two accounts as a paired expense and income,
// so both sides show up in their ledgers and balances stay consistent.
func (s *AccountService) Transfer(ctx context.Context, fromID, toID string, amount core.Money, description string) error {
	if err := amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)
	}

	from, err := s.storage.GetAccount(ctx, fromID)
	if err != nil {
		return err
	}
	to, err := s.storage.GetAccount(ctx, toID)
	if err != nil {
		return err
	}

	// Credit accounts may go negative; everything else needs the funds.
	if from.Kind != core.AccountCredit && from.Balance.Cents < amount.Cents {
		return fmt.Errorf("%w: insufficient funds in %s", ErrValidation, from.Name)
	}

	if description == "" {
		description = fmt.Sprintf("Transfer %s -> %s", from.Name, to.Name)
	}
	today := s.today()

	out := core.Transaction{
		ID:          uuid.NewString(),
		AccountID:   from.ID,
		Type:        core.Expense,
		Amount:      amount,
		Category:    "Transfer",
		Description: description,
		Date:        today,
	}
	in := core.Transaction{
		ID:          uuid.NewString(),
		AccountID:   to.ID,
		Type:        core.Income,
		Amount:      amount,
		Category:    "Transfer",
		Description: description,
		Date:        today,
	}
	// Both legs and both balance adjustments commit together or not at
	// all. Transfers move money between own accounts, so they bypass the
	// budget checks a plain expense would trigger.
	if err := s.storage.CreateTransferPair(ctx, out, in); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}
