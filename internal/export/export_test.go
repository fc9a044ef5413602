package export

import (
	"context"
	"strings"
	"testing"

	"centime/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "t1",
			Type:        core.Expense,
			Amount:      core.Money{Cents: 1250},
			Category:    "Food",
			Description: "Lunch",
			Date:        core.NewDate(2024, 3, 15),
		},
		{
			ID:       "t2",
			Type:     core.Income,
			Amount:   core.Money{Cents: 250000},
			Category: "Salary",
			Date:     core.NewDate(2024, 3, 1),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, sampleTransactions()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
	}
	if lines[0] != "id,date,type,category,description,amount,account_id" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "t1,2024-03-15,expense,Food,Lunch,12.50," {
		t.Errorf("unexpected record %q", lines[1])
	}
	if lines[2] != "t2,2024-03-01,income,Salary,,2500.00," {
		t.Errorf("unexpected record %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimRight(sb.String(), "\n"); got != "id,date,type,category,description,amount,account_id" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestMemorySink(t *testing.T) {
	m := NewMemory()
	ref, err := m.Append(context.Background(), sampleTransactions())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("expected ref mem:2, got %q", ref)
	}
	if got := len(m.Rows()); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
}
