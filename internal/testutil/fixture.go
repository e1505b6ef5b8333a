package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/store"
)

// Fixture describes database rows in a YAML-friendly form. Dates are
// "YYYY-MM-DD", months "YYYY-MM" and times "YYYY-MM-DD HH:MM".
type Fixture struct {
	Projects   []FixtureProject   `yaml:"projects"`
	Recipients []FixtureRecipient `yaml:"recipients"`
	Invoices   []FixtureInvoice   `yaml:"invoices"`
	Activities []FixtureActivity  `yaml:"activities"`
	Times      []FixtureTime      `yaml:"times"`
}

type FixtureProject struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type FixtureRecipient struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type FixtureInvoice struct {
	Number    int64  `yaml:"number"`
	Month     string `yaml:"month"`
	Recipient string `yaml:"recipient"`
	Created   string `yaml:"created,omitempty"`
}

type FixtureActivity struct {
	Number      int64   `yaml:"number"`
	Invoice     int64   `yaml:"invoice"`
	Description string  `yaml:"description"`
	UnitPrice   float64 `yaml:"unit_price"`
}

// FixtureTime is one time entry. Entries get ids 1, 2, ... in list order.
type FixtureTime struct {
	Start       string   `yaml:"start"`
	End         string   `yaml:"end"`
	Description string   `yaml:"description"`
	Duration    *float64 `yaml:"duration,omitempty"`
	Activity    *int64   `yaml:"activity,omitempty"`
	Tickets     []string `yaml:"tickets,omitempty"`
}

const fixtureTimeLayout = "2006-01-02 15:04"

// Seed inserts every fixture row in one transaction. Rows are inserted
// parents first, each list in the order given.
func Seed(ctx context.Context, st *store.Store, fx Fixture) error {
	return st.Update(ctx, func(w *store.Writer) error {
		for _, p := range fx.Projects {
			if err := w.InsertProject(ctx, model.Project{Key: p.Key, Name: p.Name}); err != nil {
				return fmt.Errorf("project %s: %w", p.Key, err)
			}
		}

		for _, r := range fx.Recipients {
			if err := w.InsertRecipient(ctx, model.Recipient{ID: r.ID, Name: r.Name, Address: r.Address}); err != nil {
				return fmt.Errorf("recipient %s: %w", r.ID, err)
			}
		}

		for _, inv := range fx.Invoices {
			row, err := inv.model()
			if err != nil {
				return err
			}
			if err := w.InsertInvoice(ctx, row); err != nil {
				return fmt.Errorf("invoice %d: %w", inv.Number, err)
			}
		}

		for _, a := range fx.Activities {
			err := w.InsertActivity(ctx, model.Activity{
				Number:        a.Number,
				InvoiceNumber: a.Invoice,
				Description:   a.Description,
				UnitPrice:     a.UnitPrice,
			})
			if err != nil {
				return fmt.Errorf("activity %d: %w", a.Number, err)
			}
		}

		for i, ft := range fx.Times {
			entry, tickets, err := ft.model()
			if err != nil {
				return fmt.Errorf("time %d: %w", i+1, err)
			}
			id, err := w.InsertTime(ctx, entry)
			if err != nil {
				return fmt.Errorf("time %d: %w", i+1, err)
			}
			if err := w.AttachTickets(ctx, id, tickets); err != nil {
				return fmt.Errorf("time %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (fi FixtureInvoice) model() (model.Invoice, error) {
	month, err := model.ParseMonth(fi.Month)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %d: %w", fi.Number, err)
	}
	inv := model.Invoice{Number: fi.Number, Month: month, RecipientID: fi.Recipient}
	if fi.Created != "" {
		created, err := model.ParseDate(fi.Created)
		if err != nil {
			return model.Invoice{}, fmt.Errorf("invoice %d: %w", fi.Number, err)
		}
		inv.Created = &created
	}
	return inv, nil
}

func (ft FixtureTime) model() (model.TimeEntry, []model.Ticket, error) {
	start, err := time.Parse(fixtureTimeLayout, ft.Start)
	if err != nil {
		return model.TimeEntry{}, nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := time.Parse(fixtureTimeLayout, ft.End)
	if err != nil {
		return model.TimeEntry{}, nil, fmt.Errorf("parse end: %w", err)
	}

	tickets := make([]model.Ticket, len(ft.Tickets))
	for i, s := range ft.Tickets {
		if tickets[i], err = model.ParseTicket(s); err != nil {
			return model.TimeEntry{}, nil, err
		}
	}

	return model.TimeEntry{
		Start:       start,
		End:         end,
		Description: ft.Description,
		Duration:    ft.Duration,
		ActivityID:  ft.Activity,
	}, tickets, nil
}

// NewStore opens a store in a temporary directory, closed on cleanup.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "invoicer.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// MustSeed seeds fx into st or fails the test.
func MustSeed(t testing.TB, st *store.Store, fx Fixture) {
	t.Helper()
	if err := Seed(context.Background(), st, fx); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
}

// Float returns a pointer to v, for optional fixture fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for optional fixture fields.
func Int(v int64) *int64 { return &v }

// StandardFixture is a small ledger used across package tests:
//   - invoice 1 (2024-05, acme) with activities 5, 1 and 3 inserted in that order
//   - activity 1 has entries of 2.5h, unpriced and 1h with tickets OPS-2, OPS-1 / OPS-1 / WEB-7
//   - activity 3 has no entries, activity 5 has one 0.5h entry
//   - invoice 2 (2024-06, globex) with activity 2 and one 4h entry
//   - one unbilled entry on 2024-05-20
func StandardFixture() Fixture {
	return Fixture{
		Projects: []FixtureProject{
			{Key: "OPS", Name: "Operations"},
			{Key: "WEB", Name: "Website"},
		},
		Recipients: []FixtureRecipient{
			{ID: "acme", Name: "Acme Ltd", Address: `1 Road\nTown`},
			{ID: "globex", Name: "Globex", Address: "Cypress Creek"},
		},
		Invoices: []FixtureInvoice{
			{Number: 1, Month: "2024-05", Recipient: "acme"},
			{Number: 2, Month: "2024-06", Recipient: "globex", Created: "2024-07-01"},
		},
		Activities: []FixtureActivity{
			{Number: 5, Invoice: 1, Description: "Support", UnitPrice: 80},
			{Number: 1, Invoice: 1, Description: "Platform work", UnitPrice: 120},
			{Number: 3, Invoice: 1, Description: "Idle", UnitPrice: 50},
			{Number: 2, Invoice: 2, Description: "Audit", UnitPrice: 100},
		},
		Times: []FixtureTime{
			{Start: "2024-05-01 09:00", End: "2024-05-01 11:30", Description: "Pipeline", Duration: Float(2.5), Activity: Int(1), Tickets: []string{"OPS-2", "OPS-1"}},
			{Start: "2024-05-02 09:00", End: "2024-05-02 10:00", Description: "Pairing", Activity: Int(1), Tickets: []string{"OPS-1"}},
			{Start: "2024-05-03 09:00", End: "2024-05-03 10:00", Description: "Landing page", Duration: Float(1), Activity: Int(1), Tickets: []string{"WEB-7"}},
			{Start: "2024-05-01 08:00", End: "2024-05-01 08:30", Description: "Triage", Duration: Float(0.5), Activity: Int(5)},
			{Start: "2024-06-10 09:00", End: "2024-06-10 13:00", Description: "Review", Duration: Float(4), Activity: Int(2)},
			{Start: "2024-05-20 14:00", End: "2024-05-20 15:00", Description: "Unbilled call", Duration: Float(1)},
		},
	}
}
