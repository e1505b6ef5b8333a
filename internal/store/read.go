package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/queryir"
	"github.com/roach88/invoicer/internal/querysql"
)

// Reader loads records inside one transaction.
type Reader struct {
	tx       *sql.Tx
	compiler *querysql.SQLCompiler
}

// rowScanner is satisfied by *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// query compiles q and runs it in the reader's transaction.
func (r *Reader) query(ctx context.Context, q queryir.Query) (*sql.Rows, error) {
	sqlText, params, err := r.compiler.Compile(q)
	if err != nil {
		return nil, err
	}
	slog.Debug("query", "sql", sqlText, "params", len(params))
	return r.tx.QueryContext(ctx, sqlText, params...)
}

// load runs q and scans every row with scan. Returns an empty slice (not nil)
// when nothing matches.
func load[T any](ctx context.Context, r *Reader, what string, q queryir.Query, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return out, nil
}

// LoadInvoices returns invoices matching filter, each paired with its
// recipient, ordered by invoice number. A nil filter loads every invoice.
func (r *Reader) LoadInvoices(ctx context.Context, filter queryir.Predicate) ([]model.InvoiceRecipient, error) {
	q := queryir.Join{
		Left:       queryir.Select{From: queryir.TableInvoice, Filter: filter},
		Right:      queryir.Select{From: queryir.TableRecipient},
		LeftField:  "recip_id",
		RightField: "recip_id",
	}
	return load(ctx, r, "invoices", q, scanInvoiceRecipient)
}

// LoadActivities returns activities matching filter, ordered by number.
func (r *Reader) LoadActivities(ctx context.Context, filter queryir.Predicate) ([]model.Activity, error) {
	return load(ctx, r, "activities", queryir.Select{From: queryir.TableActivity, Filter: filter}, scanActivity)
}

// LoadTimes returns time entries matching filter, ordered by start then id.
func (r *Reader) LoadTimes(ctx context.Context, filter queryir.Predicate) ([]model.TimeEntry, error) {
	return load(ctx, r, "times", queryir.Select{From: queryir.TableTime, Filter: filter}, scanTime)
}

// LoadProjects returns every project ordered by key.
func (r *Reader) LoadProjects(ctx context.Context) ([]model.Project, error) {
	return load(ctx, r, "projects", queryir.Select{From: queryir.TableProject}, scanProject)
}

// LoadRecipients returns recipients matching filter ordered by id.
func (r *Reader) LoadRecipients(ctx context.Context, filter queryir.Predicate) ([]model.Recipient, error) {
	return load(ctx, r, "recipients", queryir.Select{From: queryir.TableRecipient, Filter: filter}, scanRecipient)
}

// ActivitiesOf returns every activity billed on one of the invoices.
func (r *Reader) ActivitiesOf(ctx context.Context, invoices []model.Invoice) ([]model.Activity, error) {
	if len(invoices) == 0 {
		return []model.Activity{}, nil
	}
	keys := make([]int64, len(invoices))
	for i, inv := range invoices {
		keys[i] = inv.Number
	}
	return r.LoadActivities(ctx, queryir.In{Field: "inv_num", Values: queryir.Ints(keys)})
}

// TimesOf returns every time entry assigned to one of the activities.
func (r *Reader) TimesOf(ctx context.Context, activities []model.Activity) ([]model.TimeEntry, error) {
	if len(activities) == 0 {
		return []model.TimeEntry{}, nil
	}
	keys := make([]int64, len(activities))
	for i, act := range activities {
		keys[i] = act.Number
	}
	return r.LoadTimes(ctx, queryir.In{Field: "act_num", Values: queryir.Ints(keys)})
}

// TicketTimesOf returns the ticket associations of the time entries,
// in insertion order per entry.
func (r *Reader) TicketTimesOf(ctx context.Context, times []model.TimeEntry) ([]model.TicketTime, error) {
	if len(times) == 0 {
		return []model.TicketTime{}, nil
	}
	keys := make([]int64, len(times))
	for i, t := range times {
		keys[i] = t.ID
	}
	q := queryir.Select{
		From:   queryir.TableTicketTime,
		Filter: queryir.In{Field: "time_id", Values: queryir.Ints(keys)},
	}
	return load(ctx, r, "ticket times", q, scanTicketTime)
}

// TimeByID returns one time entry or ErrNotFound.
func (r *Reader) TimeByID(ctx context.Context, id int64) (model.TimeEntry, error) {
	times, err := r.LoadTimes(ctx, queryir.Equals{Field: "time_id", Value: queryir.Int(id)})
	if err != nil {
		return model.TimeEntry{}, err
	}
	if len(times) == 0 {
		return model.TimeEntry{}, fmt.Errorf("time %d: %w", id, ErrNotFound)
	}
	return times[0], nil
}

func scanInvoiceRecipient(row rowScanner) (model.InvoiceRecipient, error) {
	var (
		rec     model.InvoiceRecipient
		month   time.Time
		created sql.NullTime
	)
	err := row.Scan(
		&rec.Invoice.Number, &month, &created, &rec.Invoice.RecipientID,
		&rec.Recipient.ID, &rec.Recipient.Name, &rec.Recipient.Address,
	)
	if err != nil {
		return model.InvoiceRecipient{}, err
	}

	rec.Invoice.Month = model.MonthOf(month)
	if created.Valid {
		d := model.DateOf(created.Time)
		rec.Invoice.Created = &d
	}
	return rec, nil
}

func scanActivity(row rowScanner) (model.Activity, error) {
	var a model.Activity
	err := row.Scan(&a.Number, &a.InvoiceNumber, &a.Description, &a.UnitPrice)
	return a, err
}

func scanTime(row rowScanner) (model.TimeEntry, error) {
	var (
		t        model.TimeEntry
		duration sql.NullFloat64
		activity sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Start, &t.End, &t.Description, &duration, &activity); err != nil {
		return model.TimeEntry{}, err
	}

	if duration.Valid {
		t.Duration = &duration.Float64
	}
	if activity.Valid {
		t.ActivityID = &activity.Int64
	}
	return t, nil
}

func scanTicketTime(row rowScanner) (model.TicketTime, error) {
	var tt model.TicketTime
	err := row.Scan(&tt.ProjectKey, &tt.Number, &tt.TimeID)
	return tt, err
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.Key, &p.Name)
	return p, err
}

func scanRecipient(row rowScanner) (model.Recipient, error) {
	var r model.Recipient
	err := row.Scan(&r.ID, &r.Name, &r.Address)
	return r, err
}
