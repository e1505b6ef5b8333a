package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/invoicer/internal/model"
)

// Writer modifies records inside one transaction. It embeds Reader so a
// command can read back what it is about to change.
type Writer struct {
	Reader
}

func (w *Writer) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	slog.Debug("exec", "op", op, "params", len(args))
	res, err := w.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// InsertProject creates a ticket project.
func (w *Writer) InsertProject(ctx context.Context, p model.Project) error {
	_, err := w.exec(ctx, "insert project", `
		INSERT INTO project (proj_key, proj_name) VALUES (?, ?)
	`, p.Key, p.Name)
	return err
}

// InsertRecipient creates an invoice recipient.
func (w *Writer) InsertRecipient(ctx context.Context, r model.Recipient) error {
	_, err := w.exec(ctx, "insert recipient", `
		INSERT INTO recipient (recip_id, recip_name, recip_addr) VALUES (?, ?, ?)
	`, r.ID, r.Name, r.Address)
	return err
}

// InsertInvoice creates an invoice. The recipient must exist.
func (w *Writer) InsertInvoice(ctx context.Context, inv model.Invoice) error {
	var created any
	if inv.Created != nil {
		created = inv.Created.String()
	}
	_, err := w.exec(ctx, "insert invoice", `
		INSERT INTO invoice (inv_num, inv_month, recip_id, inv_created) VALUES (?, ?, ?, ?)
	`, inv.Number, inv.Month.FirstDate().String(), inv.RecipientID, created)
	return err
}

// SetInvoiceCreated records the date an invoice was issued.
func (w *Writer) SetInvoiceCreated(ctx context.Context, number int64, created model.Date) error {
	n, err := w.exec(ctx, "set invoice created", `
		UPDATE invoice SET inv_created = ? WHERE inv_num = ?
	`, created.String(), number)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("invoice %d: %w", number, ErrNotFound)
	}
	return nil
}

// InsertActivity creates an invoice activity. The invoice must exist.
func (w *Writer) InsertActivity(ctx context.Context, a model.Activity) error {
	_, err := w.exec(ctx, "insert activity", `
		INSERT INTO invoice_activity (act_num, inv_num, act_desc, act_uprice) VALUES (?, ?, ?, ?)
	`, a.Number, a.InvoiceNumber, a.Description, a.UnitPrice)
	return err
}

// InsertTime logs a time entry and returns its id. t.ID is ignored.
func (w *Writer) InsertTime(ctx context.Context, t model.TimeEntry) (int64, error) {
	res, err := w.tx.ExecContext(ctx, `
		INSERT INTO time (time_start, time_end, time_desc, time_dur, act_num) VALUES (?, ?, ?, ?, ?)
	`, timeArgs(t)...)
	if err != nil {
		return 0, classify("insert time", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert time: %w", err)
	}
	return id, nil
}

// AmendTime overwrites every column of an existing time entry.
func (w *Writer) AmendTime(ctx context.Context, t model.TimeEntry) error {
	args := append(timeArgs(t), t.ID)
	n, err := w.exec(ctx, "amend time", `
		UPDATE time SET time_start = ?, time_end = ?, time_desc = ?, time_dur = ?, act_num = ?
		WHERE time_id = ?
	`, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("time %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// AttachTickets associates tickets with a time entry. Missing ticket rows are
// created; their project must exist. Re-attaching a ticket is a no-op.
func (w *Writer) AttachTickets(ctx context.Context, timeID int64, tickets []model.Ticket) error {
	for _, tk := range tickets {
		if _, err := w.exec(ctx, "insert ticket", `
			INSERT INTO ticket (proj_key, tick_num) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, tk.ProjectKey, tk.Number); err != nil {
			return fmt.Errorf("ticket %s: %w", tk, err)
		}

		if _, err := w.exec(ctx, "attach ticket", `
			INSERT INTO ticket_time (proj_key, tick_num, time_id) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`, tk.ProjectKey, tk.Number, timeID); err != nil {
			return fmt.Errorf("ticket %s: %w", tk, err)
		}
	}
	return nil
}

func timeArgs(t model.TimeEntry) []any {
	var duration, activity any
	if t.Duration != nil {
		duration = *t.Duration
	}
	if t.ActivityID != nil {
		activity = *t.ActivityID
	}
	return []any{
		t.Start.Format(model.TimestampLayout),
		t.End.Format(model.TimestampLayout),
		t.Description,
		duration,
		activity,
	}
}
