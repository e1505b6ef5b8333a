package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/invoicer/internal/model"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedInvoice creates recipient "acme" and invoice num for May 2024.
func seedInvoice(t *testing.T, s *Store, num int64) {
	t.Helper()
	err := s.Update(context.Background(), func(w *Writer) error {
		recips, err := w.LoadRecipients(context.Background(), nil)
		if err != nil {
			return err
		}
		if len(recips) == 0 {
			if err := w.InsertRecipient(context.Background(), model.Recipient{ID: "acme", Name: "Acme Ltd", Address: "1 Road\\nTown"}); err != nil {
				return err
			}
		}
		return w.InsertInvoice(context.Background(), model.Invoice{
			Number:      num,
			Month:       model.NewMonth(2024, time.May),
			RecipientID: "acme",
		})
	})
	require.NoError(t, err)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.May, day, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func recipient(id string) model.Recipient {
	return model.Recipient{ID: id, Name: "Recipient " + id, Address: "Somewhere"}
}
