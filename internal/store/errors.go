package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when an update targets a row that doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrForeignKey is returned when a write references a missing parent row.
	ErrForeignKey = errors.New("referenced record does not exist")

	// ErrDuplicate is returned when a write collides with an existing key.
	ErrDuplicate = errors.New("record already exists")
)

// classify maps SQLite constraint failures to the package sentinels,
// keeping the driver error in the chain.
func classify(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w: %w", op, ErrForeignKey, err)
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
