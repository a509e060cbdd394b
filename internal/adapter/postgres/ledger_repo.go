package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
)

// LedgerRepo implements ledger persistence on DB.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo wraps a DB as a LedgerRepository.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

const ledgerColumns = "id, user_id, calories, subject, registration_date"

// Save inserts e or overwrites the entry with the same ID.
func (r *LedgerRepo) Save(ctx context.Context, e domain.LedgerEntry) (*domain.LedgerEntry, error) {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO ledger (`+ledgerColumns+`) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET calories = EXCLUDED.calories, subject = EXCLUDED.subject, registration_date = EXCLUDED.registration_date`,
		e.ID, e.UserID, e.Calories, e.Subject, e.RegistrationDate.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByID retrieves an entry by ID.
func (r *LedgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT "+ledgerColumns+" FROM ledger WHERE id = $1", id,
	).Scan(&e.ID, &e.UserID, &e.Calories, &e.Subject, &e.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByUserID lists a user's entries, newest first.
func (r *LedgerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.query(ctx, "SELECT "+ledgerColumns+" FROM ledger WHERE user_id = $1 ORDER BY registration_date DESC", userID)
}

// FindAll lists every entry, newest first.
func (r *LedgerRepo) FindAll(ctx context.Context) ([]domain.LedgerEntry, error) {
	return r.query(ctx, "SELECT "+ledgerColumns+" FROM ledger ORDER BY registration_date DESC")
}

// FindByDateRange lists entries registered within [from, to].
func (r *LedgerRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	return r.query(ctx,
		"SELECT "+ledgerColumns+" FROM ledger WHERE registration_date BETWEEN $1 AND $2 ORDER BY registration_date DESC",
		from.UTC(), to.UTC())
}

func (r *LedgerRepo) query(ctx context.Context, q string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Calories, &e.Subject, &e.RegistrationDate); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteByID removes an entry by ID.
func (r *LedgerRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM ledger WHERE id = $1", id)
	return err
}
