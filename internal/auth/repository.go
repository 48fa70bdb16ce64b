// Package auth authenticates the site administrator and issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrAccountNotFound is returned when no admin account matches an email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrNoAdmins is returned at startup when nobody could ever sign in.
	ErrNoAdmins = errors.New("no admin accounts: set ADMIN_EMAIL and ADMIN_PASSWORD_HASH")
)

// Account is an administrator allowed to sign in.
type Account struct {
	Email        string
	PasswordHash string // bcrypt
}

// Directory looks up admin accounts by email.
type Directory interface {
	Lookup(ctx context.Context, email string) (*Account, error)
}

// StaticDirectory holds a single account from configuration.
type StaticDirectory struct {
	account Account
}

// NewStaticDirectory creates a directory with one admin account.
func NewStaticDirectory(email, passwordHash string) *StaticDirectory {
	return &StaticDirectory{account: Account{Email: normalizeEmail(email), PasswordHash: passwordHash}}
}

// Lookup returns the configured account when email matches.
func (d *StaticDirectory) Lookup(_ context.Context, email string) (*Account, error) {
	if d.account.PasswordHash == "" || normalizeEmail(email) != d.account.Email {
		return nil, ErrAccountNotFound
	}
	a := d.account
	return &a, nil
}

// Repository reads admin accounts from the admins table.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Lookup fetches an account by email.
func (r *Repository) Lookup(ctx context.Context, email string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRow(ctx,
		`SELECT email, password_hash FROM admins WHERE email = $1`,
		normalizeEmail(email),
	).Scan(&a.Email, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return a, nil
}

// Upsert creates or replaces an admin account.
func (r *Repository) Upsert(ctx context.Context, email, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admins (email, password_hash) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		normalizeEmail(email), passwordHash,
	)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

// Count returns the number of admin accounts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// AccountStore is a Directory that can also be written.
type AccountStore interface {
	Directory
	Upsert(ctx context.Context, email, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

// Bootstrap seeds the configured admin into store when a password hash is
// given, then checks that at least one account can sign in.
func Bootstrap(ctx context.Context, store AccountStore, email, passwordHash string) error {
	if passwordHash != "" {
		if strings.TrimSpace(email) == "" {
			return fmt.Errorf("%w: ADMIN_EMAIL is empty", ErrNoAdmins)
		}
		if err := store.Upsert(ctx, email, passwordHash); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoAdmins
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
