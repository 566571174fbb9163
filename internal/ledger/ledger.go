// Package ledger provides the SQLite account store for the kiosk: keyed
// account records with salted PIN hashes, a trial-count lockout, and an
// append-only transaction journal. Every mutation persists immediately;
// the store is the single source of truth for balances.
package ledger

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// VerifyPIN info codes for failed verification.
const (
	// InfoFrozen means the account is (now) frozen.
	InfoFrozen = -1
	// InfoUnknownAccount means no such account exists.
	InfoUnknownAccount = -2
)

// Config holds the ledger security parameters.
type Config struct {
	// PINSalt is prepended to PINs before hashing.
	PINSalt string
	// MaxTrials is how many failed PIN attempts freeze an account.
	MaxTrials int
	// MaxAmount caps a single withdrawal or deposit.
	MaxAmount int64
}

// DefaultConfig returns the production security parameters.
func DefaultConfig() Config {
	return Config{
		PINSalt:   "default_salt",
		MaxTrials: 3,
		MaxAmount: 999999,
	}
}

// Store is the SQLite-backed account ledger.
type Store struct {
	db     *sql.DB
	config Config
	path   string
}

// New opens (creating if necessary) the ledger database at the given path
// and runs migrations.
func New(dbPath string, config Config) (*Store, error) {
	if config.MaxTrials <= 0 {
		config.MaxTrials = DefaultConfig().MaxTrials
	}
	if config.MaxAmount <= 0 {
		config.MaxAmount = DefaultConfig().MaxAmount
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{
		db:     db,
		config: config,
		path:   dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}
