package ledger

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Accounts table - one row per account, PINs stored as salted hashes
		`CREATE TABLE IF NOT EXISTS accounts (
			number TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pin_hash TEXT NOT NULL,
			balance INTEGER NOT NULL DEFAULT 0,
			trials INTEGER NOT NULL DEFAULT 0,
			frozen INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Journal table - append-only record of every balance mutation
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			account TEXT NOT NULL REFERENCES accounts(number) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('withdraw', 'deposit', 'open')),
			amount INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_journal_account ON journal(account)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
