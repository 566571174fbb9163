package ledger

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("account not found")

// Account represents one stored account record.
type Account struct {
	Number  string
	Name    string
	Balance int64
	Trials  int
	Frozen  bool
}

// hashPIN returns the salted SHA-256 digest of a PIN.
func (s *Store) hashPIN(pin string) string {
	sum := sha256.Sum256([]byte(s.config.PINSalt + pin))
	return hex.EncodeToString(sum[:])
}

// GetName returns the account holder's name, or ok=false for an unknown
// account.
func (s *Store) GetName(number string) (string, bool) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM accounts WHERE number = ?`, number).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// GetBalance returns the current balance, or ErrNotFound.
func (s *Store) GetBalance(number string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(`SELECT balance FROM accounts WHERE number = ?`, number).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// IsFrozen reports whether the account is locked out. Unknown accounts
// report false; callers check existence separately.
func (s *Store) IsFrozen(number string) bool {
	var frozen bool
	if err := s.db.QueryRow(`SELECT frozen FROM accounts WHERE number = ?`, number).Scan(&frozen); err != nil {
		return false
	}
	return frozen
}

// VerifyPIN checks a PIN attempt against the stored hash. On success the
// trial counter resets and info is 0. On failure info is the number of
// remaining attempts, InfoFrozen when the account is (or just became)
// frozen, or InfoUnknownAccount.
func (s *Store) VerifyPIN(number, pin string) (bool, int) {
	var hash string
	var trials int
	var frozen bool

	err := s.db.QueryRow(
		`SELECT pin_hash, trials, frozen FROM accounts WHERE number = ?`, number,
	).Scan(&hash, &trials, &frozen)
	if errors.Is(err, sql.ErrNoRows) {
		return false, InfoUnknownAccount
	}
	if err != nil {
		return false, InfoUnknownAccount
	}

	if frozen {
		return false, InfoFrozen
	}

	if hash == s.hashPIN(pin) {
		s.db.Exec(`UPDATE accounts SET trials = 0, updated_at = CURRENT_TIMESTAMP WHERE number = ?`, number)
		return true, 0
	}

	trials++
	remaining := s.config.MaxTrials - trials
	if remaining <= 0 {
		s.db.Exec(`UPDATE accounts SET trials = ?, frozen = 1, updated_at = CURRENT_TIMESTAMP WHERE number = ?`, trials, number)
		return false, InfoFrozen
	}

	s.db.Exec(`UPDATE accounts SET trials = ?, updated_at = CURRENT_TIMESTAMP WHERE number = ?`, trials, number)
	return false, remaining
}

// Withdraw removes amount from the account inside one transaction.
// Business failures come back as (false, code) where code is a message
// key, never as an error.
func (s *Store) Withdraw(number string, amount int64) (bool, string) {
	if amount <= 0 {
		return false, "error.amount.invalid"
	}
	if amount > s.config.MaxAmount {
		return false, "error.amount.limit"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, "error.store"
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRow(`SELECT balance FROM accounts WHERE number = ?`, number).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "error.account.invalid"
	}
	if err != nil {
		return false, "error.store"
	}

	if balance < amount {
		return false, "error.balance.insufficient"
	}

	if _, err := tx.Exec(
		`UPDATE accounts SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP WHERE number = ?`,
		amount, number,
	); err != nil {
		return false, "error.store"
	}

	if err := journal(tx, number, "withdraw", amount); err != nil {
		return false, "error.store"
	}

	if err := tx.Commit(); err != nil {
		return false, "error.store"
	}
	return true, "msg.withdraw_complete"
}

// Deposit adds amount to the account (also used for incoming transfers).
func (s *Store) Deposit(number string, amount int64) (bool, string) {
	if amount <= 0 {
		return false, "error.amount.invalid"
	}
	if amount > s.config.MaxAmount {
		return false, "error.amount.limit"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, "error.store"
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE accounts SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE number = ?`,
		amount, number,
	)
	if err != nil {
		return false, "error.store"
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, "error.account.invalid"
	}

	if err := journal(tx, number, "deposit", amount); err != nil {
		return false, "error.store"
	}

	if err := tx.Commit(); err != nil {
		return false, "error.store"
	}
	return true, "msg.deposit_complete"
}

// CreateAccount stores a new account under a fresh random 6-digit number
// and returns that number.
func (s *Store) CreateAccount(name, pin string, initialBalance int64) (string, error) {
	hash := s.hashPIN(pin)

	// Random 6-digit numbers collide rarely; bound the retry loop anyway.
	for attempt := 0; attempt < 1000; attempt++ {
		number := fmt.Sprintf("%06d", 100000+rand.Intn(900000))

		tx, err := s.db.Begin()
		if err != nil {
			return "", err
		}

		_, err = tx.Exec(
			`INSERT INTO accounts (number, name, pin_hash, balance) VALUES (?, ?, ?, ?)`,
			number, name, hash, initialBalance,
		)
		if err != nil {
			tx.Rollback()
			continue // likely a number collision; retry
		}

		if err := journal(tx, number, "open", initialBalance); err != nil {
			tx.Rollback()
			return "", err
		}

		if err := tx.Commit(); err != nil {
			return "", err
		}
		return number, nil
	}

	return "", errors.New("failed to allocate an account number")
}

// journal appends one balance mutation record inside the caller's
// transaction.
func journal(tx *sql.Tx, account, kind string, amount int64) error {
	_, err := tx.Exec(
		`INSERT INTO journal (id, account, kind, amount) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), account, kind, amount,
	)
	return err
}
