package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "airteller-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := New(filepath.Join(tmpDir, "test.db"), Config{
		PINSalt:   "test_salt",
		MaxTrials: 3,
		MaxAmount: 999999,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestCreateAccountAndLookup(t *testing.T) {
	s := newTestStore(t)

	number, err := s.CreateAccount("Taro Demo", "2580", 1000)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if len(number) != 6 {
		t.Errorf("expected a 6-digit account number, got %q", number)
	}

	name, ok := s.GetName(number)
	if !ok || name != "Taro Demo" {
		t.Errorf("expected name lookup to return Taro Demo, got %q ok=%v", name, ok)
	}

	balance, err := s.GetBalance(number)
	if err != nil || balance != 1000 {
		t.Errorf("expected initial balance 1000, got %d err=%v", balance, err)
	}

	if _, ok := s.GetName("000000"); ok {
		t.Error("unknown account should not resolve a name")
	}
}

func TestVerifyPIN_TrialLockout(t *testing.T) {
	s := newTestStore(t)

	number, err := s.CreateAccount("Taro Demo", "2580", 1000)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	// Two wrong attempts count down the remaining trials.
	if ok, info := s.VerifyPIN(number, "0000"); ok || info != 2 {
		t.Errorf("first failure: expected 2 remaining, got ok=%v info=%d", ok, info)
	}
	if ok, info := s.VerifyPIN(number, "0000"); ok || info != 1 {
		t.Errorf("second failure: expected 1 remaining, got ok=%v info=%d", ok, info)
	}

	// The third failure freezes the account.
	if ok, info := s.VerifyPIN(number, "0000"); ok || info != InfoFrozen {
		t.Errorf("third failure: expected frozen, got ok=%v info=%d", ok, info)
	}
	if !s.IsFrozen(number) {
		t.Error("account should be frozen after exhausting trials")
	}

	// Even the correct PIN is rejected once frozen.
	if ok, info := s.VerifyPIN(number, "2580"); ok || info != InfoFrozen {
		t.Errorf("frozen account accepted a PIN: ok=%v info=%d", ok, info)
	}
}

func TestVerifyPIN_SuccessResetsTrials(t *testing.T) {
	s := newTestStore(t)

	number, _ := s.CreateAccount("Taro Demo", "2580", 1000)

	s.VerifyPIN(number, "0000")
	s.VerifyPIN(number, "0000")

	if ok, _ := s.VerifyPIN(number, "2580"); !ok {
		t.Fatal("correct PIN rejected")
	}

	// The counter restarted, so two more failures still leave one trial.
	s.VerifyPIN(number, "0000")
	if ok, info := s.VerifyPIN(number, "0000"); ok || info != 1 {
		t.Errorf("expected 1 remaining after reset, got ok=%v info=%d", ok, info)
	}
}

func TestVerifyPIN_UnknownAccount(t *testing.T) {
	s := newTestStore(t)

	if ok, info := s.VerifyPIN("999999", "1234"); ok || info != InfoUnknownAccount {
		t.Errorf("expected unknown-account code, got ok=%v info=%d", ok, info)
	}
}

func TestWithdraw(t *testing.T) {
	s := newTestStore(t)
	number, _ := s.CreateAccount("Taro Demo", "2580", 1000)

	if ok, msg := s.Withdraw(number, 400); !ok {
		t.Fatalf("withdraw failed: %s", msg)
	}
	if balance, _ := s.GetBalance(number); balance != 600 {
		t.Errorf("expected balance 600, got %d", balance)
	}

	// Business-rule failures come back as codes, not errors.
	if ok, msg := s.Withdraw(number, 5000); ok || msg != "error.balance.insufficient" {
		t.Errorf("expected insufficient balance, got ok=%v msg=%s", ok, msg)
	}
	if ok, msg := s.Withdraw(number, 0); ok || msg != "error.amount.invalid" {
		t.Errorf("expected invalid amount, got ok=%v msg=%s", ok, msg)
	}
	if ok, msg := s.Withdraw(number, 10000000); ok || msg != "error.amount.limit" {
		t.Errorf("expected amount limit, got ok=%v msg=%s", ok, msg)
	}
	if ok, msg := s.Withdraw("999999", 100); ok || msg != "error.account.invalid" {
		t.Errorf("expected unknown account, got ok=%v msg=%s", ok, msg)
	}
}

func TestDeposit(t *testing.T) {
	s := newTestStore(t)
	number, _ := s.CreateAccount("Taro Demo", "2580", 1000)

	if ok, msg := s.Deposit(number, 250); !ok {
		t.Fatalf("deposit failed: %s", msg)
	}
	if balance, _ := s.GetBalance(number); balance != 1250 {
		t.Errorf("expected balance 1250, got %d", balance)
	}

	if ok, msg := s.Deposit("999999", 100); ok || msg != "error.account.invalid" {
		t.Errorf("expected unknown account, got ok=%v msg=%s", ok, msg)
	}
}

func TestJournalRecordsMutations(t *testing.T) {
	s := newTestStore(t)
	number, _ := s.CreateAccount("Taro Demo", "2580", 1000)

	s.Withdraw(number, 100)
	s.Deposit(number, 50)

	var count int
	if err := s.DB().QueryRow(
		`SELECT COUNT(*) FROM journal WHERE account = ?`, number,
	).Scan(&count); err != nil {
		t.Fatalf("query journal: %v", err)
	}

	// open + withdraw + deposit
	if count != 3 {
		t.Errorf("expected 3 journal entries, got %d", count)
	}
}
