package flow

// TxnKind names the transaction being assembled.
type TxnKind string

const (
	TxnNone          TxnKind = ""
	TxnWithdraw      TxnKind = "withdraw"
	TxnTransfer      TxnKind = "transfer"
	TxnCreateAccount TxnKind = "create_account"
)

// PinMode tells the audio policy which PIN prompt is on screen.
type PinMode string

const (
	PinModeNormal  PinMode = "normal"
	PinModeAuth    PinMode = "auth"
	PinModeCreate1 PinMode = "create_1"
	PinModeCreate2 PinMode = "create_2"
	PinModeRetry   PinMode = "retry"
)

// TransactionContext carries the data the screens accumulate while a
// transaction is assembled. It is owned by the session and passed into
// every state through Env; Menu resets it on entry.
type TransactionContext struct {
	Transaction TxnKind

	AccountNumber string
	TargetAccount string
	AccountName   string
	Amount        int64

	PIN      string
	FirstPIN string
	PinStep  int
	PinMode  PinMode

	AccountCreated bool
	IsError        bool
	ResultMessage  string
	ResultParams   map[string]any
}

// Reset clears everything for a fresh transaction.
func (c *TransactionContext) Reset() {
	c.Transaction = TxnNone
	c.AccountNumber = ""
	c.TargetAccount = ""
	c.AccountName = ""
	c.Amount = 0
	c.PIN = ""
	c.FirstPIN = ""
	c.PinStep = 1
	c.PinMode = PinModeNormal
	c.AccountCreated = false
	c.IsError = false
	c.ResultMessage = ""
	c.ResultParams = nil
}

// fail stamps the context with an error outcome for the result screen.
func (c *TransactionContext) fail(messageKey string) {
	c.IsError = true
	c.ResultMessage = messageKey
}
