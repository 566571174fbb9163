package flow

// audioKeyFor maps the active state and transaction context to a voice
// key. Purely declarative: no side effects, no UI knowledge. Returning
// ok=false means no voice should play for this state.
func audioKeyFor(id StateID, ctx *TransactionContext) (string, bool) {
	switch id {
	case StateFaceAlignment:
		return "welcome", true
	case StateMenu:
		return "push-button", true
	case StateConfirmation:
		return "check-screen", true
	case StateWithdrawAccountInput:
		return "withdrawl-account", true
	case StateTransferTargetInput:
		return "recipient-account", true
	case StateCreateAccountNameInput:
		return "enter-name", true
	case StateAmountInput:
		return "pay-money", true
	case StatePinInput:
		switch ctx.PinMode {
		case PinModeCreate1, PinModeCreate2:
			return "enter-new-pin", true
		case PinModeRetry:
			return "retry-pin", true
		}
		return "enter-pin", true
	case StateResult:
		if ctx.AccountCreated {
			return "create-account", true
		}
		return "come-again", true
	}
	return "", false
}
