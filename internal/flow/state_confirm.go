package flow

import (
	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/track"
)

// initialBalance is granted to every newly opened account.
const initialBalance = 1000

// confirmationState shows the assembled transaction and executes it on
// a left confirmation.
type confirmationState struct {
	env *Env
}

func newConfirmationState(env *Env) *confirmationState {
	return &confirmationState{env: env}
}

func (s *confirmationState) ID() StateID { return StateConfirmation }

func (s *confirmationState) OnEnter(prev State) {
	s.env.UI.SetClickHandler(s.clickHandler())
}

func (s *confirmationState) OnExit() {
	s.env.UI.SetClickHandler(nil)
}

func (s *confirmationState) clickHandler() func(zone string) {
	return func(zone string) {
		switch track.Zone(zone) {
		case track.ZoneLeft:
			s.env.Audio.PlaySE(audio.SEButton)
			s.execute()
		case track.ZoneRight:
			s.env.Audio.PlaySE(audio.SECancel)
			s.env.changeState(StateMenu)
		default:
			s.env.Audio.PlaySE(audio.SEBeep)
		}
	}
}

func (s *confirmationState) Update(t *Tick) {
	ctx := s.env.Ctx

	msg := "confirm.general"
	var params map[string]any
	switch ctx.Transaction {
	case TxnTransfer:
		msg = "confirm.transfer"
		params = map[string]any{"target": ctx.TargetAccount, "amount": ctx.Amount}
	case TxnWithdraw:
		msg = "confirm.withdraw"
		params = map[string]any{"amount": ctx.Amount}
	case TxnCreateAccount:
		msg = "confirm.create_account"
		params = map[string]any{"name": ctx.AccountName}
	}

	s.env.UI.Render(t.Frame, View{
		Mode:          "confirm",
		Header:        "confirm.title",
		Message:       msg,
		MessageParams: params,
		Progress:      t.Progress,
		Zone:          t.Zone,
	})

	enter := t.Key != nil && t.Key.Sym == "Return"

	if (t.Confirmed && t.Gesture == track.ZoneLeft) || enter {
		s.env.Audio.PlaySE(audio.SEButton)
		s.execute()
		return
	}

	if t.Confirmed && t.Gesture == track.ZoneRight {
		s.env.Audio.PlaySE(audio.SEBack)
		s.env.changeState(StateMenu)
		return
	}

	if t.Confirmed && t.Gesture == track.ZoneCenter {
		s.env.UI.ShowGuidance("guidance.confirm_choice", false)
	}
}

func (s *confirmationState) execute() {
	ctx := s.env.Ctx

	switch ctx.Transaction {
	case TxnTransfer:
		ok, msg := s.env.Ledger.Deposit(ctx.TargetAccount, ctx.Amount)
		ctx.ResultMessage = msg
		ctx.IsError = !ok

	case TxnWithdraw:
		ok, msg := s.env.Ledger.Withdraw(ctx.AccountNumber, ctx.Amount)
		ctx.ResultMessage = msg
		ctx.IsError = !ok

	case TxnCreateAccount:
		number, err := s.env.Ledger.CreateAccount(ctx.AccountName, ctx.PIN, initialBalance)
		if err != nil {
			ctx.fail("error.system")
			break
		}
		ctx.ResultMessage = "msg.account_created"
		ctx.ResultParams = map[string]any{"account_number": number}
		ctx.AccountCreated = true

	default:
		s.env.changeState(StateMenu)
		return
	}

	s.env.changeState(StateResult)
}
