package flow

import (
	"strconv"

	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/track"
)

// inputParams parameterizes the shared input screen behavior.
type inputParams struct {
	max        int
	min        int
	digitOnly  bool
	alignRight bool
	header     string
	message    string
	unit       string
	emptyGuide string
}

// inputState is the common body of every text/number entry screen.
// Left confirms, right goes back to the menu, center shows guidance.
// Concrete screens set onComplete and may override the confirm step.
type inputState struct {
	env    *Env
	params inputParams
	buf    *InputBuffer

	message   string
	msgParams map[string]any

	onComplete func(value string)
	// onConfirm, when set, replaces the default length-check confirm.
	onConfirm func()
}

func (s *inputState) OnEnter(prev State) {
	s.buf = NewInputBuffer(s.params.max, false, s.params.digitOnly)
	s.message = ""
	s.msgParams = nil
	s.env.UI.SetClickHandler(s.clickHandler())
}

func (s *inputState) OnExit() {
	s.env.UI.SetClickHandler(nil)
}

func (s *inputState) clickHandler() func(zone string) {
	return func(zone string) {
		switch track.Zone(zone) {
		case track.ZoneRight:
			s.back()
		case track.ZoneLeft:
			s.confirm()
		}
	}
}

func (s *inputState) back() {
	s.env.Audio.PlaySE(audio.SEBack)
	s.env.changeState(StateMenu)
}

func (s *inputState) confirm() {
	if s.onConfirm != nil {
		s.onConfirm()
		return
	}
	val := s.buf.Value()
	if len(val) >= s.params.min {
		s.env.Audio.PlaySE(audio.SEButton)
		s.onComplete(val)
		return
	}
	s.env.UI.ShowGuidance(s.params.emptyGuide, true)
	s.env.Audio.PlaySE(audio.SEBeep)
}

func (s *inputState) Update(t *Tick) {
	msg := s.message
	if msg == "" {
		msg = s.params.message
	}

	s.env.UI.Render(t.Frame, View{
		Mode:          "input",
		Header:        s.params.header,
		Message:       msg,
		MessageParams: s.msgParams,
		InputValue:    s.buf.Display(),
		InputMax:      s.params.max,
		InputUnit:     s.params.unit,
		AlignRight:    s.params.alignRight,
		Guides:        map[string]string{"left": "btn.next", "right": "btn.back"},
		Progress:      t.Progress,
		Zone:          t.Zone,
	})

	if t.Confirmed {
		switch t.Gesture {
		case track.ZoneRight:
			s.back()
		case track.ZoneLeft:
			s.confirm()
		case track.ZoneCenter:
			s.env.UI.ShowGuidance("guidance.select_action", false)
		}
		return
	}

	if t.Key != nil {
		s.handleKey(t.Key)
	}
}

func (s *inputState) handleKey(key *KeyEvent) {
	switch key.Sym {
	case "BackSpace":
		if s.buf.Backspace() {
			s.env.Audio.PlaySE(audio.SECancel)
		} else {
			s.env.Audio.PlaySE(audio.SEBeep)
		}
		return
	case "Return":
		s.confirm()
		return
	case "Escape":
		s.back()
		return
	}

	if key.Char == 0 || key.Char == ' ' {
		return
	}
	if s.buf.Add(key.Char) {
		s.env.Audio.PlaySE(audio.SEPushKey)
	} else {
		s.env.Audio.PlaySE(audio.SEBeep)
	}
}

// withdrawAccountInputState asks for the user's own 6-digit account
// number and validates existence and freeze status before the amount
// screen.
type withdrawAccountInputState struct {
	inputState
}

func newWithdrawAccountInputState(env *Env) *withdrawAccountInputState {
	s := &withdrawAccountInputState{inputState: inputState{
		env: env,
		params: inputParams{
			max:        6,
			min:        6,
			digitOnly:  true,
			header:     "btn.withdraw",
			message:    "input.account.self",
			emptyGuide: "guidance.empty.account",
		},
	}}
	s.onComplete = s.accountEntered
	return s
}

func (s *withdrawAccountInputState) ID() StateID { return StateWithdrawAccountInput }

func (s *withdrawAccountInputState) accountEntered(value string) {
	if _, ok := s.env.Ledger.GetName(value); !ok {
		s.env.Audio.PlaySE(audio.SEAssert)
		s.env.Ctx.fail("error.account.invalid")
		s.env.changeState(StateResult)
		return
	}

	if s.env.Ledger.IsFrozen(value) {
		s.env.Audio.PlaySE(audio.SEAssert)
		s.env.Ctx.fail("error.account.frozen")
		s.env.changeState(StateResult)
		return
	}

	s.env.Ctx.AccountNumber = value
	s.env.changeState(StatePinInput)
}

// transferTargetInputState asks for the recipient's account number.
type transferTargetInputState struct {
	inputState
}

func newTransferTargetInputState(env *Env) *transferTargetInputState {
	s := &transferTargetInputState{inputState: inputState{
		env: env,
		params: inputParams{
			max:        6,
			min:        6,
			digitOnly:  true,
			header:     "btn.transfer",
			message:    "input.account.target",
			emptyGuide: "guidance.empty.account",
		},
	}}
	s.onComplete = s.targetEntered
	return s
}

func (s *transferTargetInputState) ID() StateID { return StateTransferTargetInput }

func (s *transferTargetInputState) targetEntered(value string) {
	if _, ok := s.env.Ledger.GetName(value); !ok {
		s.env.Audio.PlaySE(audio.SEAssert)
		s.env.Ctx.fail("error.account.invalid")
		s.env.changeState(StateResult)
		return
	}

	s.env.Ctx.TargetAccount = value
	s.env.changeState(StateAmountInput)
}

// createAccountNameInputState asks for the new account holder's name.
type createAccountNameInputState struct {
	inputState
}

func newCreateAccountNameInputState(env *Env) *createAccountNameInputState {
	s := &createAccountNameInputState{inputState: inputState{
		env: env,
		params: inputParams{
			max:        10,
			min:        1,
			digitOnly:  false,
			header:     "btn.create_account",
			message:    "input.name",
			emptyGuide: "guidance.empty.name",
		},
	}}
	s.onComplete = s.nameEntered
	return s
}

func (s *createAccountNameInputState) ID() StateID { return StateCreateAccountNameInput }

func (s *createAccountNameInputState) nameEntered(value string) {
	s.env.Ctx.AccountName = value
	s.env.Ctx.PinStep = 1
	s.env.changeState(StatePinInput)
}

// amountInputState asks for the amount. For withdrawals the message
// carries the current balance.
type amountInputState struct {
	inputState
}

func newAmountInputState(env *Env) *amountInputState {
	s := &amountInputState{inputState: inputState{
		env: env,
		params: inputParams{
			max:        7,
			min:        1,
			digitOnly:  true,
			alignRight: true,
			header:     "btn.amount",
			message:    "input.amount",
			unit:       "unit.currency",
			emptyGuide: "guidance.empty.amount",
		},
	}}
	s.onConfirm = s.confirmAmount
	return s
}

func (s *amountInputState) ID() StateID { return StateAmountInput }

func (s *amountInputState) OnEnter(prev State) {
	s.inputState.OnEnter(prev)

	ctx := s.env.Ctx
	if ctx.Transaction == TxnNone {
		s.env.changeState(StateMenu)
		return
	}

	if ctx.Transaction == TxnWithdraw {
		s.message = "input.amount.balance"
		if balance, err := s.env.Ledger.GetBalance(ctx.AccountNumber); err == nil {
			s.msgParams = map[string]any{"balance": balance}
		}
	} else {
		s.message = "input.amount.transfer"
	}
}

func (s *amountInputState) confirmAmount() {
	raw := s.buf.Value()
	if raw == "" {
		s.env.Audio.PlaySE(audio.SEBeep)
		return
	}

	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount <= 0 {
		s.env.Audio.PlaySE(audio.SEBeep)
		return
	}

	s.env.Audio.PlaySE(audio.SEButton)
	s.env.Ctx.Amount = amount
	s.env.changeState(StateConfirmation)
}
