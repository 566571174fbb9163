package flow

import (
	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/ledger"
	"github.com/HR0620/airteller/internal/track"
)

// pinInputState collects a 4-digit PIN on the randomized pad. It serves
// two flows: authenticating a withdrawal, and the two-step PIN choice
// when creating an account.
type pinInputState struct {
	env *Env
	buf *InputBuffer

	message   string
	msgParams map[string]any
}

func newPinInputState(env *Env) *pinInputState {
	return &pinInputState{env: env}
}

func (s *pinInputState) ID() StateID { return StatePinInput }

func (s *pinInputState) OnEnter(prev State) {
	ctx := s.env.Ctx
	if ctx.Transaction == TxnNone {
		s.env.changeState(StateMenu)
		return
	}

	if ctx.PinStep == 0 {
		ctx.PinStep = 1
	}

	switch ctx.Transaction {
	case TxnCreateAccount:
		if ctx.PinStep == 2 {
			ctx.PinMode = PinModeCreate2
		} else {
			ctx.PinMode = PinModeCreate1
		}
	case TxnWithdraw:
		ctx.PinMode = PinModeAuth
	default:
		ctx.PinMode = PinModeNormal
	}

	s.env.PinPad.Reshuffle()
	s.buf = NewInputBuffer(4, true, true)
	s.message = s.prompt()
	s.msgParams = nil
	s.env.UI.SetClickHandler(s.clickHandler())
}

func (s *pinInputState) OnExit() {
	s.env.UI.SetClickHandler(nil)
}

func (s *pinInputState) prompt() string {
	ctx := s.env.Ctx
	if ctx.Transaction == TxnCreateAccount {
		if ctx.PinStep == 1 {
			return "input.pin.first"
		}
		return "input.pin.confirm"
	}
	return "input.pin.default"
}

func (s *pinInputState) clickHandler() func(zone string) {
	return func(zone string) {
		switch track.Zone(zone) {
		case track.ZoneRight:
			s.back()
		case track.ZoneLeft:
			s.confirm()
		}
	}
}

func (s *pinInputState) back() {
	s.env.Audio.PlaySE(audio.SEBack)
	s.env.changeState(StateMenu)
}

func (s *pinInputState) confirm() {
	if s.buf.Len() < 4 {
		s.env.UI.ShowGuidance("guidance.empty.pin", true)
		s.env.Audio.PlaySE(audio.SEBeep)
		return
	}
	s.env.Audio.PlaySE(audio.SEButton)
	s.pinEntered(s.buf.Value())
}

func (s *pinInputState) Update(t *Tick) {
	s.env.UI.Render(t.Frame, View{
		Mode:          "pin_input",
		Header:        "btn.confirm",
		Message:       s.message,
		MessageParams: s.msgParams,
		InputValue:    s.buf.Display(),
		InputMax:      4,
		Keypad:        s.env.PinPad.Layout(),
		Guides:        map[string]string{"left": "btn.next", "right": "btn.back"},
		Progress:      t.Progress,
		Zone:          t.Zone,
	})

	if t.Confirmed {
		switch t.Gesture {
		case track.ZoneLeft:
			s.confirm()
		case track.ZoneRight:
			s.back()
		}
		return
	}

	if t.Key != nil {
		s.handleKey(t.Key)
	}
}

func (s *pinInputState) handleKey(key *KeyEvent) {
	if digit, ok := s.env.PinPad.Digit(key.Char); ok {
		if s.buf.Add(digit) {
			s.env.Audio.PlaySE(audio.SEPushKey)
		} else {
			s.env.Audio.PlaySE(audio.SEBeep)
		}
		return
	}

	switch key.Sym {
	case "BackSpace":
		if s.buf.Backspace() {
			s.env.Audio.PlaySE(audio.SECancel)
		} else {
			s.env.Audio.PlaySE(audio.SEBeep)
		}
	case "Return":
		s.confirm()
	case "Escape":
		s.back()
	default:
		if key.Char != 0 {
			s.env.Audio.PlaySE(audio.SEBeep)
		}
	}
}

// retry clears the entry and reshuffles the pad for another attempt.
func (s *pinInputState) retry(message string, params map[string]any) {
	s.buf.Clear()
	s.env.PinPad.Reshuffle()
	s.env.Ctx.PinMode = PinModeRetry
	s.message = message
	s.msgParams = params
}

func (s *pinInputState) pinEntered(pin string) {
	ctx := s.env.Ctx

	switch ctx.Transaction {
	case TxnWithdraw:
		s.authWithdraw(pin)
	case TxnCreateAccount:
		s.chooseNewPIN(pin)
	default:
		ctx.PIN = pin
		s.env.changeState(StateConfirmation)
	}
}

func (s *pinInputState) authWithdraw(pin string) {
	ctx := s.env.Ctx
	ok, info := s.env.Ledger.VerifyPIN(ctx.AccountNumber, pin)
	if ok {
		ctx.PIN = pin
		s.env.changeState(StateAmountInput)
		return
	}

	switch {
	case info == ledger.InfoFrozen:
		s.env.Audio.PlaySE(audio.SEAssert)
		ctx.fail("error.pin.locked")
		s.env.changeState(StateResult)
	case info == ledger.InfoUnknownAccount:
		s.env.Audio.PlaySE(audio.SEAssert)
		ctx.fail("error.account.invalid")
		s.env.changeState(StateResult)
	case info <= 0:
		s.env.Audio.PlaySE(audio.SEAssert)
		ctx.fail("error.pin.locked")
		s.env.changeState(StateResult)
	default:
		s.retry("error.pin.incorrect", map[string]any{"remaining": info})
	}
}

func (s *pinInputState) chooseNewPIN(pin string) {
	ctx := s.env.Ctx

	if ctx.PinStep == 1 {
		if !SafePIN(pin) {
			s.env.Audio.PlaySE(audio.SEIncorrect)
			s.retry("error.pin.safety", nil)
			return
		}

		ctx.FirstPIN = pin
		ctx.PinStep = 2
		ctx.PinMode = PinModeCreate2
		s.buf.Clear()
		s.env.PinPad.Reshuffle()
		s.message = "input.pin.confirm"
		s.msgParams = nil
		return
	}

	if ctx.FirstPIN == pin {
		ctx.PIN = pin
		s.env.changeState(StateConfirmation)
		return
	}

	ctx.PinStep = 1
	s.env.Audio.PlaySE(audio.SEIncorrect)
	s.retry("error.pin.mismatch", nil)
}
