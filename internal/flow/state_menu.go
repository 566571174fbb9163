package flow

import (
	"time"

	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/track"
)

const menuIdleTimeout = 10 * time.Second

// menuState is the main menu. Entering it resets the transaction
// context, so every flow starts clean.
type menuState struct {
	env  *Env
	idle deadline
}

func newMenuState(env *Env) *menuState {
	return &menuState{env: env}
}

func (s *menuState) ID() StateID { return StateMenu }

func (s *menuState) OnEnter(prev State) {
	s.env.Ctx.Reset()
	if s.env.OnMenu != nil {
		s.env.OnMenu()
	}
	s.env.UI.SetClickHandler(s.clickHandler())
	s.idle.arm(s.env.now(), menuIdleTimeout)
}

func (s *menuState) OnExit() {
	s.env.UI.SetClickHandler(nil)
	s.idle.cancel()
}

func (s *menuState) clickHandler() func(zone string) {
	return func(zone string) {
		s.idle.arm(s.env.now(), menuIdleTimeout)
		s.handleSelection(track.Zone(zone))
	}
}

func (s *menuState) handleSelection(zone track.Zone) {
	switch zone {
	case track.ZoneLeft:
		s.env.Audio.PlaySE(audio.SEButton)
		s.env.Ctx.Reset()
		s.env.Ctx.Transaction = TxnTransfer
		s.env.changeState(StateTransferTargetInput)
	case track.ZoneCenter:
		s.env.Audio.PlaySE(audio.SEButton)
		s.env.Ctx.Reset()
		s.env.Ctx.Transaction = TxnWithdraw
		s.env.changeState(StateWithdrawAccountInput)
	case track.ZoneRight:
		s.env.Audio.PlaySE(audio.SEButton)
		s.env.Ctx.Reset()
		s.env.Ctx.Transaction = TxnCreateAccount
		s.env.changeState(StateCreateAccountNameInput)
	default:
		s.env.Audio.PlaySE(audio.SEBeep)
	}
}

func (s *menuState) Update(t *Tick) {
	now := s.env.now()
	if s.idle.expired(now) {
		// Idle with nobody interacting; keep the screen alive.
		s.idle.arm(now, menuIdleTimeout)
	}

	if t.Key != nil {
		if t.Key.Char == 'l' {
			s.env.pushModal(StateLanguage)
			return
		}
		s.env.Audio.PlaySE(audio.SEBeep)
	}

	s.env.UI.Render(t.Frame, View{
		Mode:   "menu",
		Header: "ui.main_menu",
		Buttons: []Button{
			{Zone: "left", Label: "btn.transfer"},
			{Zone: "center", Label: "btn.withdraw"},
			{Zone: "right", Label: "btn.create_account"},
		},
		Progress: t.Progress,
		Zone:     t.Zone,
	})

	if t.Confirmed {
		s.idle.arm(now, menuIdleTimeout)
		s.handleSelection(t.Gesture)
	}
}
