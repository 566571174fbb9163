package flow

import (
	"time"

	"github.com/HR0620/airteller/internal/audio"
)

// resultState shows the transaction outcome and returns to the menu
// after a countdown. A freshly created account gets a longer display so
// the user can note the number.
type resultState struct {
	env       *Env
	countdown deadline
}

func newResultState(env *Env) *resultState {
	return &resultState{env: env}
}

func (s *resultState) ID() StateID { return StateResult }

func (s *resultState) OnEnter(prev State) {
	ctx := s.env.Ctx
	if ctx.IsError {
		s.env.Audio.PlaySE(audio.SEAssert)
	}

	hold := 5 * time.Second
	if ctx.AccountCreated {
		hold = 10 * time.Second
	}
	s.countdown.arm(s.env.now(), hold)
}

func (s *resultState) OnExit() {
	s.countdown.cancel()
}

func (s *resultState) Update(t *Tick) {
	now := s.env.now()
	if s.countdown.expired(now) {
		s.env.changeState(StateMenu)
		return
	}

	ctx := s.env.Ctx
	msg := ctx.ResultMessage
	if msg == "" {
		msg = "msg.complete"
	}

	s.env.UI.Render(t.Frame, View{
		Mode:          "result",
		Header:        "btn.confirm",
		Message:       msg,
		MessageParams: ctx.ResultParams,
		IsError:       ctx.IsError,
		Countdown:     s.countdown.remaining(now),
	})
}
