package flow

import (
	"time"

	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/track"
)

const absenceTimeout = 10 * time.Second

// absenceWarningState interrupts a session when the supervisor reports
// the user gone. Center resumes where they left off, left restarts from
// face alignment, right abandons to the menu; doing nothing times out
// to the menu. Every exit path starts the supervisor's grace period so
// the warning does not immediately re-fire.
type absenceWarningState struct {
	env     *Env
	prevID  StateID
	hasPrev bool
	timeout deadline
}

func newAbsenceWarningState(env *Env) *absenceWarningState {
	return &absenceWarningState{env: env}
}

func (s *absenceWarningState) ID() StateID { return StateAbsenceWarning }

func (s *absenceWarningState) OnEnter(prev State) {
	if prev != nil && prev.ID() != StateAbsenceWarning {
		s.prevID = prev.ID()
		s.hasPrev = true
	}
	s.env.Audio.PlaySE(audio.SEBeep)
	s.timeout.arm(s.env.now(), absenceTimeout)
	s.env.UI.SetClickHandler(s.clickHandler())
}

func (s *absenceWarningState) OnExit() {
	s.env.UI.SetClickHandler(nil)
	s.timeout.cancel()
}

func (s *absenceWarningState) clickHandler() func(zone string) {
	return func(zone string) {
		s.handleSelection(track.Zone(zone))
	}
}

func (s *absenceWarningState) grace() {
	if s.env.OnResume != nil {
		s.env.OnResume()
	}
}

func (s *absenceWarningState) handleSelection(zone track.Zone) {
	switch zone {
	case track.ZoneLeft:
		s.env.Audio.PlaySE(audio.SEButton)
		s.grace()
		s.env.changeState(StateFaceAlignment)
	case track.ZoneRight:
		s.env.Audio.PlaySE(audio.SEBack)
		s.grace()
		s.env.changeState(StateMenu)
	case track.ZoneCenter:
		s.resume()
	default:
		s.env.Audio.PlaySE(audio.SEBeep)
	}
}

func (s *absenceWarningState) resume() {
	s.env.Audio.PlaySE(audio.SEButton)
	s.grace()
	if s.hasPrev {
		s.env.changeState(s.prevID)
		return
	}
	s.env.changeState(StateMenu)
}

func (s *absenceWarningState) Update(t *Tick) {
	now := s.env.now()
	if s.timeout.expired(now) {
		s.env.changeState(StateMenu)
		return
	}

	s.env.UI.Render(t.Frame, View{
		Mode:      "absence_warning",
		Header:    "btn.confirm",
		Message:   "msg.absent_warning",
		Countdown: s.timeout.remaining(now),
		Guides:    map[string]string{"center": "btn.resume"},
		Progress:  t.Progress,
		Zone:      t.Zone,
	})

	enter := t.Key != nil && t.Key.Sym == "Return"
	if (t.Confirmed && t.Gesture == track.ZoneCenter) || enter {
		s.resume()
		return
	}
	if t.Confirmed {
		s.handleSelection(t.Gesture)
	}
}
