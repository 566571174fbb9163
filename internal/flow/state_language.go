package flow

import (
	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/track"
)

// supportedLanguages lists the selectable UI languages in display
// order.
var supportedLanguages = []string{"JP", "EN"}

// languageModal overlays a language picker on top of whatever screen is
// active. It never replaces the current state; closing it returns to
// the parent untouched.
type languageModal struct {
	env      *Env
	selected int
}

func newLanguageModal(env *Env) *languageModal {
	return &languageModal{env: env}
}

func (s *languageModal) ID() StateID { return StateLanguage }

func (s *languageModal) OnEnter(prev State) {
	s.selected = 0
	current := s.env.Audio.Language()
	for i, lang := range supportedLanguages {
		if lang == current {
			s.selected = i
			break
		}
	}

	s.env.Audio.PlayVoice("check-screen")
	s.env.UI.SetClickHandler(s.clickHandler())
}

func (s *languageModal) OnExit() {
	s.env.UI.SetClickHandler(nil)
}

func (s *languageModal) clickHandler() func(zone string) {
	return func(zone string) {
		switch track.Zone(zone) {
		case track.ZoneLeft:
			s.env.Audio.PlaySE(audio.SEButton)
			s.confirm()
		case track.ZoneRight:
			s.env.Audio.PlaySE(audio.SEBack)
			s.env.popModal()
		}
	}
}

func (s *languageModal) move(delta int) {
	n := len(supportedLanguages)
	s.selected = (s.selected + delta%n + n) % n
	s.env.Audio.PlaySE(audio.SEPushKey)
}

func (s *languageModal) confirm() {
	lang := supportedLanguages[s.selected]
	s.env.Audio.SetLanguage(lang)
	if s.env.OnLanguage != nil {
		s.env.OnLanguage(lang)
	}
	s.env.Audio.PlayVoice("welcome")
	s.env.popModal()
}

func (s *languageModal) Update(t *Tick) {
	s.env.UI.Render(t.Frame, View{
		Mode:    "language_modal",
		Header:  "ui.select_language",
		Langs:   supportedLanguages,
		LangIdx: s.selected,
		Guides: map[string]string{
			"left":  "btn.lang_confirm",
			"right": "btn.lang_back",
		},
		Progress: t.Progress,
		Zone:     t.Zone,
	})

	if t.Confirmed {
		switch t.Gesture {
		case track.ZoneLeft:
			s.env.Audio.PlaySE(audio.SEButton)
			s.confirm()
		case track.ZoneRight:
			s.env.Audio.PlaySE(audio.SEBack)
			s.env.popModal()
		}
		return
	}

	if t.Key == nil {
		return
	}
	switch t.Key.Sym {
	case "Left", "Up":
		s.move(-1)
	case "Right", "Down":
		s.move(1)
	case "Return":
		s.env.Audio.PlaySE(audio.SEButton)
		s.confirm()
	case "Escape":
		s.env.Audio.PlaySE(audio.SEBack)
		s.env.popModal()
	}
}
