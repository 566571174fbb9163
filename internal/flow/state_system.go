package flow

import (
	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/capture"
)

// faceAlignmentState holds the kiosk on a guide-box screen until the
// user's face sits inside the box long enough. Confirmation seeds the
// session presence baseline before the menu opens.
type faceAlignmentState struct {
	env *Env
}

func newFaceAlignmentState(env *Env) *faceAlignmentState {
	return &faceAlignmentState{env: env}
}

func (s *faceAlignmentState) ID() StateID { return StateFaceAlignment }

func (s *faceAlignmentState) OnEnter(prev State) {
	if s.env.Face != nil {
		s.env.Face.Reset()
	}
}

func (s *faceAlignmentState) OnExit() {}

func (s *faceAlignmentState) Update(t *Tick) {
	if s.env.Face == nil {
		s.env.changeState(StateMenu)
		return
	}

	res := s.env.Face.Process(t.Frame)

	s.env.UI.Render(t.Frame, View{
		Mode:   "face_align",
		Header: "msg.face.align",
		Face:   &res,
	})

	if t.Key != nil {
		s.env.Audio.PlaySE(audio.SEBeep)
	}

	if res.Status == capture.FaceConfirmed {
		if s.env.OnAligned != nil {
			s.env.OnAligned()
		}
		s.env.Audio.PlaySE(audio.SEButton)
		s.env.changeState(StateMenu)
	}
}
