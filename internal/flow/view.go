package flow

import (
	"gocv.io/x/gocv"

	"github.com/HR0620/airteller/internal/capture"
	"github.com/HR0620/airteller/internal/track"
)

// Button is one selectable zone on a menu screen.
type Button struct {
	Zone  string
	Label string
}

// View is the declarative render payload a state hands to the UI each
// tick. The UI decides layout; states only say what to show.
type View struct {
	Mode          string
	Header        string
	Message       string
	MessageParams map[string]any

	Buttons []Button
	Guides  map[string]string

	InputValue string
	InputMax   int
	InputUnit  string
	AlignRight bool

	Keypad [][]PinKey

	Countdown int
	IsError   bool

	Face    *capture.FaceAlignResult
	Langs   []string
	LangIdx int

	Progress float64
	Zone     track.Zone
}

// UI is the rendering surface. The pipeline never draws; it describes.
type UI interface {
	Render(frame *gocv.Mat, view View)
	SetClickHandler(fn func(zone string))
	ShowGuidance(key string, isError bool)
}

// NullUI discards everything. Used headless and in tests.
type NullUI struct{}

func (NullUI) Render(frame *gocv.Mat, view View)     {}
func (NullUI) SetClickHandler(fn func(zone string))  {}
func (NullUI) ShowGuidance(key string, isError bool) {}
