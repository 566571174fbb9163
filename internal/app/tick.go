package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/HR0620/airteller/internal/flow"
	"github.com/HR0620/airteller/internal/monitor"
	"github.com/HR0620/airteller/internal/track"
)

// absenceIgnored lists the states during which absence judgement is
// suspended: the user is expected to be repositioning or already being
// warned.
var absenceIgnored = map[flow.StateID]bool{
	flow.StateFaceAlignment:  true,
	flow.StateAbsenceWarning: true,
}

// tick runs one orchestration cycle and returns the delay before the
// next one.
func (a *App) tick() time.Duration {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil || frame == nil {
		// Capture miss is transient; retry shortly.
		return frameRetry
	}
	defer frame.Close()

	// Mirror the frame so on-screen motion matches the user's own.
	gocv.Flip(*frame, frame, 1)

	a.config.Engine.Submit(frame)
	res := a.config.Engine.Latest()

	stateID := a.config.Machine.CurrentStateID()

	if !absenceIgnored[stateID] && a.config.Supervisor.CheckAbsence(res) {
		a.config.Machine.ChangeState(flow.StateAbsenceWarning)
		if a.config.Hub != nil {
			a.config.Hub.Publish(monitor.Snapshot{
				State:      a.config.Machine.CurrentStateName(),
				Persons:    res.PersonCount,
				Suspicious: true,
			})
		}
		return TickInterval
	}

	trackRes := a.config.Stabilizer.Update(res)

	confidence := 0.5
	if trackRes.IsStable {
		confidence = 1.0
	}
	zone, confirmed := a.config.Validator.Validate(track.Prediction{
		Class:      trackRes.Position,
		Confidence: confidence,
	})

	zone, confirmed = a.config.Supervisor.GateGesture(zone, confirmed, trackRes)

	var key *flow.KeyEvent
	select {
	case ev := <-a.keyCh:
		key = &ev
	default:
	}

	a.config.Machine.Update(&flow.Tick{
		Frame:     frame,
		Gesture:   zone,
		Confirmed: confirmed,
		Key:       key,
		Progress:  trackRes.Progress,
		Zone:      trackRes.Position,
	})

	a.publish(res.PersonCount, trackRes)
	a.publishFrame(frame)
	return TickInterval
}

// publish pushes a telemetry snapshot when a hub is wired.
func (a *App) publish(persons int, trackRes track.Result) {
	if a.config.Hub == nil {
		return
	}
	a.config.Hub.Publish(monitor.Snapshot{
		State:     a.config.Machine.CurrentStateName(),
		Zone:      string(trackRes.Position),
		Candidate: string(trackRes.Debug.Candidate),
		Progress:  trackRes.Progress,
		Stable:    trackRes.IsStable,
		Locked:    a.config.Validator.IsLocked(),
		Persons:   persons,
	})
}

// publishFrame hands the mirrored frame to the preview stream as JPEG.
// Encoding only happens while an operator is actually watching.
func (a *App) publishFrame(frame *gocv.Mat) {
	if a.config.Hub == nil || !a.config.Hub.HasViewers() {
		return
	}
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return
	}
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	buf.Close()
	a.config.Hub.PublishFrame(data)
}
