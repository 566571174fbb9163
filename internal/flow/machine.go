// Package flow sequences the kiosk screens. A Machine owns one current
// state plus a LIFO stack of modal overlays; only the topmost entry
// receives per-tick updates. After every update the machine runs a
// declarative audio policy lookup and plays a voice cue when the
// effective key changes.
package flow

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/HR0620/airteller/internal/audio"
	"github.com/HR0620/airteller/internal/capture"
	"github.com/HR0620/airteller/internal/track"
)

// StateID identifies a screen. The set is closed; every screen the
// kiosk can show has an entry here and a builder in newState.
type StateID int

const (
	StateFaceAlignment StateID = iota
	StateMenu
	StateWithdrawAccountInput
	StateTransferTargetInput
	StateCreateAccountNameInput
	StateAmountInput
	StatePinInput
	StateConfirmation
	StateResult
	StateAbsenceWarning
	StateLanguage
)

var stateNames = map[StateID]string{
	StateFaceAlignment:          "FaceAlignment",
	StateMenu:                   "Menu",
	StateWithdrawAccountInput:   "WithdrawAccountInput",
	StateTransferTargetInput:    "TransferTargetInput",
	StateCreateAccountNameInput: "CreateAccountNameInput",
	StateAmountInput:            "AmountInput",
	StatePinInput:               "PinInput",
	StateConfirmation:           "Confirmation",
	StateResult:                 "Result",
	StateAbsenceWarning:         "AbsenceWarning",
	StateLanguage:               "Language",
}

func (id StateID) String() string {
	if name, ok := stateNames[id]; ok {
		return name
	}
	return "Unknown"
}

// KeyEvent is a keyboard event forwarded into the active state.
// Char is the printable character, if any; Sym names special keys
// ("BackSpace", "Return", "Escape").
type KeyEvent struct {
	Char rune
	Sym  string
}

// Tick carries everything the active state needs for one update cycle.
type Tick struct {
	Frame     *gocv.Mat
	Gesture   track.Zone
	Confirmed bool
	Key       *KeyEvent
	Progress  float64
	Zone      track.Zone
}

// State is one screen of the kiosk. OnEnter receives the state being
// left so the new state can branch on where it came from.
type State interface {
	ID() StateID
	OnEnter(prev State)
	OnExit()
	Update(t *Tick)
}

// clickable is implemented by states that accept pointer input. PopModal
// re-binds the handler of whichever state becomes active.
type clickable interface {
	clickHandler() func(zone string)
}

// Ledger is the account store contract the flow depends on. Business
// failures come back as message keys, never as errors.
type Ledger interface {
	GetName(number string) (string, bool)
	GetBalance(number string) (int64, error)
	VerifyPIN(number, pin string) (bool, int)
	Withdraw(number string, amount int64) (bool, string)
	Deposit(number string, amount int64) (bool, string)
	IsFrozen(number string) bool
	CreateAccount(name, pin string, initialBalance int64) (string, error)
}

// FaceGate is the alignment check consumed by the face screen.
type FaceGate interface {
	Process(frame *gocv.Mat) capture.FaceAlignResult
	// Reset clears any partial alignment hold, so re-entering the
	// alignment screen always requires a full fresh hold.
	Reset()
}

// Env bundles the collaborators every state receives. States hold no
// ambient controller reference; everything they touch comes through
// this struct.
type Env struct {
	Ledger Ledger
	Audio  *audio.Player
	UI     UI
	Ctx    *TransactionContext
	PinPad *PinPad
	Face   FaceGate

	// OnAligned fires once when face alignment confirms, before the
	// transition to the menu. The session layer seeds its presence
	// baseline here.
	OnAligned func()
	// OnResume fires when the absence warning screen hands control
	// back. The session layer starts its grace period here.
	OnResume func()
	// OnMenu fires whenever the menu screen is entered, marking the
	// start of a fresh session. The session layer clears its absence
	// counters and presence history here; the seeded baseline stays.
	OnMenu func()
	// OnLanguage applies a language change to collaborators outside
	// the audio player.
	OnLanguage func(lang string)

	Now func() time.Time

	machine *Machine
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Machine drives state transitions and the modal stack.
type Machine struct {
	env     *Env
	build   func(*Env) map[StateID]func() State
	current State
	modals  []State

	lastAudioKey string
	hasAudioKey  bool

	// onTransition runs on every ChangeState so the caller can reset
	// gesture accumulation that belongs to the previous screen.
	onTransition func()
}

// NewMachine creates a machine positioned on the initial state. Start
// must be called before the first Update.
func NewMachine(env *Env, initial StateID, onTransition func()) *Machine {
	if env.Ctx == nil {
		env.Ctx = &TransactionContext{}
	}
	if env.UI == nil {
		env.UI = NullUI{}
	}
	m := &Machine{
		env:          env,
		build:        stateBuilders,
		onTransition: onTransition,
	}
	env.machine = m
	m.current = m.newState(initial)
	return m
}

// changeState and friends give states transition access without holding
// the machine directly.
func (e *Env) changeState(next StateID) { e.machine.ChangeState(next) }
func (e *Env) pushModal(id StateID)     { e.machine.PushModal(id) }
func (e *Env) popModal()                { e.machine.PopModal() }

func (m *Machine) newState(id StateID) State {
	builders := m.build(m.env)
	builder, ok := builders[id]
	if !ok {
		log.Printf("flow: no builder for state %v, falling back to menu", id)
		builder = builders[StateMenu]
	}
	return builder()
}

// Start enters the initial state.
func (m *Machine) Start() {
	m.current.OnEnter(nil)
}

// ChangeState drains all modals, exits the current state, and enters
// the next one with the old state as prev.
func (m *Machine) ChangeState(next StateID) {
	for len(m.modals) > 0 {
		m.PopModal()
	}

	prev := m.current
	prev.OnExit()

	m.current = m.newState(next)
	log.Printf("flow: %v -> %v", prev.ID(), next)
	m.current.OnEnter(prev)

	if m.onTransition != nil {
		m.onTransition()
	}
}

// PushModal overlays a modal. The currently active state (topmost modal
// or the current state) is passed as prev for context propagation.
func (m *Machine) PushModal(id StateID) {
	prev := m.Active()
	modal := m.newState(id)
	m.modals = append(m.modals, modal)
	log.Printf("flow: push modal %v", id)
	modal.OnEnter(prev)
}

// PopModal removes the topmost modal and re-binds the click handler of
// whichever state is now active. The re-binding happens here, centrally,
// so no state can leave stale input routing behind after a modal closes.
func (m *Machine) PopModal() {
	if len(m.modals) == 0 {
		return
	}

	modal := m.modals[len(m.modals)-1]
	m.modals = m.modals[:len(m.modals)-1]
	log.Printf("flow: pop modal %v", modal.ID())
	modal.OnExit()

	if c, ok := m.Active().(clickable); ok {
		m.env.UI.SetClickHandler(c.clickHandler())
	} else {
		m.env.UI.SetClickHandler(nil)
	}
}

// Active returns the state that receives updates: the topmost modal, or
// the current state when the stack is empty.
func (m *Machine) Active() State {
	if n := len(m.modals); n > 0 {
		return m.modals[n-1]
	}
	return m.current
}

// CurrentStateName reports the non-modal state's name. Modals never
// change it.
func (m *Machine) CurrentStateName() string {
	return m.current.ID().String()
}

// CurrentStateID reports the non-modal state's identifier.
func (m *Machine) CurrentStateID() StateID {
	return m.current.ID()
}

// Update dispatches the tick to the active state, then runs the audio
// policy. A voice key plays exactly once per edge: it re-triggers only
// when the effective key changes, including changing back to a key that
// played earlier.
func (m *Machine) Update(t *Tick) {
	active := m.Active()
	active.Update(t)

	key, ok := audioKeyFor(active.ID(), m.env.Ctx)
	if !ok {
		m.hasAudioKey = false
		return
	}
	if !m.hasAudioKey || key != m.lastAudioKey {
		m.env.Audio.PlayVoice(key)
		m.lastAudioKey = key
		m.hasAudioKey = true
	}
}

// stateBuilders is the closed constructor table mapping every StateID to
// its screen.
func stateBuilders(env *Env) map[StateID]func() State {
	return map[StateID]func() State{
		StateFaceAlignment:          func() State { return newFaceAlignmentState(env) },
		StateMenu:                   func() State { return newMenuState(env) },
		StateWithdrawAccountInput:   func() State { return newWithdrawAccountInputState(env) },
		StateTransferTargetInput:    func() State { return newTransferTargetInputState(env) },
		StateCreateAccountNameInput: func() State { return newCreateAccountNameInputState(env) },
		StateAmountInput:            func() State { return newAmountInputState(env) },
		StatePinInput:               func() State { return newPinInputState(env) },
		StateConfirmation:           func() State { return newConfirmationState(env) },
		StateResult:                 func() State { return newResultState(env) },
		StateAbsenceWarning:         func() State { return newAbsenceWarningState(env) },
		StateLanguage:               func() State { return newLanguageModal(env) },
	}
}
