package flow

import (
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/HR0620/airteller/internal/audio"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordBackend struct {
	mu     sync.Mutex
	voices []string
	ses    []string
}

func (b *recordBackend) PlayVoice(key, lang string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.voices = append(b.voices, key)
}

func (b *recordBackend) PlaySE(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ses = append(b.ses, key)
}

// recState records lifecycle calls into a shared log.
type recState struct {
	id   StateID
	name string
	log  *[]string
}

func (s *recState) ID() StateID        { return s.id }
func (s *recState) OnEnter(prev State) { *s.log = append(*s.log, "enter:"+s.name) }
func (s *recState) OnExit()            { *s.log = append(*s.log, "exit:"+s.name) }
func (s *recState) Update(t *Tick)     {}

func (s *recState) clickHandler() func(zone string) {
	return func(zone string) { *s.log = append(*s.log, "click:"+s.name) }
}

func newTestEnv(clock *fakeClock) (*Env, *recordBackend) {
	backend := &recordBackend{}
	env := &Env{
		Audio:  audio.NewPlayer(backend, 0),
		Ctx:    &TransactionContext{},
		PinPad: NewPinPad(),
		UI:     NullUI{},
		Now:    clock.now,
	}
	return env, backend
}

// testMachine builds a machine whose states are all recorders, so
// lifecycle ordering can be asserted.
func testMachine(env *Env, log *[]string) *Machine {
	seq := 0
	m := &Machine{env: env}
	m.build = func(*Env) map[StateID]func() State {
		mk := func(id StateID) func() State {
			return func() State {
				seq++
				name := id.String()
				if id == StateLanguage {
					name = name + string(rune('0' + seq))
				}
				return &recState{id: id, name: name, log: log}
			}
		}
		return map[StateID]func() State{
			StateMenu:         mk(StateMenu),
			StateConfirmation: mk(StateConfirmation),
			StateLanguage:     mk(StateLanguage),
		}
	}
	env.machine = m
	m.current = m.newState(StateMenu)
	return m
}

func TestChangeStateDrainsModalsFirst(t *testing.T) {
	env, _ := newTestEnv(newFakeClock())
	var log []string
	m := testMachine(env, &log)
	m.Start()

	m.PushModal(StateLanguage)
	m.PushModal(StateLanguage)
	log = log[:0]

	m.ChangeState(StateConfirmation)

	want := []string{"exit:Language3", "exit:Language2", "exit:Menu", "enter:Confirmation"}
	if len(log) != len(want) {
		t.Fatalf("lifecycle log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestCurrentStateNameExcludesModals(t *testing.T) {
	env, _ := newTestEnv(newFakeClock())
	var log []string
	m := testMachine(env, &log)
	m.Start()

	if got := m.CurrentStateName(); got != "Menu" {
		t.Fatalf("CurrentStateName = %q, want Menu", got)
	}

	m.PushModal(StateLanguage)
	if got := m.CurrentStateName(); got != "Menu" {
		t.Errorf("CurrentStateName with modal = %q, want Menu", got)
	}
	if m.Active().ID() != StateLanguage {
		t.Errorf("Active = %v, want Language", m.Active().ID())
	}

	m.PopModal()
	if m.Active().ID() != StateMenu {
		t.Errorf("Active after pop = %v, want Menu", m.Active().ID())
	}
}

func TestPopModalRebindsParentClickHandler(t *testing.T) {
	env, _ := newTestEnv(newFakeClock())
	var log []string

	var bound func(zone string)
	env.UI = clickRecorderUI{set: func(fn func(zone string)) { bound = fn }}

	m := testMachine(env, &log)
	m.Start()

	m.PushModal(StateLanguage)
	m.PopModal()

	if bound == nil {
		t.Fatal("click handler not re-bound after pop")
	}
	bound("left")

	found := false
	for _, entry := range log {
		if entry == "click:Menu" {
			found = true
		}
	}
	if !found {
		t.Errorf("re-bound handler did not route to parent, log = %v", log)
	}
}

type clickRecorderUI struct {
	set func(fn func(zone string))
}

func (u clickRecorderUI) Render(frame *gocv.Mat, view View)     {}
func (u clickRecorderUI) SetClickHandler(fn func(zone string))  { u.set(fn) }
func (u clickRecorderUI) ShowGuidance(key string, isError bool) {}

func TestAudioPolicyEdgeTriggered(t *testing.T) {
	clock := newFakeClock()
	env, backend := newTestEnv(clock)
	m := NewMachine(env, StateMenu, nil)
	m.Start()

	for i := 0; i < 3; i++ {
		m.Update(&Tick{})
	}
	m.ChangeState(StateConfirmation)
	m.Update(&Tick{})
	m.Update(&Tick{})
	m.ChangeState(StateMenu)
	m.Update(&Tick{})

	want := []string{"push-button", "check-screen", "push-button"}
	if len(backend.voices) != len(want) {
		t.Fatalf("voices = %v, want %v", backend.voices, want)
	}
	for i := range want {
		if backend.voices[i] != want[i] {
			t.Errorf("voices[%d] = %q, want %q", i, backend.voices[i], want[i])
		}
	}
}

func TestChangeStateRunsTransitionHook(t *testing.T) {
	clock := newFakeClock()
	env, _ := newTestEnv(clock)

	resets := 0
	m := NewMachine(env, StateMenu, func() { resets++ })
	m.Start()

	m.ChangeState(StateConfirmation)
	if resets == 0 {
		t.Error("transition hook not invoked on ChangeState")
	}
}
