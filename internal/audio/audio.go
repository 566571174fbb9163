// Package audio fronts the kiosk's sound output: localized voice guidance
// and short sound effects. Asset resolution and playback devices live
// behind the Backend interface; this package owns the rate limiting.
package audio

import (
	"sync"
	"time"
)

// Backend performs the actual playback. Implementations must not block
// the caller.
type Backend interface {
	// PlayVoice starts a localized voice clip, interrupting any voice
	// already playing.
	PlayVoice(key, lang string)
	// PlaySE fires a sound effect on a free channel.
	PlaySE(key string)
}

// NullBackend discards all playback, for headless runs and tests.
type NullBackend struct{}

func (NullBackend) PlayVoice(key, lang string) {}
func (NullBackend) PlaySE(key string)          {}

// Common sound effect keys.
const (
	SEButton    = "button"
	SEPushKey   = "touch-button"
	SEBeep      = "beep"
	SEBack      = "back"
	SECancel    = "cancel"
	SEAssert    = "assert"
	SEIncorrect = "incorrect"
)

// Player rate-limits sound effects and tracks the active language for
// voice playback. Voice clips always play (interrupting the previous
// one); effects are debounced so a jittering input cannot machine-gun
// the speaker.
type Player struct {
	backend  Backend
	cooldown time.Duration

	mu         sync.Mutex
	lang       string
	lastSE     string
	lastSETime time.Time

	now func() time.Time
}

// NewPlayer creates a Player over the given backend. cooldown is the
// minimum spacing between sound effects.
func NewPlayer(backend Backend, cooldown time.Duration) *Player {
	return &Player{
		backend:  backend,
		cooldown: cooldown,
		lang:     "JP",
		now:      time.Now,
	}
}

// SetLanguage switches the voice language.
func (p *Player) SetLanguage(lang string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = lang
}

// Language returns the active voice language.
func (p *Player) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

// PlayVoice plays a localized voice clip, interrupting any playing voice.
func (p *Player) PlayVoice(key string) {
	p.mu.Lock()
	lang := p.lang
	p.mu.Unlock()
	p.backend.PlayVoice(key, lang)
}

// PlaySE fires a sound effect unless one played within the cooldown.
func (p *Player) PlaySE(key string) {
	p.mu.Lock()
	now := p.now()
	if now.Sub(p.lastSETime) < p.cooldown {
		p.mu.Unlock()
		return
	}
	p.lastSE = key
	p.lastSETime = now
	p.mu.Unlock()

	p.backend.PlaySE(key)
}
