package audio

import (
	"testing"
	"time"
)

// recordBackend captures playback calls for assertions.
type recordBackend struct {
	voices []string
	langs  []string
	ses    []string
}

func (b *recordBackend) PlayVoice(key, lang string) {
	b.voices = append(b.voices, key)
	b.langs = append(b.langs, lang)
}

func (b *recordBackend) PlaySE(key string) {
	b.ses = append(b.ses, key)
}

func TestPlayer_SECooldown(t *testing.T) {
	backend := &recordBackend{}
	p := NewPlayer(backend, 100*time.Millisecond)

	current := time.Unix(1000, 0)
	p.now = func() time.Time { return current }

	p.PlaySE(SEBeep)
	p.PlaySE(SEBeep) // inside cooldown, dropped
	current = current.Add(50 * time.Millisecond)
	p.PlaySE(SEButton) // still inside, dropped
	current = current.Add(60 * time.Millisecond)
	p.PlaySE(SEButton) // cooldown elapsed

	if len(backend.ses) != 2 {
		t.Fatalf("expected 2 effects after rate limiting, got %d: %v", len(backend.ses), backend.ses)
	}
	if backend.ses[0] != SEBeep || backend.ses[1] != SEButton {
		t.Errorf("unexpected effect sequence: %v", backend.ses)
	}
}

func TestPlayer_VoiceUsesActiveLanguage(t *testing.T) {
	backend := &recordBackend{}
	p := NewPlayer(backend, 0)

	p.PlayVoice("welcome")
	p.SetLanguage("EN")
	p.PlayVoice("come-again")

	if len(backend.voices) != 2 {
		t.Fatalf("expected 2 voice plays, got %d", len(backend.voices))
	}
	if backend.langs[0] != "JP" || backend.langs[1] != "EN" {
		t.Errorf("unexpected languages: %v", backend.langs)
	}
}
