package flow

import "testing"

func TestInputBufferLimitsAndMask(t *testing.T) {
	b := NewInputBuffer(4, true, true)

	for _, ch := range "1234" {
		if !b.Add(ch) {
			t.Fatalf("Add(%c) rejected", ch)
		}
	}
	if b.Add('5') {
		t.Error("Add beyond max accepted")
	}
	if b.Value() != "1234" {
		t.Errorf("Value = %q", b.Value())
	}
	if b.Display() != "****" {
		t.Errorf("Display = %q, want masked", b.Display())
	}

	if !b.Backspace() {
		t.Error("Backspace on non-empty failed")
	}
	if b.Value() != "123" {
		t.Errorf("Value after backspace = %q", b.Value())
	}

	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len after clear = %d", b.Len())
	}
	if b.Backspace() {
		t.Error("Backspace on empty succeeded")
	}
}

func TestInputBufferDigitFilter(t *testing.T) {
	b := NewInputBuffer(6, false, true)
	if b.Add('a') {
		t.Error("digit-only buffer accepted a letter")
	}

	name := NewInputBuffer(10, false, false)
	if !name.Add('T') || !name.Add('七') {
		t.Error("free-form buffer rejected printable input")
	}
	if name.Add('\n') {
		t.Error("free-form buffer accepted a control character")
	}
}

func TestPinPadMappingIsPermutation(t *testing.T) {
	p := NewPinPad()

	seen := map[rune]bool{}
	for _, key := range pinPadKeys {
		d, ok := p.Digit(key)
		if !ok {
			t.Fatalf("key %c unmapped", key)
		}
		if d < '0' || d > '9' {
			t.Fatalf("key %c mapped to %q", key, d)
		}
		if seen[d] {
			t.Fatalf("digit %c assigned twice", d)
		}
		seen[d] = true
	}
	if len(seen) != 10 {
		t.Errorf("mapping covers %d digits, want 10", len(seen))
	}

	if _, ok := p.Digit('x'); ok {
		t.Error("unmapped key resolved")
	}
}

func TestPinPadReshuffleChangesAssignment(t *testing.T) {
	p := NewPinPad()

	// With 10! possible assignments, 20 reshuffles virtually never all
	// match the starting one.
	before := make(map[rune]rune)
	for _, key := range pinPadKeys {
		before[key], _ = p.Digit(key)
	}

	changed := false
	for i := 0; i < 20 && !changed; i++ {
		p.Reshuffle()
		for _, key := range pinPadKeys {
			if d, _ := p.Digit(key); d != before[key] {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("reshuffle never changed the mapping")
	}
}

func TestPinPadLayout(t *testing.T) {
	p := identityPad()
	layout := p.Layout()

	if len(layout) != 4 {
		t.Fatalf("layout rows = %d, want 4", len(layout))
	}
	if layout[0][0].Key != 't' || layout[0][0].Digit != '0' {
		t.Errorf("top-left cell = %+v", layout[0][0])
	}
	if layout[3][0].Key != 0 || layout[3][2].Key != 0 {
		t.Error("bottom corners should be empty cells")
	}
	if layout[3][1].Key != 'm' {
		t.Errorf("bottom center key = %c, want m", layout[3][1].Key)
	}
}
